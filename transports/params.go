/*
 * Copyright 2023 Wang Min Xiang
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * 	http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package transports

import (
	"bytes"
	"encoding"
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/commons/bytex"
	"github.com/valyala/bytebufferpool"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params are the query parameters of a request.
type Params interface {
	Get(name []byte) []byte
	Set(name []byte, value []byte)
	Add(name []byte, value []byte)
	Values(name []byte) [][]byte
	Remove(name []byte)
	Len() int
	Encode() (p []byte)
}

func NewParams() Params {
	return make(defaultParams)
}

type defaultParams map[string][][]byte

func (params defaultParams) Get(name []byte) []byte {
	if len(name) == 0 {
		return nil
	}
	values, has := params[bytex.ToString(name)]
	if !has || len(values) == 0 {
		return nil
	}
	return values[0]
}

func (params defaultParams) Set(name []byte, value []byte) {
	if len(name) == 0 || value == nil {
		return
	}
	params[string(name)] = [][]byte{value}
}

func (params defaultParams) Add(name []byte, value []byte) {
	if len(name) == 0 || value == nil {
		return
	}
	key := string(name)
	params[key] = append(params[key], value)
}

func (params defaultParams) Values(name []byte) [][]byte {
	if len(name) == 0 {
		return nil
	}
	return params[bytex.ToString(name)]
}

func (params defaultParams) Remove(name []byte) {
	if len(name) == 0 {
		return
	}
	delete(params, bytex.ToString(name))
}

func (params defaultParams) Len() int {
	return len(params)
}

func (params defaultParams) Encode() []byte {
	size := len(params)
	if size == 0 {
		return nil
	}
	names := make([]string, 0, size)
	for name := range params {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, name := range names {
		for _, value := range params[name] {
			if buf.Len() > 0 {
				_ = buf.WriteByte('&')
			}
			_, _ = buf.WriteString(url.QueryEscape(name))
			_ = buf.WriteByte('=')
			_, _ = buf.WriteString(url.QueryEscape(bytex.ToString(value)))
		}
	}
	p := make([]byte, buf.Len())
	copy(p, buf.B)
	return p
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// DecodeParams fills the struct pointed by dst. Fields are matched by their json name,
// embedded structs are flattened, slices take repeated or comma separated values,
// and types implementing encoding.TextUnmarshaler decode themselves.
func DecodeParams(params Params, dst any) (err error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		err = errors.Warning("transports: decode params failed, dst must be a non nil pointer of struct").WithMeta("type", fmt.Sprintf("%T", dst))
		return
	}
	if params == nil || params.Len() == 0 {
		return
	}
	err = decodeStruct(params, rv.Elem())
	return
}

func decodeStruct(params Params, rv reflect.Value) (err error) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		name, omit := paramName(field)
		if omit {
			continue
		}
		if field.Anonymous && name == "" {
			target := fv
			if target.Kind() == reflect.Ptr {
				if target.Type().Elem().Kind() != reflect.Struct {
					continue
				}
				if target.IsNil() {
					target.Set(reflect.New(target.Type().Elem()))
				}
				target = target.Elem()
			}
			if target.Kind() == reflect.Struct {
				if err = decodeStruct(params, target); err != nil {
					return
				}
			}
			continue
		}
		if name == "" {
			name = field.Name
		}
		values := params.Values(bytex.FromString(name))
		if len(values) == 0 {
			continue
		}
		if err = decodeField(fv, values); err != nil {
			err = errors.Warning("transports: decode params failed").WithCause(err).WithMeta("param", name)
			return
		}
	}
	return
}

func paramName(field reflect.StructField) (name string, omit bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		omit = true
		return
	}
	if pos := strings.IndexByte(tag, ','); pos >= 0 {
		tag = tag[0:pos]
	}
	name = tag
	return
}

func decodeField(fv reflect.Value, values [][]byte) (err error) {
	if fv.Kind() == reflect.Ptr {
		elem := reflect.New(fv.Type().Elem())
		if err = decodeField(elem.Elem(), values); err != nil {
			return
		}
		fv.Set(elem)
		return
	}
	if reflect.PointerTo(fv.Type()).Implements(textUnmarshalerType) {
		err = fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText(values[0])
		return
	}
	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() != reflect.Uint8 {
		items := values
		if len(items) == 1 {
			items = bytes.Split(items[0], []byte{','})
		}
		slice := reflect.MakeSlice(fv.Type(), len(items), len(items))
		for i, item := range items {
			if err = decodeField(slice.Index(i), [][]byte{bytes.TrimSpace(item)}); err != nil {
				return
			}
		}
		fv.Set(slice)
		return
	}
	err = decodeScalar(fv, bytex.ToString(values[0]))
	return
}

func decodeScalar(fv reflect.Value, s string) (err error) {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, parseErr := strconv.ParseBool(s)
		if parseErr != nil {
			return parseErr
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, parseErr := strconv.ParseInt(s, 10, fv.Type().Bits())
		if parseErr != nil {
			return parseErr
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, parseErr := strconv.ParseUint(s, 10, fv.Type().Bits())
		if parseErr != nil {
			return parseErr
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, parseErr := strconv.ParseFloat(s, fv.Type().Bits())
		if parseErr != nil {
			return parseErr
		}
		fv.SetFloat(f)
	case reflect.Slice:
		fv.SetBytes([]byte(s))
	default:
		err = fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return
}
