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

package standard

import (
	"github.com/aacfactory/outcomes/commons/bytex"
	"github.com/aacfactory/outcomes/transports"
	"net/url"
)

// NewParams wraps the query values of a request as transports.Params.
func NewParams(values url.Values) *Params {
	if values == nil {
		values = url.Values{}
	}
	return &Params{
		values: values,
	}
}

type Params struct {
	values url.Values
}

func (params *Params) Get(name []byte) []byte {
	values, has := params.values[bytex.ToString(name)]
	if !has || len(values) == 0 {
		return nil
	}
	return []byte(values[0])
}

func (params *Params) Set(name []byte, value []byte) {
	params.values[string(name)] = []string{string(value)}
}

func (params *Params) Add(name []byte, value []byte) {
	key := string(name)
	params.values[key] = append(params.values[key], string(value))
}

func (params *Params) Values(name []byte) (values [][]byte) {
	svv := params.values[bytex.ToString(name)]
	if len(svv) == 0 {
		return
	}
	values = make([][]byte, 0, len(svv))
	for _, s := range svv {
		values = append(values, []byte(s))
	}
	return
}

func (params *Params) Remove(name []byte) {
	delete(params.values, bytex.ToString(name))
}

func (params *Params) Len() int {
	return len(params.values)
}

// Encode is sorted by name.
func (params *Params) Encode() []byte {
	return []byte(params.values.Encode())
}

// Decode fills the struct pointed by dst, see transports.DecodeParams.
func (params *Params) Decode(dst any) error {
	return transports.DecodeParams(params, dst)
}
