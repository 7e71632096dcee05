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

package fast

import (
	"github.com/aacfactory/outcomes/commons/bytex"
	"github.com/aacfactory/outcomes/transports"
	"github.com/valyala/fasthttp"
	"sort"
)

// header is the method set shared by fasthttp request and response headers.
type header interface {
	AddBytesKV(key []byte, value []byte)
	SetBytesKV(key []byte, value []byte)
	PeekBytes(key []byte) []byte
	DelBytes(key []byte)
	PeekAll(key string) [][]byte
	VisitAll(f func(key []byte, value []byte))
}

// RequestHeader adapts the request header of ctx.
func RequestHeader(ctx *fasthttp.RequestCtx) transports.Header {
	return Header{raw: &ctx.Request.Header}
}

// ResponseHeader adapts the response header of ctx.
func ResponseHeader(ctx *fasthttp.RequestCtx) transports.Header {
	return Header{raw: &ctx.Response.Header}
}

// Header is a transports.Header over a fasthttp header. Keys are normalized by fasthttp.
type Header struct {
	raw header
}

func (h Header) Add(key []byte, value []byte) {
	h.raw.AddBytesKV(key, value)
}

func (h Header) Set(key []byte, value []byte) {
	h.raw.SetBytesKV(key, value)
}

func (h Header) Get(key []byte) []byte {
	return h.raw.PeekBytes(key)
}

func (h Header) Del(key []byte) {
	h.raw.DelBytes(key)
}

func (h Header) Values(key []byte) [][]byte {
	return h.raw.PeekAll(bytex.ToString(key))
}

// Foreach visits keys in sorted order, values are copies.
func (h Header) Foreach(fn func(key []byte, values [][]byte)) {
	if fn == nil {
		return
	}
	values := h.collect()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fn([]byte(key), values[key])
	}
}

func (h Header) Len() int {
	return len(h.collect())
}

func (h Header) Reset() {
	for key := range h.collect() {
		h.raw.DelBytes(bytex.FromString(key))
	}
}

func (h Header) collect() map[string][][]byte {
	values := make(map[string][][]byte)
	h.raw.VisitAll(func(key []byte, value []byte) {
		k := string(key)
		values[k] = append(values[k], append([]byte(nil), value...))
	})
	return values
}
