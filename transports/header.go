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
	"github.com/aacfactory/outcomes/commons/bytex"
	"mime"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

var (
	ContentTypeHeaderName      = []byte("Content-Type")
	ContentTypeJsonHeaderValue = []byte("application/json")
	ContentLengthHeaderName    = []byte("Content-Length")
	CacheControlHeaderName     = []byte("Cache-Control")
	ETagHeaderName             = []byte("ETag")
	IfNoneMatchHeaderName      = []byte("If-None-Match")
	RequestIdHeaderName        = []byte("X-Request-Id")
	ExtraCodeHeaderName        = []byte("X-Extra-Code")
)

type Header interface {
	Add(key []byte, value []byte)
	Set(key []byte, value []byte)
	Get(key []byte) []byte
	Del(key []byte)
	Values(key []byte) [][]byte
	Foreach(fn func(key []byte, values [][]byte))
	Len() int
	Reset()
}

func NewHeader() Header {
	return make(httpHeader)
}

func WrapHttpHeader(h http.Header) Header {
	return httpHeader(h)
}

type httpHeader map[string][]string

func (h httpHeader) Add(key []byte, value []byte) {
	textproto.MIMEHeader(h).Add(string(key), string(value))
}

func (h httpHeader) Set(key []byte, value []byte) {
	textproto.MIMEHeader(h).Set(string(key), string(value))
}

func (h httpHeader) Get(key []byte) []byte {
	return bytex.FromString(textproto.MIMEHeader(h).Get(bytex.ToString(key)))
}

func (h httpHeader) Del(key []byte) {
	textproto.MIMEHeader(h).Del(bytex.ToString(key))
}

func (h httpHeader) Values(key []byte) [][]byte {
	vv := textproto.MIMEHeader(h).Values(bytex.ToString(key))
	if len(vv) == 0 {
		return nil
	}
	values := make([][]byte, 0, len(vv))
	for _, v := range vv {
		values = append(values, bytex.FromString(v))
	}
	return values
}

// Foreach visits keys in sorted order so that copies into a native response are stable.
func (h httpHeader) Foreach(fn func(key []byte, values [][]byte)) {
	if fn == nil {
		return
	}
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := h[key]
		vv := make([][]byte, 0, len(values))
		for _, value := range values {
			vv = append(vv, bytex.FromString(value))
		}
		fn(bytex.FromString(key), vv)
	}
}

func (h httpHeader) Len() int {
	return len(h)
}

func (h httpHeader) Reset() {
	clear(h)
}

// IsJsonContentType accepts application/json and any application/*+json media type.
func IsJsonContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
