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

// Package standard hosts outcome handlers on net/http.
package standard

import (
	"github.com/aacfactory/outcomes"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/responses"
	"net/http"
	"strconv"
	"sync"
)

// Handle adapts fn to an http.Handler. Without options the default assembler is used,
// it is resolved on the first request so configs.Set may run after the route is registered.
func Handle[T any, E failures.Failure](fn func(r *http.Request) outcomes.Outcome[T, E], options ...responses.Option) http.Handler {
	assembler := sync.OnceValue(func() *responses.Assembler {
		if len(options) == 0 {
			return responses.Default()
		}
		return responses.New(options...)
	})
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		p := assembler().Prepare(request.Context(), fn(request))
		Write(writer, p)
		p.Release()
	})
}

// Write copies a prepared response into w. Headers of p replace those already in w.
func Write(w http.ResponseWriter, p *responses.Prepared) {
	header := w.Header()
	p.Header.Foreach(func(key []byte, values [][]byte) {
		name := string(key)
		header.Del(name)
		for _, value := range values {
			header.Add(name, string(value))
		}
	})
	bodyLen := len(p.Body)
	if bodyAllowed(p.Status) {
		header.Set("Content-Length", strconv.Itoa(bodyLen))
	}
	w.WriteHeader(p.Status)
	if bodyLen == 0 || !bodyAllowed(p.Status) {
		return
	}
	n := 0
	for n < bodyLen {
		nn, writeErr := w.Write(p.Body[n:])
		if writeErr != nil {
			break
		}
		n += nn
	}
}

func bodyAllowed(status int) bool {
	if status >= 100 && status <= 199 {
		return false
	}
	return status != http.StatusNoContent && status != http.StatusNotModified
}
