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

// Package fast hosts outcome handlers on valyala/fasthttp.
package fast

import (
	"github.com/aacfactory/outcomes"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/responses"
	"github.com/valyala/fasthttp"
	"sync"
)

// Handle adapts fn to a fasthttp.RequestHandler. Without options the default assembler is used.
func Handle[T any, E failures.Failure](fn func(ctx *fasthttp.RequestCtx) outcomes.Outcome[T, E], options ...responses.Option) fasthttp.RequestHandler {
	assembler := sync.OnceValue(func() *responses.Assembler {
		if len(options) == 0 {
			return responses.Default()
		}
		return responses.New(options...)
	})
	return func(ctx *fasthttp.RequestCtx) {
		p := assembler().Prepare(ctx, fn(ctx))
		Write(ctx, p)
		p.Release()
	}
}

// Write copies a prepared response into ctx. The body is copied, so p can be released afterwards.
func Write(ctx *fasthttp.RequestCtx, p *responses.Prepared) {
	header := ResponseHeader(ctx)
	p.Header.Foreach(func(key []byte, values [][]byte) {
		header.Del(key)
		for i, value := range values {
			if i == 0 {
				header.Set(key, value)
				continue
			}
			header.Add(key, value)
		}
	})
	ctx.SetStatusCode(p.Status)
	if len(p.Body) == 0 {
		ctx.Response.ResetBody()
		return
	}
	ctx.SetBody(p.Body)
}
