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
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/json"
	"github.com/aacfactory/outcomes"
	"github.com/aacfactory/outcomes/commons/bytex"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/transports"
	"github.com/aacfactory/outcomes/validators"
	"github.com/valyala/fasthttp"
)

const (
	DefaultMaxBodySize = 4 << 20
)

// JSON decodes and validates the json body of ctx into a P.
func JSON[P any, U any, E failures.Failure](ctx *fasthttp.RequestCtx, reject func(*transports.Rejection) E) (P, outcomes.Outcome[U, E], bool) {
	return JSONWithLimit[P, U, E](ctx, DefaultMaxBodySize, reject)
}

func JSONWithLimit[P any, U any, E failures.Failure](ctx *fasthttp.RequestCtx, limit int, reject func(*transports.Rejection) E) (p P, failed outcomes.Outcome[U, E], ok bool) {
	if reject == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("fast: json extraction failed, rejection conversion is nil")))
	}
	if rejection := decodeJSON(ctx, limit, &p); rejection != nil {
		failed = outcomes.Fail[U](reject(rejection))
		return
	}
	ok = true
	return
}

func decodeJSON(ctx *fasthttp.RequestCtx, limit int, dst any) *transports.Rejection {
	contentType := bytex.ToString(RequestHeader(ctx).Get(transports.ContentTypeHeaderName))
	if !transports.IsJsonContentType(contentType) {
		return transports.UnsupportedContentType(contentType)
	}
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body := ctx.PostBody()
	if len(body) > limit {
		return transports.BodyTooLarge(int64(limit))
	}
	if len(body) == 0 {
		return transports.InvalidBody(errors.Warning("fast: request body is empty"))
	}
	if decodeErr := json.Unmarshal(body, dst); decodeErr != nil {
		return transports.InvalidBody(decodeErr)
	}
	if invalid := validators.Validate(dst); invalid != nil {
		return transports.Invalid(invalid)
	}
	return nil
}

// Query decodes and validates the query arguments of ctx into a P.
func Query[P any, U any, E failures.Failure](ctx *fasthttp.RequestCtx, reject func(*transports.Rejection) E) (p P, failed outcomes.Outcome[U, E], ok bool) {
	if reject == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("fast: query extraction failed, rejection conversion is nil")))
	}
	if decodeErr := NewParams(ctx.QueryArgs()).Decode(&p); decodeErr != nil {
		failed = outcomes.Fail[U](reject(transports.InvalidQuery(decodeErr)))
		return
	}
	if invalid := validators.Validate(&p); invalid != nil {
		failed = outcomes.Fail[U](reject(transports.Invalid(invalid)))
		return
	}
	ok = true
	return
}
