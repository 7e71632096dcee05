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
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/json"
	"github.com/aacfactory/outcomes"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/transports"
	"github.com/aacfactory/outcomes/validators"
	"io"
	"net/http"
)

const (
	DefaultMaxBodySize int64 = 4 << 20
)

// JSON decodes and validates the json body of r into a P.
// When it fails, the rejection converted by reject is returned as the outcome of the handler.
//
//	body, failed, ok := standard.JSON[CreateUser, User](r, FromRejection)
//	if !ok {
//		return failed
//	}
func JSON[P any, U any, E failures.Failure](r *http.Request, reject func(*transports.Rejection) E) (P, outcomes.Outcome[U, E], bool) {
	return JSONWithLimit[P, U, E](r, DefaultMaxBodySize, reject)
}

func JSONWithLimit[P any, U any, E failures.Failure](r *http.Request, limit int64, reject func(*transports.Rejection) E) (p P, failed outcomes.Outcome[U, E], ok bool) {
	if reject == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("standard: json extraction failed, rejection conversion is nil")))
	}
	if rejection := decodeJSON(r, limit, &p); rejection != nil {
		failed = outcomes.Fail[U](reject(rejection))
		return
	}
	ok = true
	return
}

func decodeJSON(r *http.Request, limit int64, dst any) *transports.Rejection {
	contentType := r.Header.Get("Content-Type")
	if !transports.IsJsonContentType(contentType) {
		return transports.UnsupportedContentType(contentType)
	}
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	if r.ContentLength > limit {
		return transports.BodyTooLarge(limit)
	}
	if r.Body == nil {
		return transports.InvalidBody(errors.Warning("standard: request body is empty"))
	}
	body, readErr := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if readErr != nil {
		return transports.InvalidBody(readErr)
	}
	if int64(len(body)) > limit {
		return transports.BodyTooLarge(limit)
	}
	if len(body) == 0 {
		return transports.InvalidBody(errors.Warning("standard: request body is empty"))
	}
	if decodeErr := json.Unmarshal(body, dst); decodeErr != nil {
		return transports.InvalidBody(decodeErr)
	}
	if invalid := validators.Validate(dst); invalid != nil {
		return transports.Invalid(invalid)
	}
	return nil
}

// Query decodes and validates the query string of r into a P.
func Query[P any, U any, E failures.Failure](r *http.Request, reject func(*transports.Rejection) E) (p P, failed outcomes.Outcome[U, E], ok bool) {
	if reject == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("standard: query extraction failed, rejection conversion is nil")))
	}
	if decodeErr := NewParams(r.URL.Query()).Decode(&p); decodeErr != nil {
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
