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
	"fmt"
	"github.com/aacfactory/errors"
	"net/http"
	"strings"
)

// Rejection is the failure of extracting a request payload.
// Handlers convert it into their own failure type with a func(*Rejection) E.
type Rejection struct {
	status int
	cause  errors.CodeError
}

func Reject(status int, name string, message string) *Rejection {
	if status < 400 || status > 499 {
		status = http.StatusBadRequest
	}
	return &Rejection{
		status: status,
		cause:  errors.New(status, name, message),
	}
}

func BodyTooLarge(limit int64) *Rejection {
	r := Reject(http.StatusRequestEntityTooLarge, "***BODY TOO LARGE***", "request body is too large")
	r.cause = r.cause.WithMeta("limit", fmt.Sprint(limit))
	return r
}

func UnsupportedContentType(contentType string) *Rejection {
	r := Reject(http.StatusUnsupportedMediaType, "***UNSUPPORTED CONTENT TYPE***", "expected request with `Content-Type: application/json`")
	r.cause = r.cause.WithMeta("contentType", contentType)
	return r
}

func InvalidBody(cause error) *Rejection {
	r := Reject(http.StatusBadRequest, "***INVALID BODY***", "failed to parse the request body as json")
	if cause != nil {
		r.cause = r.cause.WithCause(cause)
	}
	return r
}

func InvalidQuery(cause error) *Rejection {
	r := Reject(http.StatusBadRequest, "***INVALID QUERY***", "failed to deserialize query string")
	if cause != nil {
		r.cause = r.cause.WithCause(cause)
	}
	return r
}

// Invalid wraps a validation failure, the status of cause is kept when it is a client error.
func Invalid(cause errors.CodeError) *Rejection {
	if cause == nil {
		return Reject(http.StatusUnprocessableEntity, "***INVALID***", "invalid")
	}
	status := cause.Code()
	if status < 400 || status > 499 {
		status = http.StatusUnprocessableEntity
	}
	return &Rejection{
		status: status,
		cause:  cause,
	}
}

func (r *Rejection) LogMessage() string {
	return fmt.Sprintf("%+v", r.cause)
}

func (r *Rejection) HTTPStatus() int {
	return r.status
}

func (r *Rejection) ResponseMessage() string {
	return r.cause.Message()
}

func (r *Rejection) ExtraMessage() any {
	return strings.Trim(r.cause.Name(), "*")
}

func (r *Rejection) CodeError() errors.CodeError {
	return r.cause
}

func (r *Rejection) Error() string {
	return r.cause.Error()
}

func (r *Rejection) Unwrap() error {
	return r.cause
}
