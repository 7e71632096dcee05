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

package failures

import (
	stderrors "errors"
	"fmt"
	"github.com/aacfactory/errors"
	"net/http"
	"strings"
)

// Wrap turns any error into a failure.
// A failure passes through, a code error keeps its code, name and message, and any other
// error becomes an internal failure whose text is only visible to the log message.
func Wrap(err error) Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(Failure); ok {
		return f
	}
	var ce errors.CodeError
	if stderrors.As(err, &ce) {
		return codeFailure{err: ce}
	}
	return plainFailure{err: err}
}

type codeFailure struct {
	err errors.CodeError
}

func (f codeFailure) LogMessage() string {
	return fmt.Sprintf("%+v", f.err)
}

func (f codeFailure) HTTPStatus() int {
	code := f.err.Code()
	if code < 100 || code > 599 {
		return DefaultStatus
	}
	return code
}

func (f codeFailure) ResponseMessage() string {
	return f.err.Message()
}

func (f codeFailure) ExtraMessage() any {
	return f.err.Name()
}

func (f codeFailure) Error() string {
	return f.err.Error()
}

func (f codeFailure) Unwrap() error {
	return f.err
}

type plainFailure struct {
	err error
}

func (f plainFailure) LogMessage() string {
	return f.err.Error()
}

func (f plainFailure) ResponseMessage() string {
	return http.StatusText(DefaultStatus)
}

func (f plainFailure) Error() string {
	return f.err.Error()
}

func (f plainFailure) Unwrap() error {
	return f.err
}

// AsError converts a failure into a code error, keeping the log message as meta.
func AsError(f Failure) errors.CodeError {
	if f == nil {
		return nil
	}
	if ce, ok := f.(errors.CodeError); ok {
		return ce
	}
	if cf, ok := f.(codeFailure); ok {
		return cf.err
	}
	status := HTTPStatus(f)
	return errors.New(status, failureName(f, status), ResponseMessage(f)).WithMeta("log", f.LogMessage())
}

func failureName(f Failure, status int) string {
	if extra := ExtraMessage(f); extra != nil {
		if s := strings.TrimSpace(fmt.Sprint(extra)); s != "" {
			return s
		}
	}
	text := http.StatusText(status)
	if text == "" {
		text = "failure"
	}
	return "***" + strings.ToUpper(text) + "***"
}
