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

// Package failures defines the contract every handler failure satisfies before it can be
// carried by an outcome and rendered into a response.
//
// Only LogMessage is required. The remaining facets are optional interfaces with fixed
// defaults: status 500, the log message as the response message, and an empty text extra
// message. Use the package functions to read a failure so the defaults are applied uniformly.
package failures

import (
	"fmt"
	"net/http"
)

// Failure is the developer facing side of an expected, renderable failure.
type Failure interface {
	LogMessage() string
}

type StatusCoder interface {
	HTTPStatus() int
}

type ResponseMessenger interface {
	ResponseMessage() string
}

// ExtraMessenger carries an out of band detail, for example a machine readable code,
// that can be sent as a header or as an envelope field.
type ExtraMessenger interface {
	ExtraMessage() any
}

// MessageDefault is a type level default, it is called on the zero value of the failure type
// and must not depend on instance state.
type MessageDefault interface {
	DefaultResponseMessage() (message string, has bool)
}

// ExtraDefault is the extra message counterpart of MessageDefault.
type ExtraDefault interface {
	DefaultExtraMessage() (extra any, has bool)
}

const (
	DefaultStatus = http.StatusInternalServerError
)

func HTTPStatus(f Failure) int {
	if f == nil {
		return DefaultStatus
	}
	if sc, ok := f.(StatusCoder); ok {
		return sc.HTTPStatus()
	}
	return DefaultStatus
}

func ResponseMessage(f Failure) string {
	if f == nil {
		return ""
	}
	if rm, ok := f.(ResponseMessenger); ok {
		return rm.ResponseMessage()
	}
	return f.LogMessage()
}

func ExtraMessage(f Failure) any {
	if f == nil {
		return ""
	}
	if em, ok := f.(ExtraMessenger); ok {
		return em.ExtraMessage()
	}
	return ""
}

func DefaultResponseMessage[E Failure]() (message string, has bool) {
	var zero E
	d, ok := any(zero).(MessageDefault)
	if !ok {
		return
	}
	message, has = d.DefaultResponseMessage()
	return
}

func DefaultExtraMessage[E Failure]() (extra any, has bool) {
	var zero E
	d, ok := any(zero).(ExtraDefault)
	if !ok {
		return
	}
	extra, has = d.DefaultExtraMessage()
	return
}

type Description struct {
	Log     string `json:"log"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Extra   any    `json:"extra,omitempty"`
}

func (d Description) String() string {
	return fmt.Sprintf("[%d] %s (%s)", d.Status, d.Message, d.Log)
}

func Describe(f Failure) Description {
	if f == nil {
		return Description{Status: DefaultStatus}
	}
	return Description{
		Log:     f.LogMessage(),
		Status:  HTTPStatus(f),
		Message: ResponseMessage(f),
		Extra:   ExtraMessage(f),
	}
}
