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

// Package outcomes provides Outcome, the single return value of a handler:
// a success payload or a typed failure rendered by one response pipeline.
package outcomes

import (
	"fmt"
	"github.com/aacfactory/outcomes/configs"
	"github.com/aacfactory/outcomes/effects"
	"github.com/aacfactory/outcomes/envelopes"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/transports"
	"github.com/valyala/bytebufferpool"
)

// Outcome is either a success holding a T or a failure holding an E.
// The zero value is a success holding the zero T.
type Outcome[T any, E failures.Failure] struct {
	value   T
	failure E
	failed  bool
}

func Succeed[T any, E failures.Failure](v T) Outcome[T, E] {
	return Outcome[T, E]{value: v}
}

func Fail[T any, E failures.Failure](e E) Outcome[T, E] {
	return Outcome[T, E]{failure: e, failed: true}
}

// Of converts a plain result. Any error becomes a failure through failures.Wrap.
func Of[T any](v T, err error) Outcome[T, failures.Failure] {
	if err != nil {
		return Fail[T](failures.Wrap(err))
	}
	return Succeed[T, failures.Failure](v)
}

func (o Outcome[T, E]) Succeeded() bool {
	return !o.failed
}

func (o Outcome[T, E]) Value() (v T, ok bool) {
	if o.failed {
		return
	}
	return o.value, true
}

func (o Outcome[T, E]) Failure() (e E, ok bool) {
	if !o.failed {
		return
	}
	return o.failure, true
}

// Unpack returns the payload, the failure and whether the outcome succeeded.
func (o Outcome[T, E]) Unpack() (v T, e E, ok bool) {
	return o.value, o.failure, !o.failed
}

// Err is nil on success, otherwise the failure as an errors.CodeError.
func (o Outcome[T, E]) Err() error {
	if !o.failed {
		return nil
	}
	return failures.AsError(o.failure)
}

func (o Outcome[T, E]) String() string {
	if o.failed {
		return fmt.Sprintf("Failure(%s)", failures.Describe(o.failure).Log)
	}
	return fmt.Sprintf("Success(%v)", o.value)
}

func (o Outcome[T, E]) Payload() any {
	if o.failed {
		return nil
	}
	return o.value
}

func (o Outcome[T, E]) Failed() failures.Failure {
	if !o.failed {
		return nil
	}
	return o.failure
}

func (o Outcome[T, E]) DefaultResponseMessage() (string, bool) {
	return failures.DefaultResponseMessage[E]()
}

func (o Outcome[T, E]) DefaultExtraMessage() (any, bool) {
	return failures.DefaultExtraMessage[E]()
}

// BodyEffect delegates to the success payload. Failures always keep their body.
func (o Outcome[T, E]) BodyEffect(body *bytebufferpool.ByteBuffer) effects.Body {
	if o.failed {
		return effects.Continue
	}
	return effects.Of(o.value).BodyEffect(body)
}

func (o Outcome[T, E]) StatusEffect() (status int, ok bool) {
	if o.failed {
		return
	}
	return effects.Of(o.value).StatusEffect()
}

func (o Outcome[T, E]) HeadersEffect(header transports.Header) {
	if o.failed {
		return
	}
	effects.Of(o.value).HeadersEffect(header)
}

// MarshalJSON writes the envelope with the process wide configuration.
func (o Outcome[T, E]) MarshalJSON() ([]byte, error) {
	return envelopes.Marshal(configs.Load(), o)
}

// WithFlags attaches flags to the success payload. A failure is returned unchanged.
func WithFlags[T any, E failures.Failure](o Outcome[T, E], flags effects.Flags) Outcome[effects.Flagged[T], E] {
	if o.failed {
		return Fail[effects.Flagged[T]](o.failure)
	}
	return Succeed[effects.Flagged[T], E](effects.Wrap(o.value, flags))
}
