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

// Package effects lets a success payload adjust the response it is rendered into.
package effects

import (
	"github.com/aacfactory/outcomes/transports"
	"github.com/valyala/bytebufferpool"
)

type Body int

const (
	Continue Body = iota
	Empty
)

func (b Body) String() string {
	if b == Empty {
		return "empty"
	}
	return "continue"
}

// Effects is consulted by the assembler in a fixed order: body, status, headers.
type Effects interface {
	// BodyEffect returns Empty after clearing body when no payload must be written,
	// or Continue to let the payload be serialized.
	BodyEffect(body *bytebufferpool.ByteBuffer) Body
	// StatusEffect overrides the derived status when ok is true.
	StatusEffect() (status int, ok bool)
	// HeadersEffect runs last and may override any header set before.
	HeadersEffect(header transports.Header)
}

// Nop is the effects of a payload that has none of its own.
type Nop struct{}

func (Nop) BodyEffect(_ *bytebufferpool.ByteBuffer) Body {
	return Continue
}

func (Nop) StatusEffect() (status int, ok bool) {
	return
}

func (Nop) HeadersEffect(_ transports.Header) {}

func Of(v any) Effects {
	if v == nil {
		return Nop{}
	}
	if e, ok := v.(Effects); ok {
		return e
	}
	return Nop{}
}
