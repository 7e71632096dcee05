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

package effects

import (
	"github.com/aacfactory/json"
	"github.com/aacfactory/outcomes/transports"
	"github.com/valyala/bytebufferpool"
)

// Wrap attaches flags to a payload. The payload is serialized as if it was not wrapped.
func Wrap[T any](v T, flags Flags) Flagged[T] {
	return Flagged[T]{
		Value: v,
		Flags: flags,
	}
}

type Flagged[T any] struct {
	Value T
	Flags Flags
}

func (f Flagged[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

func (f Flagged[T]) BodyEffect(body *bytebufferpool.ByteBuffer) Body {
	return f.Flags.BodyEffect(body)
}

func (f Flagged[T]) StatusEffect() (status int, ok bool) {
	return f.Flags.StatusEffect()
}

func (f Flagged[T]) HeadersEffect(header transports.Header) {
	f.Flags.HeadersEffect(header)
}
