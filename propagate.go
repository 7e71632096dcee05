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

package outcomes

import (
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/failures"
)

// Try unwraps o inside a function returning Outcome[U, E2].
//
//	user, failed, ok := outcomes.Try[Profile](loadUser(id), FromStoreError)
//	if !ok {
//		return failed
//	}
func Try[U any, E2 failures.Failure, T any, E1 failures.Failure](o Outcome[T, E1], from func(E1) E2) (v T, failed Outcome[U, E2], ok bool) {
	if from == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("outcomes: try failed, conversion is nil").WithMeta("from", typeName[E1]()).WithMeta("to", typeName[E2]())))
	}
	if !o.failed {
		v, ok = o.value, true
		return
	}
	failed = Fail[U](from(o.failure))
	return
}

// TryResult is Try for a plain (T, error) result.
func TryResult[U any, E2 failures.Failure, T any](v T, err error, from func(error) E2) (value T, failed Outcome[U, E2], ok bool) {
	if from == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("outcomes: try failed, conversion is nil").WithMeta("from", "error").WithMeta("to", typeName[E2]())))
	}
	if err == nil {
		value, ok = v, true
		return
	}
	failed = Fail[U](from(err))
	return
}

// Result converts o for a function returning a plain (T, error).
func Result[T any, E failures.Failure](o Outcome[T, E], from func(E) error) (v T, err error) {
	if from == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("outcomes: result failed, conversion is nil").WithMeta("from", typeName[E]())))
	}
	if !o.failed {
		v = o.value
		return
	}
	err = from(o.failure)
	if err == nil {
		err = failures.AsError(o.failure)
	}
	return
}

// Identity is the conversion between equal failure types.
func Identity[E failures.Failure](e E) E {
	return e
}

func Map[T any, U any, E failures.Failure](o Outcome[T, E], fn func(T) U) Outcome[U, E] {
	if o.failed {
		return Fail[U](o.failure)
	}
	return Succeed[U, E](fn(o.value))
}

func Then[T any, U any, E failures.Failure](o Outcome[T, E], fn func(T) Outcome[U, E]) Outcome[U, E] {
	if o.failed {
		return Fail[U](o.failure)
	}
	return fn(o.value)
}

func typeName[E any]() string {
	return fmt.Sprintf("%T", (*E)(nil))[1:]
}
