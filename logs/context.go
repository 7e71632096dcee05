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

package logs

import (
	"context"
	"fmt"
	"github.com/aacfactory/errors"
)

type contextKey struct{}

func With(ctx context.Context, v Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, v)
}

func From(ctx context.Context) (v Logger, has bool) {
	if ctx == nil {
		return
	}
	v, has = ctx.Value(contextKey{}).(Logger)
	has = has && v != nil
	return
}

// Load panics when ctx carries no logger.
func Load(ctx context.Context) Logger {
	v, has := From(ctx)
	if !has {
		panic(fmt.Sprintf("%+v", errors.Warning("logs: there is no log in context")))
	}
	return v
}
