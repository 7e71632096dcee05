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

package effects_test

import (
	"github.com/aacfactory/outcomes/effects"
	"github.com/aacfactory/outcomes/transports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
	"testing"
)

func TestOf(t *testing.T) {
	assert.Equal(t, effects.Nop{}, effects.Of(nil))
	assert.Equal(t, effects.Nop{}, effects.Of(42))
	flags := effects.New(effects.EmptyBody())
	assert.Equal(t, flags, effects.Of(flags))

	nop := effects.Of("plain")
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString("payload")
	assert.Equal(t, effects.Continue, nop.BodyEffect(buf))
	assert.Equal(t, "payload", buf.String())
	_, ok := nop.StatusEffect()
	assert.False(t, ok)
}

func TestBodyEffect(t *testing.T) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(`{"data":1}`)

	assert.Equal(t, effects.Continue, effects.New(effects.Status(201)).BodyEffect(buf))
	assert.Equal(t, 10, buf.Len())

	assert.Equal(t, effects.Empty, effects.New(effects.Status(204), effects.EmptyBody()).BodyEffect(buf))
	assert.Equal(t, 0, buf.Len())
}

func TestStatusEffect(t *testing.T) {
	status, ok := effects.New().StatusEffect()
	assert.False(t, ok)
	assert.Equal(t, 0, status)

	status, ok = effects.New(effects.Status(201), effects.InsertHeader("X-A", "1"), effects.Status(202)).StatusEffect()
	assert.True(t, ok)
	assert.Equal(t, 202, status)

	assert.Panics(t, func() {
		effects.Status(99)
	})
	assert.Panics(t, func() {
		effects.Status(600)
	})
}

func TestHeadersEffect(t *testing.T) {
	header := transports.NewHeader()
	header.Set([]byte("X-Trace"), []byte("old"))
	header.Set([]byte("X-Keep"), []byte("keep"))

	flags := effects.New(
		effects.InsertHeader("x-trace", "a"),
		effects.AppendHeader("X-Trace", "b"),
		effects.RemoveHeader("X-Trace"),
		effects.AppendHeader("X-List", "1"),
		effects.AppendHeader("X-List", "2"),
	)
	flags.HeadersEffect(header)

	values := header.Values([]byte("X-Trace"))
	require.Len(t, values, 2)
	assert.Equal(t, "a", string(values[0]))
	assert.Equal(t, "b", string(values[1]))
	assert.Equal(t, "keep", string(header.Get([]byte("X-Keep"))))
	assert.Len(t, header.Values([]byte("X-List")), 2)
}

func TestInsertReplaces(t *testing.T) {
	header := transports.NewHeader()
	header.Add([]byte("X-Mode"), []byte("1"))
	header.Add([]byte("X-Mode"), []byte("2"))
	effects.New(effects.InsertHeader("X-Mode", "3")).HeadersEffect(header)
	values := header.Values([]byte("X-Mode"))
	require.Len(t, values, 1)
	assert.Equal(t, "3", string(values[0]))
}

func TestFlagsCompose(t *testing.T) {
	base := effects.New(effects.Status(201))
	joined := base.Join(effects.New(effects.EmptyBody()))
	added := base.Add(effects.InsertHeader("X-A", "1"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, joined.Len())
	assert.Equal(t, 2, added.Len())
	assert.Equal(t, "[SetStatus(201), EmptyBody]", joined.String())
	assert.Equal(t, "[SetStatus(201), SetHeader(X-A, 1, Insert)]", added.String())
	assert.Panics(t, func() {
		effects.RemoveHeader(" ")
	})
}

func TestFlagged(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}
	v := effects.Wrap(user{Name: "foo"}, effects.New(effects.Status(201), effects.InsertHeader("Location", "/users/foo")))
	p, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"foo"}`, string(p))

	status, ok := v.StatusEffect()
	assert.True(t, ok)
	assert.Equal(t, 201, status)

	header := transports.NewHeader()
	v.HeadersEffect(header)
	assert.Equal(t, "/users/foo", string(header.Get([]byte("Location"))))
}
