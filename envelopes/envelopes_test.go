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

package envelopes_test

import (
	"github.com/aacfactory/outcomes/configs"
	"github.com/aacfactory/outcomes/envelopes"
	"github.com/aacfactory/outcomes/failures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
	"testing"
)

type notFound struct{}

func (notFound) LogMessage() string {
	return "user 7 is not in table users"
}

func (notFound) HTTPStatus() int {
	return 404
}

func (notFound) ResponseMessage() string {
	return "not found"
}

func (notFound) ExtraMessage() any {
	return 1004
}

type source struct {
	failure  failures.Failure
	payload  any
	msg      string
	hasMsg   bool
	extra    any
	hasExtra bool
}

func (s source) Succeeded() bool {
	return s.failure == nil
}

func (s source) Payload() any {
	return s.payload
}

func (s source) Failed() failures.Failure {
	return s.failure
}

func (s source) DefaultResponseMessage() (string, bool) {
	return s.msg, s.hasMsg
}

func (s source) DefaultExtraMessage() (any, bool) {
	return s.extra, s.hasExtra
}

type user struct {
	Name string `json:"name"`
}

func resolve(t *testing.T, config configs.Config) *configs.Snapshot {
	snapshot, err := configs.Resolve(config)
	require.NoError(t, err)
	return snapshot
}

func TestDefaultEnvelope(t *testing.T) {
	snapshot := resolve(t, configs.Config{})

	p, err := envelopes.Marshal(snapshot, source{payload: 42})
	require.NoError(t, err)
	assert.Equal(t, `{"data":42}`, string(p))

	p, err = envelopes.Marshal(snapshot, source{failure: notFound{}})
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"not found"}`, string(p))

	p, err = envelopes.Marshal(snapshot, source{})
	require.NoError(t, err)
	assert.Equal(t, `{"data":null}`, string(p))
}

func TestFullSignedEnvelope(t *testing.T) {
	snapshot := resolve(t, configs.Config{
		Serde: configs.SerdeConfig{
			FullField:    true,
			SignedStatus: &configs.SignedStatus{Field: "status", OK: true, Err: false},
			ExtraCode:    "code",
		},
	})

	p, err := envelopes.Marshal(snapshot, source{payload: user{Name: "foo"}})
	require.NoError(t, err)
	assert.Equal(t, `{"status":true,"code":null,"msg":null,"data":{"name":"foo"}}`, string(p))

	p, err = envelopes.Marshal(snapshot, source{payload: user{Name: "foo"}, msg: "ok", hasMsg: true, extra: 0, hasExtra: true})
	require.NoError(t, err)
	assert.Equal(t, `{"status":true,"code":0,"msg":"ok","data":{"name":"foo"}}`, string(p))

	p, err = envelopes.Marshal(snapshot, source{failure: notFound{}})
	require.NoError(t, err)
	assert.Equal(t, `{"status":false,"code":1004,"msg":"not found","data":null}`, string(p))
}

func TestExtraWithoutFullField(t *testing.T) {
	snapshot := resolve(t, configs.Config{
		Serde: configs.SerdeConfig{BodyName: "result", ErrMsgName: "error", ExtraCode: "code"},
	})
	p, err := envelopes.Marshal(snapshot, source{payload: "hi", msg: "ignored", hasMsg: true})
	require.NoError(t, err)
	assert.Equal(t, `{"result":"hi"}`, string(p))

	p, err = envelopes.Marshal(snapshot, source{failure: notFound{}})
	require.NoError(t, err)
	assert.Equal(t, `{"code":1004,"error":"not found"}`, string(p))
}

func TestDeterministic(t *testing.T) {
	snapshot := resolve(t, configs.Config{Serde: configs.SerdeConfig{FullField: true}})
	src := source{payload: map[string]int{"b": 2, "a": 1}}
	first, err := envelopes.Marshal(snapshot, src)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		p, err := envelopes.Marshal(snapshot, src)
		require.NoError(t, err)
		assert.Equal(t, first, p)
	}
}

func TestEncodeFailed(t *testing.T) {
	snapshot := resolve(t, configs.Config{})
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString("prefix")

	err := envelopes.Encode(buf, snapshot, source{payload: make(chan int)})
	assert.Error(t, err)
	assert.Equal(t, "prefix", buf.String())

	assert.Error(t, envelopes.Encode(nil, snapshot, source{}))
	assert.Error(t, envelopes.Encode(buf, nil, source{}))
}

func TestObjectWriter(t *testing.T) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := envelopes.NewObjectWriter(buf, 2)
	w.Raw([]byte(`"a"`), []byte("1"))
	assert.Equal(t, 1, w.Written())
	assert.Error(t, w.End())

	buf.Reset()
	w = envelopes.NewObjectWriter(buf, 2)
	w.Raw([]byte(`"a"`), []byte("1"))
	w.Value([]byte(`"b"`), []string{"x"})
	require.NoError(t, w.End())
	assert.Equal(t, `{"a":1,"b":["x"]}`, buf.String())
}
