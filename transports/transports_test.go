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

package transports_test

import (
	stderrors "errors"
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/transports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

func TestRejection(t *testing.T) {
	var f failures.Failure = transports.BodyTooLarge(1024)
	assert.Equal(t, http.StatusRequestEntityTooLarge, failures.HTTPStatus(f))
	assert.Equal(t, "request body is too large", failures.ResponseMessage(f))
	assert.Equal(t, "BODY TOO LARGE", failures.ExtraMessage(f))
	assert.Contains(t, f.LogMessage(), "1024")

	unsupported := transports.UnsupportedContentType("text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, unsupported.HTTPStatus())

	invalid := transports.InvalidBody(fmt.Errorf("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, invalid.HTTPStatus())
	var ce errors.CodeError
	require.True(t, stderrors.As(invalid, &ce))
	assert.Equal(t, http.StatusBadRequest, ce.Code())

	assert.Equal(t, http.StatusBadRequest, transports.Invalid(errors.BadRequest("invalid")).HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, transports.Invalid(errors.ServiceError("boom")).HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, transports.Invalid(nil).HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, transports.Reject(302, "moved", "moved").HTTPStatus())
}

func TestHeader(t *testing.T) {
	header := transports.NewHeader()
	header.Add([]byte("x-b"), []byte("1"))
	header.Add([]byte("X-B"), []byte("2"))
	header.Set([]byte("x-a"), []byte("0"))
	assert.Equal(t, 2, header.Len())
	assert.Len(t, header.Values([]byte("X-b")), 2)

	keys := make([]string, 0, 2)
	header.Foreach(func(key []byte, values [][]byte) {
		keys = append(keys, string(key))
	})
	assert.Equal(t, []string{"X-A", "X-B"}, keys)

	header.Del([]byte("X-A"))
	assert.Empty(t, header.Get([]byte("X-A")))
	header.Reset()
	assert.Equal(t, 0, header.Len())

	std := http.Header{}
	transports.WrapHttpHeader(std).Set(transports.ContentTypeHeaderName, transports.ContentTypeJsonHeaderValue)
	assert.Equal(t, "application/json", std.Get("Content-Type"))
}

func TestIsJsonContentType(t *testing.T) {
	assert.True(t, transports.IsJsonContentType("application/json"))
	assert.True(t, transports.IsJsonContentType("application/json; charset=utf-8"))
	assert.True(t, transports.IsJsonContentType("application/problem+json"))
	assert.False(t, transports.IsJsonContentType(""))
	assert.False(t, transports.IsJsonContentType("text/plain"))
	assert.False(t, transports.IsJsonContentType("application/jsonx"))
}
