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

package sources_test

import (
	"github.com/aacfactory/outcomes/cmd/generates/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseAnnotations(t *testing.T) {
	s := `AppError enumerates handler failures.
@failure
@extra int
@message >>>
	something
	went wrong
<<<
@status http.StatusNotFound
@message '>>>' inline <<<`
	annotations, err := sources.ParseAnnotations(s)
	require.NoError(t, err)
	require.Equal(t, 5, annotations.Len())

	failure, has := annotations.Get("failure")
	require.True(t, has)
	assert.Empty(t, failure.Params)
	assert.Equal(t, 1, failure.Line)

	extra, _ := annotations.Get("extra")
	assert.Equal(t, "int", extra.Param())

	message, _ := annotations.Get("message")
	assert.Equal(t, "something\nwent wrong", message.Param())
	assert.Equal(t, 3, message.Line)

	status, _ := annotations.Get("status")
	assert.Equal(t, 7, status.Line)

	assert.Equal(t, 2, annotations.Count("message"))
	duplicated, has := annotations.Duplicated()
	require.True(t, has)
	assert.Equal(t, "message", duplicated.Name)
	assert.Equal(t, 8, duplicated.Line)
	assert.Equal(t, "'>>>' inline <<<", duplicated.Param())
}

func TestParseAnnotationsInlineBlock(t *testing.T) {
	annotations, err := sources.ParseAnnotations("@message >>> '>>>' not found <<<")
	require.NoError(t, err)
	message, has := annotations.Get("message")
	require.True(t, has)
	assert.Equal(t, ">>> not found", message.Param())
}

func TestParseAnnotationsIncompleted(t *testing.T) {
	_, err := sources.ParseAnnotations("@message >>>\nnot closed\n@status 404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse annotations failed")

	_, err = sources.ParseAnnotations("@message >>>\nnot closed")
	require.Error(t, err)
}

func TestParseAnnotationsNone(t *testing.T) {
	annotations, err := sources.ParseAnnotations("plain comment, no annotations")
	require.NoError(t, err)
	assert.Equal(t, 0, annotations.Len())
}
