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
	"github.com/aacfactory/outcomes/transports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

type Id string

func (id *Id) UnmarshalText(p []byte) error {
	*id = Id("user:" + string(p))
	return nil
}

type Range struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type Param struct {
	Range
	Id     Id          `json:"id"`
	Name   string      `json:"name"`
	Score  float64     `json:"score"`
	Age    uint        `json:"age"`
	Active *bool       `json:"active"`
	Date   time.Time   `json:"date"`
	Dates  []time.Time `json:"dates"`
	Tags   []string    `json:"tags"`
	Secret string      `json:"-"`
}

func TestDecodeParams(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	params := transports.NewParams()
	params.Set([]byte("id"), []byte("1"))
	params.Set([]byte("name"), []byte("name"))
	params.Set([]byte("score"), []byte("99.99"))
	params.Set([]byte("age"), []byte("13"))
	params.Set([]byte("active"), []byte("true"))
	params.Set([]byte("date"), []byte(now.Format(time.RFC3339)))
	params.Set([]byte("dates"), []byte(strings.Join([]string{now.Format(time.RFC3339), now.Format(time.RFC3339)}, ",")))
	params.Add([]byte("tags"), []byte("a"))
	params.Add([]byte("tags"), []byte("b"))
	params.Set([]byte("offset"), []byte("10"))
	params.Set([]byte("length"), []byte("50"))
	params.Set([]byte("Secret"), []byte("x"))

	assert.True(t, strings.HasPrefix(string(params.Encode()), "Secret=x&active=true&age=13&"))

	param := Param{}
	require.NoError(t, transports.DecodeParams(params, &param))
	assert.Equal(t, Id("user:1"), param.Id)
	assert.Equal(t, "name", param.Name)
	assert.Equal(t, 99.99, param.Score)
	assert.Equal(t, uint(13), param.Age)
	require.NotNil(t, param.Active)
	assert.True(t, *param.Active)
	assert.True(t, now.Equal(param.Date))
	assert.Len(t, param.Dates, 2)
	assert.Equal(t, []string{"a", "b"}, param.Tags)
	assert.Equal(t, 10, param.Offset)
	assert.Equal(t, 50, param.Length)
	assert.Empty(t, param.Secret)
}

func TestDecodeParamsFailed(t *testing.T) {
	params := transports.NewParams()
	params.Set([]byte("age"), []byte("-1"))
	param := Param{}
	assert.Error(t, transports.DecodeParams(params, &param))
	assert.Error(t, transports.DecodeParams(params, param))
	assert.NoError(t, transports.DecodeParams(transports.NewParams(), &param))
}
