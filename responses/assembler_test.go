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

package responses_test

import (
	"context"
	"github.com/aacfactory/outcomes"
	"github.com/aacfactory/outcomes/configs"
	"github.com/aacfactory/outcomes/effects"
	"github.com/aacfactory/outcomes/logs"
	"github.com/aacfactory/outcomes/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"net/http"
	"strings"
	"testing"
)

type AppError struct {
	Status int
	Reason string
	Code   int
}

func (e AppError) LogMessage() string {
	return "app: " + e.Reason
}

func (e AppError) HTTPStatus() int {
	return e.Status
}

func (e AppError) ResponseMessage() string {
	return e.Reason
}

func (e AppError) ExtraMessage() any {
	return e.Code
}

func assembler(t *testing.T, config configs.Config) *responses.Assembler {
	snapshot, err := configs.Resolve(config)
	require.NoError(t, err)
	log, logErr := logs.New(logs.Config{Level: logs.Debug, DisableConsole: true})
	require.NoError(t, logErr)
	return responses.New(responses.WithSnapshot(snapshot), responses.WithLog(log))
}

func TestPrepareDefault(t *testing.T) {
	a := assembler(t, configs.Config{})

	p := a.Prepare(context.Background(), outcomes.Succeed[int, AppError](42))
	defer p.Release()
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, `{"data":42}`, string(p.Body))
	assert.Equal(t, "application/json", string(p.Header.Get([]byte("Content-Type"))))
	assert.Empty(t, p.Incident)

	failed := a.Prepare(context.Background(), outcomes.Fail[int](AppError{Status: http.StatusNotFound, Reason: "not found"}))
	defer failed.Release()
	assert.Equal(t, http.StatusNotFound, failed.Status)
	assert.Equal(t, `{"msg":"not found"}`, string(failed.Body))
}

func TestPrepareSignedFullField(t *testing.T) {
	a := assembler(t, configs.Config{
		Serde: configs.SerdeConfig{
			BodyName:     "data",
			ErrMsgName:   "msg",
			FullField:    true,
			SignedStatus: &configs.SignedStatus{Field: "ok", OK: true, Err: false},
		},
	})

	p := a.Prepare(context.Background(), outcomes.Succeed[int, AppError](5))
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, `{"ok":true,"msg":null,"data":5}`, string(p.Body))
	p.Release()

	p = a.Prepare(context.Background(), outcomes.Fail[int](AppError{Status: http.StatusBadRequest, Reason: "bad"}))
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, `{"ok":false,"msg":"bad","data":null}`, string(p.Body))
	p.Release()
	assert.Nil(t, p.Body)
}

func TestPrepareEmptyBody(t *testing.T) {
	a := assembler(t, configs.Config{Resp: configs.RespConfig{ETag: true}})
	o := outcomes.WithFlags(
		outcomes.Succeed[string, AppError](strings.Repeat("x", 1024)),
		effects.New(effects.EmptyBody(), effects.Status(http.StatusAccepted), effects.InsertHeader("X-Job", "1")),
	)
	p := a.Prepare(context.Background(), o)
	defer p.Release()
	assert.Len(t, p.Body, 0)
	assert.Equal(t, http.StatusAccepted, p.Status)
	assert.Equal(t, "1", string(p.Header.Get([]byte("X-Job"))))
	assert.Equal(t, "application/json", string(p.Header.Get([]byte("Content-Type"))))
	assert.Empty(t, p.Header.Get([]byte("ETag")))
}

func TestPrepareStatusOverride(t *testing.T) {
	a := assembler(t, configs.Config{})
	o := outcomes.WithFlags(outcomes.Succeed[int, AppError](1), effects.New(effects.Status(http.StatusCreated)))
	p := a.Prepare(context.Background(), o)
	defer p.Release()
	assert.Equal(t, http.StatusCreated, p.Status)
	assert.Equal(t, `{"data":1}`, string(p.Body))
}

func TestPrepareHeaders(t *testing.T) {
	a := assembler(t, configs.Config{
		Serde: configs.SerdeConfig{ExtraCode: "code"},
		Resp: configs.RespConfig{
			ExtraCodeHeader: "X-Extra-Code",
			Headers:         map[string]string{"X": "old", "X-Service": "users"},
			ETag:            true,
			IncidentHeader:  "X-Incident",
		},
	})
	o := outcomes.WithFlags(outcomes.Succeed[int, AppError](7), effects.New(
		effects.RemoveHeader("X"),
		effects.InsertHeader("X", "v1"),
		effects.AppendHeader("X", "v2"),
	))
	p := a.Prepare(context.Background(), o)
	values := p.Header.Values([]byte("X"))
	require.Len(t, values, 2)
	assert.Equal(t, "v1", string(values[0]))
	assert.Equal(t, "v2", string(values[1]))
	assert.Equal(t, "users", string(p.Header.Get([]byte("X-Service"))))
	assert.Empty(t, p.Header.Get([]byte("X-Extra-Code")))
	assert.Empty(t, p.Header.Get([]byte("X-Incident")))
	tag := string(p.Header.Get([]byte("ETag")))
	assert.True(t, strings.HasPrefix(tag, `W/"`))
	p.Release()

	again := a.Prepare(context.Background(), o)
	assert.Equal(t, tag, string(again.Header.Get([]byte("ETag"))))
	again.Release()

	failed := a.Prepare(context.Background(), outcomes.Fail[int](AppError{Status: http.StatusConflict, Reason: "conflict", Code: 1009}))
	defer failed.Release()
	assert.Equal(t, http.StatusConflict, failed.Status)
	assert.Equal(t, `{"code":1009,"msg":"conflict"}`, string(failed.Body))
	assert.Equal(t, "1009", string(failed.Header.Get([]byte("X-Extra-Code"))))
	assert.NotEmpty(t, failed.Incident)
	assert.Equal(t, failed.Incident, string(failed.Header.Get([]byte("X-Incident"))))
}

func TestPrepareSerializeFailed(t *testing.T) {
	a := assembler(t, configs.Config{})
	assert.Panics(t, func() {
		a.Prepare(context.Background(), outcomes.Succeed[chan int, AppError](make(chan int)))
	})
	assert.Panics(t, func() {
		a.Prepare(context.Background(), nil)
	})
}

func TestPrepareTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()
	a := assembler(t, configs.Config{Resp: configs.RespConfig{IncidentHeader: "X-Incident"}})

	ctx, span := provider.Tracer("responses").Start(context.Background(), "handler")
	p := a.Prepare(ctx, outcomes.Fail[int](AppError{Status: http.StatusServiceUnavailable, Reason: "try later"}))
	p.Release()
	span.End()

	ctx, span = provider.Tracer("responses").Start(context.Background(), "handler")
	p = a.Prepare(ctx, outcomes.Succeed[int, AppError](1))
	p.Release()
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	failed := spans[0]
	require.Len(t, failed.Events(), 1)
	assert.Equal(t, responses.PreparedEventName, failed.Events()[0].Name)
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, "try later", failed.Status().Description)
	hasIncident := false
	for _, attr := range failed.Events()[0].Attributes {
		if attr.Key == responses.AttrIncident {
			hasIncident = attr.Value.AsString() != ""
		}
	}
	assert.True(t, hasIncident)

	succeeded := spans[1]
	require.Len(t, succeeded.Events(), 1)
	assert.Equal(t, codes.Unset, succeeded.Status().Code)
}

type countedError struct {
	extras *int
}

func (e countedError) LogMessage() string {
	return "counted"
}

func (e countedError) ExtraMessage() any {
	*e.extras++
	return "E42"
}

func TestPrepareTraceExtra(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()
	extras := 0
	failure := countedError{extras: &extras}

	ctx, span := provider.Tracer("responses").Start(context.Background(), "handler")
	p := assembler(t, configs.Config{}).Prepare(ctx, outcomes.Fail[int](failure))
	p.Release()
	span.End()
	assert.Equal(t, 0, extras)

	ctx, span = provider.Tracer("responses").Start(context.Background(), "handler")
	p = assembler(t, configs.Config{Resp: configs.RespConfig{ExtraCodeHeader: "X-Code"}}).Prepare(ctx, outcomes.Fail[int](failure))
	assert.Equal(t, "E42", string(p.Header.Get([]byte("X-Code"))))
	p.Release()
	span.End()
	assert.Positive(t, extras)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	hasExtra := func(index int) bool {
		for _, attr := range spans[index].Events()[0].Attributes {
			if attr.Key == responses.AttrExtra {
				return true
			}
		}
		return false
	}
	assert.False(t, hasExtra(0))
	assert.True(t, hasExtra(1))
}

func TestPrepareDefaultAssembler(t *testing.T) {
	p := responses.Prepare(context.Background(), outcomes.Succeed[outcomes.Nil, AppError](outcomes.Nil{}))
	defer p.Release()
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, `{"data":null}`, string(p.Body))
	assert.NotNil(t, responses.Default().Snapshot())
}
