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

// Package responses turns an outcome into a status, headers and a body.
package responses

import (
	"context"
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/configs"
	"github.com/aacfactory/outcomes/effects"
	"github.com/aacfactory/outcomes/envelopes"
	"github.com/aacfactory/outcomes/failures"
	"github.com/aacfactory/outcomes/logs"
	"github.com/aacfactory/outcomes/transports"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/xid"
	"github.com/valyala/bytebufferpool"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Respondable is what the assembler renders. Every outcomes.Outcome is one.
type Respondable interface {
	envelopes.Source
	effects.Effects
}

// Prepared is a rendered response. Body is only valid until Release.
type Prepared struct {
	Status   int
	Header   transports.Header
	Body     []byte
	Incident string
	buf      *bytebufferpool.ByteBuffer
}

func (p *Prepared) Release() {
	if p.buf == nil {
		return
	}
	p.Body = nil
	bytebufferpool.Put(p.buf)
	p.buf = nil
}

func New(options ...Option) *Assembler {
	opt := Options{}
	for _, option := range options {
		option(&opt)
	}
	if opt.snapshot == nil {
		opt.snapshot = configs.Load()
	}
	if opt.log == nil {
		opt.log = defaultLog(opt.snapshot)
	}
	return &Assembler{
		snapshot: opt.snapshot,
		log:      opt.log.With("outcomes", "responses"),
	}
}

func defaultLog(snapshot *configs.Snapshot) logs.Logger {
	config := snapshot.Config().Log
	if config == (logs.Config{}) {
		return logs.Default()
	}
	log, err := logs.New(config)
	if err != nil {
		panic(fmt.Sprintf("%+v", errors.Warning("responses: create log failed").WithCause(err)))
	}
	return log
}

type Assembler struct {
	snapshot *configs.Snapshot
	log      logs.Logger
}

func (assembler *Assembler) Snapshot() *configs.Snapshot {
	return assembler.snapshot
}

// Prepare renders r in a fixed order: body, status, then headers.
// The effects of r run at each step and the header effect runs last, so it may override any header.
// A payload that can not be serialized is a programming error and panics.
func (assembler *Assembler) Prepare(ctx context.Context, r Respondable) *Prepared {
	if r == nil {
		panic(fmt.Sprintf("%+v", errors.Warning("responses: prepare failed, respondable is nil")))
	}
	snapshot := assembler.snapshot
	succeeded := r.Succeeded()
	var failure failures.Failure
	if !succeeded {
		failure = r.Failed()
	}
	p := &Prepared{
		Status: http.StatusOK,
		Header: transports.NewHeader(),
		buf:    bytebufferpool.Get(),
	}
	// body
	if r.BodyEffect(p.buf) == effects.Continue {
		if err := envelopes.Encode(p.buf, snapshot, r); err != nil {
			p.Release()
			panic(fmt.Sprintf("%+v", errors.Warning("responses: serialize outcome failed").WithCause(err)))
		}
	} else {
		p.buf.Reset()
	}
	p.Body = p.buf.B
	// status
	if !succeeded {
		p.Status = failures.HTTPStatus(failure)
	}
	if status, ok := r.StatusEffect(); ok {
		p.Status = status
	}
	// headers
	header := p.Header
	header.Set(transports.ContentTypeHeaderName, transports.ContentTypeJsonHeaderValue)
	if !succeeded {
		if name, has := snapshot.ExtraHeader(); has {
			header.Set(name, headerValue(failures.ExtraMessage(failure)))
		}
	}
	for _, hv := range snapshot.Headers() {
		header.Set(hv.Name, hv.Value)
	}
	if snapshot.ETag() && len(p.Body) > 0 {
		header.Set(transports.ETagHeaderName, etag(p.Body))
	}
	if !succeeded {
		if name, has := snapshot.IncidentHeader(); has {
			p.Incident = xid.New().String()
			header.Set(name, []byte(p.Incident))
		}
	}
	r.HeadersEffect(header)

	assembler.observe(ctx, failure, p)
	return p
}

func (assembler *Assembler) observe(ctx context.Context, failure failures.Failure, p *Prepared) {
	log := assembler.log
	if ctxLog, has := logs.From(ctx); has {
		log = ctxLog
	}
	if failure != nil {
		if p.Status >= http.StatusInternalServerError {
			if log.ErrorEnabled() {
				log.Error().
					With("status", strconv.Itoa(p.Status)).
					With("incident", p.Incident).
					Message(failure.LogMessage())
			}
		} else if log.WarnEnabled() {
			log.Warn().
				With("status", strconv.Itoa(p.Status)).
				With("incident", p.Incident).
				Message(failure.LogMessage())
		}
	}
	if log.DebugEnabled() {
		log.Debug().
			With("status", strconv.Itoa(p.Status)).
			With("succeeded", strconv.FormatBool(failure == nil)).
			With("body", strconv.Itoa(len(p.Body))).
			Message("responses: outcome prepared")
	}
	trace(ctx, assembler.snapshot, failure, p)
}

func headerValue(v any) []byte {
	var s string
	switch value := v.(type) {
	case nil:
		return nil
	case string:
		s = value
	case []byte:
		s = string(value)
	default:
		s = fmt.Sprint(value)
	}
	return []byte(strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r == 0 {
			return -1
		}
		return r
	}, s))
}

func etag(body []byte) []byte {
	tag := make([]byte, 0, 20)
	tag = append(tag, `W/"`...)
	tag = strconv.AppendUint(tag, xxhash.Sum64(body), 16)
	tag = append(tag, '"')
	return tag
}

var (
	defaultAssemblerOnce sync.Once
	defaultAssembler     *Assembler
)

// Default is the assembler over configs.Load.
func Default() *Assembler {
	defaultAssemblerOnce.Do(func() {
		defaultAssembler = New()
	})
	return defaultAssembler
}

func Prepare(ctx context.Context, r Respondable) *Prepared {
	return Default().Prepare(ctx, r)
}
