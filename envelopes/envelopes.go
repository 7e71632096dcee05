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

// Package envelopes writes outcomes as JSON envelopes shaped by a configs.Snapshot.
//
// A success is written as
//
//	{[signed: ok], [full: extra default, message default], body: payload}
//
// and a failure as
//
//	{[signed: err], [extra: extra message], message: response message, [full: body: null]}
package envelopes

import (
	"github.com/aacfactory/errors"
	"github.com/aacfactory/json"
	"github.com/aacfactory/outcomes/configs"
	"github.com/aacfactory/outcomes/failures"
	"github.com/valyala/bytebufferpool"
	"strconv"
)

type Source interface {
	Succeeded() bool
	Payload() any
	Failed() failures.Failure
	DefaultResponseMessage() (string, bool)
	DefaultExtraMessage() (any, bool)
}

var (
	null = []byte("null")
)

func Marshal(snapshot *configs.Snapshot, src Source) (p []byte, err error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err = Encode(buf, snapshot, src); err != nil {
		return
	}
	p = make([]byte, buf.Len())
	copy(p, buf.B)
	return
}

// Encode appends the envelope of src to buf. On failure buf is restored to its previous length.
func Encode(buf *bytebufferpool.ByteBuffer, snapshot *configs.Snapshot, src Source) (err error) {
	if buf == nil || snapshot == nil || src == nil {
		err = errors.Warning("envelopes: encode failed, buffer, snapshot and source are required")
		return
	}
	mark := buf.Len()
	if src.Succeeded() {
		err = encodeSuccess(buf, snapshot, src)
	} else {
		err = encodeFailure(buf, snapshot, src.Failed())
	}
	if err != nil {
		buf.B = buf.B[:mark]
	}
	return
}

func encodeSuccess(buf *bytebufferpool.ByteBuffer, snapshot *configs.Snapshot, src Source) error {
	size, _ := snapshot.FieldSize()
	w := NewObjectWriter(buf, size)
	if key, ok, _, signed := snapshot.Signed(); signed {
		w.Raw(key, ok)
	}
	if snapshot.FullField() {
		if key, has := snapshot.ExtraKey(); has {
			if extra, ok := src.DefaultExtraMessage(); ok {
				w.Value(key, extra)
			} else {
				w.Raw(key, null)
			}
		}
		if msg, ok := src.DefaultResponseMessage(); ok {
			w.Value(snapshot.MessageKey(), msg)
		} else {
			w.Raw(snapshot.MessageKey(), null)
		}
	}
	w.Value(snapshot.BodyKey(), src.Payload())
	return w.End()
}

func encodeFailure(buf *bytebufferpool.ByteBuffer, snapshot *configs.Snapshot, failure failures.Failure) error {
	_, size := snapshot.FieldSize()
	w := NewObjectWriter(buf, size)
	if key, _, fail, signed := snapshot.Signed(); signed {
		w.Raw(key, fail)
	}
	if key, has := snapshot.ExtraKey(); has {
		w.Value(key, failures.ExtraMessage(failure))
	}
	w.Value(snapshot.MessageKey(), failures.ResponseMessage(failure))
	if snapshot.FullField() {
		w.Raw(snapshot.BodyKey(), null)
	}
	return w.End()
}

// ObjectWriter writes one JSON object whose number of fields is declared up front.
type ObjectWriter struct {
	buf      *bytebufferpool.ByteBuffer
	expected int
	written  int
	err      error
}

func NewObjectWriter(buf *bytebufferpool.ByteBuffer, fields int) *ObjectWriter {
	_ = buf.WriteByte('{')
	return &ObjectWriter{
		buf:      buf,
		expected: fields,
	}
}

// Raw writes a field whose key and value are already JSON encoded.
func (w *ObjectWriter) Raw(key []byte, value []byte) {
	if w.err != nil {
		return
	}
	if w.written > 0 {
		_ = w.buf.WriteByte(',')
	}
	_, _ = w.buf.Write(key)
	_ = w.buf.WriteByte(':')
	_, _ = w.buf.Write(value)
	w.written++
}

func (w *ObjectWriter) Value(key []byte, value any) {
	if w.err != nil {
		return
	}
	if value == nil {
		w.Raw(key, null)
		return
	}
	p, err := json.Marshal(value)
	if err != nil {
		w.err = errors.Warning("envelopes: encode value failed").WithCause(err).WithMeta("field", string(key))
		return
	}
	w.Raw(key, p)
}

func (w *ObjectWriter) Written() int {
	return w.written
}

// End closes the object. It fails when a value could not be encoded or when
// the number of written fields differs from the declared one.
func (w *ObjectWriter) End() error {
	if w.err != nil {
		return w.err
	}
	if w.written != w.expected {
		return errors.Warning("envelopes: field count mismatch").
			WithMeta("expected", strconv.Itoa(w.expected)).
			WithMeta("written", strconv.Itoa(w.written))
	}
	_ = w.buf.WriteByte('}')
	return nil
}
