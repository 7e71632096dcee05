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

package configs

import (
	"bytes"
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/json"
	"net/textproto"
	"sort"
	"strings"
)

// Snapshot is a resolved Config with every key and constant value already JSON encoded.
// It is immutable and safe for concurrent use.
type Snapshot struct {
	config         Config
	bodyKey        []byte
	msgKey         []byte
	fullField      bool
	signed         bool
	signedKey      []byte
	signedOK       []byte
	signedErr      []byte
	extraKey       []byte
	extraHeader    []byte
	headers        []HeaderValue
	etag           bool
	incidentHeader []byte
}

type HeaderValue struct {
	Name  []byte
	Value []byte
}

func Resolve(config Config) (snapshot *Snapshot, err error) {
	serde := config.Serde
	serde.BodyName = strings.TrimSpace(serde.BodyName)
	if serde.BodyName == "" {
		serde.BodyName = DefaultBodyName
	}
	serde.ErrMsgName = strings.TrimSpace(serde.ErrMsgName)
	if serde.ErrMsgName == "" {
		serde.ErrMsgName = DefaultErrMsgName
	}
	serde.ExtraCode = strings.TrimSpace(serde.ExtraCode)
	names := []string{serde.BodyName, serde.ErrMsgName}
	if serde.ExtraCode != "" {
		names = append(names, serde.ExtraCode)
	}
	if serde.SignedStatus != nil {
		field := strings.TrimSpace(serde.SignedStatus.Field)
		if field == "" {
			err = errors.Warning("configs: resolve failed").WithCause(fmt.Errorf("signed status field is required"))
			return
		}
		names = append(names, field)
	}
	for i, name := range names {
		for _, other := range names[i+1:] {
			if name == other {
				err = errors.Warning("configs: resolve failed").WithCause(fmt.Errorf("field names must be distinct")).WithMeta("field", name)
				return
			}
		}
	}
	config.Serde = serde

	snapshot = &Snapshot{
		config:    config,
		fullField: serde.FullField,
		etag:      config.Resp.ETag,
	}
	if snapshot.bodyKey, err = encodeKey(serde.BodyName); err != nil {
		return nil, err
	}
	if snapshot.msgKey, err = encodeKey(serde.ErrMsgName); err != nil {
		return nil, err
	}
	if serde.ExtraCode != "" {
		if snapshot.extraKey, err = encodeKey(serde.ExtraCode); err != nil {
			return nil, err
		}
	}
	if signed := serde.SignedStatus; signed != nil {
		snapshot.signed = true
		if snapshot.signedKey, err = encodeKey(strings.TrimSpace(signed.Field)); err != nil {
			return nil, err
		}
		if snapshot.signedOK, err = encodeValue("ok", signed.OK); err != nil {
			return nil, err
		}
		if snapshot.signedErr, err = encodeValue("err", signed.Err); err != nil {
			return nil, err
		}
		if bytes.Equal(snapshot.signedOK, snapshot.signedErr) {
			err = errors.Warning("configs: resolve failed").WithCause(fmt.Errorf("signed status values must differ")).WithMeta("value", string(snapshot.signedOK))
			return nil, err
		}
	}

	resp := config.Resp
	if name := strings.TrimSpace(resp.ExtraCodeHeader); name != "" {
		if snapshot.extraHeader, err = headerName(name); err != nil {
			return nil, err
		}
	}
	if name := strings.TrimSpace(resp.IncidentHeader); name != "" {
		if snapshot.incidentHeader, err = headerName(name); err != nil {
			return nil, err
		}
	}
	if len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for key := range resp.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		snapshot.headers = make([]HeaderValue, 0, len(keys))
		for _, key := range keys {
			name, nameErr := headerName(key)
			if nameErr != nil {
				return nil, nameErr
			}
			value := resp.Headers[key]
			if strings.ContainsAny(value, "\r\n") {
				err = errors.Warning("configs: resolve failed").WithCause(fmt.Errorf("header value must not contain line breaks")).WithMeta("header", key)
				return nil, err
			}
			snapshot.headers = append(snapshot.headers, HeaderValue{Name: name, Value: []byte(value)})
		}
	}
	return
}

func encodeKey(name string) (p []byte, err error) {
	p, err = json.Marshal(name)
	if err != nil {
		err = errors.Warning("configs: resolve failed").WithCause(err).WithMeta("field", name)
		return
	}
	return
}

func encodeValue(name string, v any) (p []byte, err error) {
	p, err = json.Marshal(v)
	if err != nil {
		err = errors.Warning("configs: resolve failed, signed status value is not json encodable").WithCause(err).WithMeta("value", name)
		return
	}
	return
}

func headerName(name string) (p []byte, err error) {
	name = strings.TrimSpace(name)
	if !validHeaderName(name) {
		err = errors.Warning("configs: resolve failed").WithCause(fmt.Errorf("invalid header name")).WithMeta("header", name)
		return
	}
	p = []byte(textproto.CanonicalMIMEHeaderKey(name))
	return
}

// validHeaderName checks the token grammar of RFC 7230.
func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}

func (snapshot *Snapshot) Config() Config {
	return snapshot.config
}

func (snapshot *Snapshot) BodyKey() []byte {
	return snapshot.bodyKey
}

func (snapshot *Snapshot) MessageKey() []byte {
	return snapshot.msgKey
}

func (snapshot *Snapshot) FullField() bool {
	return snapshot.fullField
}

func (snapshot *Snapshot) Signed() (key []byte, ok []byte, err []byte, has bool) {
	if !snapshot.signed {
		return
	}
	return snapshot.signedKey, snapshot.signedOK, snapshot.signedErr, true
}

func (snapshot *Snapshot) ExtraKey() ([]byte, bool) {
	return snapshot.extraKey, len(snapshot.extraKey) > 0
}

func (snapshot *Snapshot) ExtraHeader() ([]byte, bool) {
	return snapshot.extraHeader, len(snapshot.extraHeader) > 0
}

// ExtraEnabled reports whether extra messages reach the envelope or a header.
func (snapshot *Snapshot) ExtraEnabled() bool {
	return len(snapshot.extraKey) > 0 || len(snapshot.extraHeader) > 0
}

func (snapshot *Snapshot) Headers() []HeaderValue {
	return snapshot.headers
}

func (snapshot *Snapshot) ETag() bool {
	return snapshot.etag
}

func (snapshot *Snapshot) IncidentHeader() ([]byte, bool) {
	return snapshot.incidentHeader, len(snapshot.incidentHeader) > 0
}

// FieldSize returns the number of fields of a success and of a failure envelope.
func (snapshot *Snapshot) FieldSize() (ok int, err int) {
	ok, err = 1, 1
	if snapshot.signed {
		ok++
		err++
	}
	if len(snapshot.extraKey) > 0 {
		err++
	}
	if snapshot.fullField {
		ok++
		err++
		if len(snapshot.extraKey) > 0 {
			ok++
		}
	}
	return
}
