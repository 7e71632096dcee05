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

package effects

import (
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/transports"
	"github.com/valyala/bytebufferpool"
	"net/textproto"
	"strings"
)

type kind int

const (
	emptyBodyKind kind = iota
	setStatusKind
	setHeaderKind
	removeHeaderKind
)

type HeaderType int

const (
	// Insert replaces every value of the header.
	Insert HeaderType = iota
	// Append adds one more value to the header.
	Append
)

type Flag struct {
	kind       kind
	status     int
	key        []byte
	value      []byte
	headerType HeaderType
}

func (flag Flag) String() string {
	switch flag.kind {
	case emptyBodyKind:
		return "EmptyBody"
	case setStatusKind:
		return fmt.Sprintf("SetStatus(%d)", flag.status)
	case setHeaderKind:
		if flag.headerType == Append {
			return fmt.Sprintf("SetHeader(%s, %s, Append)", flag.key, flag.value)
		}
		return fmt.Sprintf("SetHeader(%s, %s, Insert)", flag.key, flag.value)
	default:
		return fmt.Sprintf("RemoveHeader(%s)", flag.key)
	}
}

func EmptyBody() Flag {
	return Flag{kind: emptyBodyKind}
}

func Status(status int) Flag {
	if status < 100 || status > 599 {
		panic(fmt.Sprintf("%+v", errors.Warning("effects: status is out of 100..599").WithMeta("status", fmt.Sprint(status))))
	}
	return Flag{kind: setStatusKind, status: status}
}

func InsertHeader(key string, value string) Flag {
	return SetHeader(key, value, Insert)
}

func AppendHeader(key string, value string) Flag {
	return SetHeader(key, value, Append)
}

func SetHeader(key string, value string, ht HeaderType) Flag {
	return Flag{kind: setHeaderKind, key: headerKey(key), value: []byte(value), headerType: ht}
}

func RemoveHeader(key string) Flag {
	return Flag{kind: removeHeaderKind, key: headerKey(key)}
}

func headerKey(key string) []byte {
	key = strings.TrimSpace(key)
	if key == "" {
		panic(fmt.Sprintf("%+v", errors.Warning("effects: header name is required")))
	}
	return []byte(textproto.CanonicalMIMEHeaderKey(key))
}

// Flags is an ordered sequence of flags. Composing never mutates the receiver.
type Flags struct {
	flags []Flag
}

func New(flags ...Flag) Flags {
	return Flags{}.Add(flags...)
}

func (f Flags) Add(flags ...Flag) Flags {
	merged := make([]Flag, 0, len(f.flags)+len(flags))
	merged = append(merged, f.flags...)
	merged = append(merged, flags...)
	return Flags{flags: merged}
}

func (f Flags) Join(other Flags) Flags {
	return f.Add(other.flags...)
}

func (f Flags) Len() int {
	return len(f.flags)
}

func (f Flags) Flags() []Flag {
	flags := make([]Flag, len(f.flags))
	copy(flags, f.flags)
	return flags
}

func (f Flags) String() string {
	ss := make([]string, 0, len(f.flags))
	for _, flag := range f.flags {
		ss = append(ss, flag.String())
	}
	return "[" + strings.Join(ss, ", ") + "]"
}

func (f Flags) BodyEffect(body *bytebufferpool.ByteBuffer) Body {
	for _, flag := range f.flags {
		if flag.kind == emptyBodyKind {
			if body != nil {
				body.Reset()
			}
			return Empty
		}
	}
	return Continue
}

func (f Flags) StatusEffect() (status int, ok bool) {
	for _, flag := range f.flags {
		if flag.kind == setStatusKind {
			status = flag.status
			ok = true
		}
	}
	return
}

// HeadersEffect applies every remove before any insert or append,
// so a remove followed by inserts replaces a header deterministically.
func (f Flags) HeadersEffect(header transports.Header) {
	if header == nil {
		return
	}
	for _, flag := range f.flags {
		if flag.kind == removeHeaderKind {
			header.Del(flag.key)
		}
	}
	for _, flag := range f.flags {
		if flag.kind != setHeaderKind {
			continue
		}
		switch flag.headerType {
		case Append:
			header.Add(flag.key, flag.value)
		default:
			header.Set(flag.key, flag.value)
		}
	}
}
