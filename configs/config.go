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
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/logs"
	"github.com/goccy/go-yaml"
)

const (
	DefaultBodyName   = "data"
	DefaultErrMsgName = "msg"
)

// SignedStatus adds a field whose value tells success and failure apart.
type SignedStatus struct {
	Field string `json:"field" yaml:"field"`
	OK    any    `json:"ok" yaml:"ok"`
	Err   any    `json:"err" yaml:"err"`
}

type SerdeConfig struct {
	BodyName     string        `json:"bodyName,omitempty" yaml:"bodyName,omitempty"`
	ErrMsgName   string        `json:"errMsgName,omitempty" yaml:"errMsgName,omitempty"`
	FullField    bool          `json:"fullField,omitempty" yaml:"fullField,omitempty"`
	SignedStatus *SignedStatus `json:"signedStatus,omitempty" yaml:"signedStatus,omitempty"`
	// ExtraCode names the envelope field carrying the extra message. Empty disables it.
	ExtraCode string `json:"extraCode,omitempty" yaml:"extraCode,omitempty"`
}

type RespConfig struct {
	// ExtraCodeHeader names the response header carrying the extra message of failures.
	ExtraCodeHeader string            `json:"extraCodeHeader,omitempty" yaml:"extraCodeHeader,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	ETag            bool              `json:"etag,omitempty" yaml:"etag,omitempty"`
	IncidentHeader  string            `json:"incidentHeader,omitempty" yaml:"incidentHeader,omitempty"`
}

type Config struct {
	Serde SerdeConfig `json:"serde,omitempty" yaml:"serde,omitempty"`
	Resp  RespConfig  `json:"resp,omitempty" yaml:"resp,omitempty"`
	Log   logs.Config `json:"log,omitempty" yaml:"log,omitempty"`
}

func FromYAML(p []byte) (config Config, err error) {
	if len(p) == 0 {
		return
	}
	if err = yaml.Unmarshal(p, &config); err != nil {
		err = errors.Warning("configs: decode yaml failed").WithCause(err)
		return
	}
	return
}
