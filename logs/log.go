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

package logs

import (
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/logs"
	"strings"
	"sync"
	"time"
)

const (
	TextConsoleFormatter         = ConsoleFormatter("text")
	TextColorfulConsoleFormatter = ConsoleFormatter("text_colorful")
	JsonConsoleFormatter         = ConsoleFormatter("json")
)

type ConsoleFormatter string

func (formatter ConsoleFormatter) Code() logs.ConsoleWriterFormatter {
	switch formatter {
	case TextColorfulConsoleFormatter:
		return logs.ColorTextFormatter
	case JsonConsoleFormatter:
		return logs.JsonFormatter
	default:
		return logs.TextFormatter
	}
}

const (
	Stdout = ConsoleWriterOutType("stdout")
	Stderr = ConsoleWriterOutType("stderr")
	Stdmix = ConsoleWriterOutType("stdout_stderr")
)

type ConsoleWriterOutType string

func (ot ConsoleWriterOutType) Code() logs.ConsoleWriterOutType {
	switch ot {
	case Stderr:
		return logs.StdErr
	default:
		return logs.StdMix
	}
}

const (
	Debug = Level("debug")
	Info  = Level("info")
	Warn  = Level("warn")
	Error = Level("error")
)

type Level string

func (level Level) Code() logs.Level {
	switch level {
	case Debug:
		return logs.DebugLevel
	case Warn:
		return logs.WarnLevel
	case Error:
		return logs.ErrorLevel
	default:
		return logs.InfoLevel
	}
}

type Config struct {
	Level           Level                `json:"level,omitempty" yaml:"level,omitempty"`
	Formatter       ConsoleFormatter     `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Console         ConsoleWriterOutType `json:"console,omitempty" yaml:"console,omitempty"`
	DisableConsole  bool                 `json:"disableConsole,omitempty" yaml:"disableConsole,omitempty"`
	Consumes        int                  `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	Buffer          int                  `json:"buffer,omitempty" yaml:"buffer,omitempty"`
	SendTimeout     string               `json:"sendTimeout,omitempty" yaml:"sendTimeout,omitempty"`
	ShutdownTimeout string               `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

func New(config Config) (v Logger, err error) {
	options := make([]logs.Option, 0, 1)
	options = append(options, logs.WithLevel(config.Level.Code()))

	if config.DisableConsole {
		options = append(options, logs.DisableConsoleWriter())
	} else {
		options = append(options, logs.WithConsoleWriterOutType(config.Console.Code()))
		options = append(options, logs.WithConsoleWriterFormatter(config.Formatter.Code()))
	}
	if consumes := config.Consumes; consumes > 0 {
		options = append(options, logs.WithConsumes(consumes))
	}
	if buffer := config.Buffer; buffer > 0 {
		options = append(options, logs.WithBuffer(buffer))
	}
	if sendTimeout := strings.TrimSpace(config.SendTimeout); sendTimeout != "" {
		sendTimeouts, parseErr := time.ParseDuration(sendTimeout)
		if parseErr != nil {
			err = errors.Warning("logs: new log failed").WithCause(parseErr).WithMeta("config", "sendTimeout")
			return
		}
		options = append(options, logs.WithSendTimeout(sendTimeouts))
	}
	if shutdownTimeout := strings.TrimSpace(config.ShutdownTimeout); shutdownTimeout != "" {
		shutdownTimeout, parseErr := time.ParseDuration(shutdownTimeout)
		if parseErr != nil {
			err = errors.Warning("logs: new log failed").WithCause(parseErr).WithMeta("config", "shutdownTimeout")
			return
		}
		options = append(options, logs.WithShutdownTimeout(shutdownTimeout))
	}
	logger, newErr := logs.New(options...)
	if newErr != nil {
		err = errors.Warning("logs: new log failed").WithCause(newErr)
		return
	}
	v = logger
	return
}

type Logger interface {
	logs.Logger
}

var (
	defaultOnce   sync.Once
	defaultLogger Logger
)

// Default is the process logger used when none is given. It writes warnings and above to stderr.
func Default() Logger {
	defaultOnce.Do(func() {
		logger, err := New(Config{
			Level:     Warn,
			Formatter: TextConsoleFormatter,
			Console:   Stderr,
		})
		if err != nil {
			panic(fmt.Sprintf("%+v", err))
		}
		defaultLogger = logger
	})
	return defaultLogger
}
