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

package writers

import (
	"bytes"
	"context"
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/gcg"
	"github.com/aacfactory/outcomes/cmd/generates/sources"
	"os"
	"strconv"
)

func NewFailureFile(failure *sources.Failure) (file *FailureFile) {
	file = &FailureFile{
		failure: failure,
	}
	return
}

// FailureFile writes the failure methods of one enum into <type>_failure.go.
type FailureFile struct {
	failure *sources.Failure
}

func (s *FailureFile) Name() (name string) {
	name = s.failure.Filename()
	return
}

// Render returns the source of the file.
func (s *FailureFile) Render(ctx context.Context) (p []byte, err error) {
	if ctx.Err() != nil {
		err = errors.Warning("writers: failure file render failed").
			WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
			WithCause(ctx.Err())
		return
	}
	file := gcg.NewFileWithoutNote(s.failure.PackageName)
	// comments
	file.FileComments(sources.GeneratedNote + "\n")
	// imports
	for _, importer := range s.importsCode() {
		file.AddImport(importer)
	}
	// methods
	file.AddCode(s.logMessageCode())
	file.AddCode(s.statusCode())
	file.AddCode(s.responseMessageCode())
	file.AddCode(s.extraMessageCode())
	file.AddCode(s.defaultResponseMessageCode())
	file.AddCode(s.defaultExtraMessageCode())
	if !s.failure.HasString {
		file.AddCode(s.stringCode())
	}
	if !s.failure.HasError {
		file.AddCode(s.errorCode())
	}

	buf := bytes.NewBuffer([]byte{})
	renderErr := file.Render(buf)
	if renderErr != nil {
		err = errors.Warning("writers: failure file render failed").
			WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
			WithCause(renderErr)
		return
	}
	p = buf.Bytes()
	return
}

func (s *FailureFile) Write(ctx context.Context) (err error) {
	body, renderErr := s.Render(ctx)
	if renderErr != nil {
		err = errors.Warning("writers: failure file write failed").
			WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
			WithCause(renderErr)
		return
	}
	writer, openErr := os.OpenFile(s.Name(), os.O_CREATE|os.O_TRUNC|os.O_RDWR|os.O_SYNC, 0644)
	if openErr != nil {
		err = errors.Warning("writers: failure file write failed").
			WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
			WithCause(openErr)
		return
	}
	n := 0
	bodyLen := len(body)
	for n < bodyLen {
		nn, writeErr := writer.Write(body[n:])
		if writeErr != nil {
			_ = writer.Close()
			err = errors.Warning("writers: failure file write failed").
				WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
				WithCause(writeErr)
			return
		}
		n += nn
	}
	syncErr := writer.Sync()
	if syncErr != nil {
		_ = writer.Close()
		err = errors.Warning("writers: failure file write failed").
			WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
			WithCause(syncErr)
		return
	}
	closeErr := writer.Close()
	if closeErr != nil {
		err = errors.Warning("writers: failure file write failed").
			WithMeta("failure", s.failure.Name).WithMeta("file", s.Name()).
			WithCause(closeErr)
		return
	}
	return
}

func (s *FailureFile) importsCode() (packages []*gcg.Package) {
	packages = make([]*gcg.Package, 0, 2)
	paths := make(map[string]struct{})
	packages = append(packages, gcg.NewPackage("net/http"))
	paths["net/http"] = struct{}{}
	if !s.failure.HasString && !s.failure.IsString() {
		packages = append(packages, gcg.NewPackage("strconv"))
		paths["strconv"] = struct{}{}
	}
	for _, i := range s.failure.Imports {
		if _, has := paths[i.Path]; has && i.Alias == "" {
			continue
		}
		if i.Alias != "" {
			packages = append(packages, gcg.NewPackageWithAlias(i.Path, i.Alias))
		} else {
			packages = append(packages, gcg.NewPackage(i.Path))
		}
	}
	return
}

// switchCode renders a switch over the receiver, a blank defaultBody omits the default clause.
func (s *FailureFile) switchCode(cases []string, bodies []string, defaultBody string) (code gcg.Code) {
	stmt := gcg.Statements()
	if len(cases) == 0 {
		if defaultBody != "" {
			stmt.Tab().Token(defaultBody).Line()
		}
		code = stmt
		return
	}
	stmt.Tab().Token("switch e {").Line()
	for i, c := range cases {
		stmt.Tab().Token(fmt.Sprintf("case %s:", c)).Line()
		stmt.Tab().Tab().Token(bodies[i]).Line()
	}
	if defaultBody != "" {
		stmt.Tab().Token("default:").Line()
		stmt.Tab().Tab().Token(defaultBody).Line()
	}
	stmt.Tab().Token("}").Line()
	code = stmt
	return
}

func (s *FailureFile) logMessageCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("LogMessage")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("message", gcg.Ident("string"))
	body := gcg.Statements()
	body.Tab().Token("message = e.String()").Line()
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) statusCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("HTTPStatus")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("status", gcg.Ident("int"))
	cases := make([]string, 0, len(s.failure.Variants))
	bodies := make([]string, 0, len(s.failure.Variants))
	for _, variant := range s.failure.Variants {
		if !variant.HasStatus {
			continue
		}
		cases = append(cases, variant.Name)
		bodies = append(bodies, fmt.Sprintf("status = int(%s)", variant.Status))
	}
	body := gcg.Statements()
	body.Add(s.switchCode(cases, bodies, "status = http.StatusInternalServerError"))
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) responseMessageCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("ResponseMessage")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("message", gcg.Ident("string"))
	cases := make([]string, 0, len(s.failure.Variants))
	bodies := make([]string, 0, len(s.failure.Variants))
	for _, variant := range s.failure.Variants {
		if !variant.HasMessage {
			continue
		}
		cases = append(cases, variant.Name)
		bodies = append(bodies, fmt.Sprintf("message = %s", strconv.Quote(variant.Message)))
	}
	body := gcg.Statements()
	body.Add(s.switchCode(cases, bodies, "message = e.LogMessage()"))
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) extraMessageCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("ExtraMessage")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("extra", gcg.Ident("any"))
	cases := make([]string, 0, len(s.failure.Variants))
	bodies := make([]string, 0, len(s.failure.Variants))
	for _, variant := range s.failure.Variants {
		if !variant.HasExtra {
			continue
		}
		cases = append(cases, variant.Name)
		bodies = append(bodies, fmt.Sprintf("v = %s", variant.Extra))
	}
	body := gcg.Statements()
	body.Tab().Token(fmt.Sprintf("var v %s", s.failure.ExtraType())).Line()
	if len(cases) > 0 {
		body.Add(s.switchCode(cases, bodies, ""))
	}
	body.Tab().Token("extra = v").Line()
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) defaultResponseMessageCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("DefaultResponseMessage")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("message", gcg.Ident("string"))
	fn.AddResult("has", gcg.Ident("bool"))
	body := gcg.Statements()
	if s.failure.HasMessage {
		body.Tab().Token(fmt.Sprintf("message = %s", strconv.Quote(s.failure.Message))).Line()
		body.Tab().Token("has = true").Line()
	}
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) defaultExtraMessageCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("DefaultExtraMessage")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("extra", gcg.Ident("any"))
	fn.AddResult("has", gcg.Ident("bool"))
	body := gcg.Statements()
	if s.failure.HasExtra {
		body.Tab().Token(fmt.Sprintf("var v %s", s.failure.ExtraType())).Line()
		body.Tab().Token("extra = v").Line()
		body.Tab().Token("has = true").Line()
	}
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) stringCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("String")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("s", gcg.Ident("string"))
	cases := make([]string, 0, len(s.failure.Variants))
	bodies := make([]string, 0, len(s.failure.Variants))
	for _, variant := range s.failure.Variants {
		cases = append(cases, variant.Name)
		bodies = append(bodies, fmt.Sprintf("s = %s", strconv.Quote(variant.Name)))
	}
	defaultBody := ""
	switch {
	case s.failure.IsString():
		defaultBody = "s = string(e)"
	case s.failure.IsUnsigned():
		defaultBody = fmt.Sprintf("s = \"%s(\" + strconv.FormatUint(uint64(e), 10) + \")\"", s.failure.Name)
	default:
		defaultBody = fmt.Sprintf("s = \"%s(\" + strconv.FormatInt(int64(e), 10) + \")\"", s.failure.Name)
	}
	body := gcg.Statements()
	body.Add(s.switchCode(cases, bodies, defaultBody))
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}

func (s *FailureFile) errorCode() (code gcg.Code) {
	fn := gcg.Func()
	fn.Name("Error")
	fn.Receiver("e", gcg.Ident(s.failure.Name))
	fn.AddResult("s", gcg.Ident("string"))
	body := gcg.Statements()
	body.Tab().Token("s = e.LogMessage()").Line()
	body.Tab().Return()
	fn.Body(body)
	code = fn.Build()
	return
}
