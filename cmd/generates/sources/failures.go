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

package sources

import (
	"bytes"
	"context"
	"fmt"
	"github.com/aacfactory/cases"
	"github.com/aacfactory/errors"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const (
	GeneratedNote = "NOTE: this file has been automatically generated, DON'T EDIT IT!!!"
)

var (
	enumKinds = map[string]struct{}{
		"int": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
		"uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {},
		"byte": {}, "rune": {}, "string": {},
	}
	typeAnnotations = map[string]struct{}{
		"failure": {}, "extra": {}, "message": {},
	}
	variantAnnotations = map[string]struct{}{
		"message": {}, "status": {}, "extra": {},
	}
	// methods written into the generated file, String and Error are optional
	generatedMethods = []string{
		"LogMessage", "HTTPStatus", "ResponseMessage", "ExtraMessage", "DefaultResponseMessage", "DefaultExtraMessage",
	}
)

// Failure is an enum type marked by @failure.
type Failure struct {
	Package     Package
	PackageName string
	Name        string
	Kind        string
	Position    token.Position
	Extra       string
	HasExtra    bool
	Message     string
	HasMessage  bool
	Variants    []*Variant
	Imports     Imports
	HasString   bool
	HasError    bool
}

func (failure *Failure) IsString() bool {
	return failure.Kind == "string"
}

func (failure *Failure) IsUnsigned() bool {
	return strings.HasPrefix(failure.Kind, "uint") || failure.Kind == "byte"
}

// ExtraType is the type of the extra message, string when not declared.
func (failure *Failure) ExtraType() string {
	if failure.HasExtra {
		return failure.Extra
	}
	return "string"
}

// Filename is the generated file, named after the type in snake case.
func (failure *Failure) Filename() string {
	return filepath.ToSlash(filepath.Join(failure.Package.Dir, fmt.Sprintf("%s_failure.go", SnakeCase(failure.Name))))
}

// Variant is a constant of a failure type.
type Variant struct {
	Name       string
	Position   token.Position
	Message    string
	HasMessage bool
	Status     string
	HasStatus  bool
	Extra      string
	HasExtra   bool
	// position of @status
	statusPosition token.Position
}

type declaredType struct {
	spec        *ast.TypeSpec
	annotations Annotations
	positions   []token.Pos
	imports     Imports
	failure     *Failure
	refs        []ast.Expr
}

// ParseFailures reads the failure enums declared in pkg.
// Every invalid annotation is reported, the returned error carries one cause per diagnostic,
// each with file, line and col metadata.
func ParseFailures(ctx context.Context, pkg Package) (failures []*Failure, err error) {
	if ctx.Err() != nil {
		err = errors.Warning("sources: parse failures failed").WithCause(ctx.Err()).WithMeta("package", pkg.Path)
		return
	}
	fset := token.NewFileSet()
	files, parseErr := parsePackageFiles(fset, pkg.Dir)
	if parseErr != nil {
		err = errors.Warning("sources: parse failures failed").WithCause(parseErr).WithMeta("package", pkg.Path)
		return
	}
	diagnostics := make([]errors.CodeError, 0, 1)
	types := make(map[string]*declaredType)
	typeNames := make([]string, 0, 1)
	methods := make(map[string]map[string]struct{})
	// types and methods
	for _, file := range files {
		imports := NewImports(file.Imports)
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && !d.Lparen.IsValid() {
						doc = d.Doc
					}
					text, positions := commentLines(doc)
					annotations, annotationsErr := ParseAnnotations(text)
					if annotationsErr != nil {
						if strings.Contains(text, "@failure") {
							diagnostics = append(diagnostics, diagnose(fset, ts.Pos(), "invalid annotations").WithCause(annotationsErr))
						}
						continue
					}
					if _, has := annotations.Get("failure"); !has {
						continue
					}
					types[ts.Name.Name] = &declaredType{
						spec:        ts,
						annotations: annotations,
						positions:   positions,
						imports:     imports,
					}
					typeNames = append(typeNames, ts.Name.Name)
				}
			case *ast.FuncDecl:
				if d.Recv == nil || len(d.Recv.List) == 0 {
					continue
				}
				recv := receiverName(d.Recv.List[0].Type)
				if recv == "" {
					continue
				}
				names, has := methods[recv]
				if !has {
					names = make(map[string]struct{})
					methods[recv] = names
				}
				names[d.Name.Name] = struct{}{}
			}
		}
	}
	if len(types) == 0 {
		return
	}
	// failures
	for _, name := range typeNames {
		declared := types[name]
		failure, typeDiagnostics := newFailure(fset, pkg, declared)
		diagnostics = append(diagnostics, typeDiagnostics...)
		if failure == nil {
			continue
		}
		failure.PackageName = files[0].Name.Name
		declared.failure = failure
		declaredMethods := methods[name]
		for _, method := range generatedMethods {
			if _, has := declaredMethods[method]; has {
				diagnostics = append(diagnostics, diagnose(fset, declared.spec.Pos(), fmt.Sprintf("method %s of %s is declared in source", method, name)))
			}
		}
		_, failure.HasString = declaredMethods["String"]
		_, failure.HasError = declaredMethods["Error"]
	}
	// variants
	for _, file := range files {
		for _, decl := range file.Decls {
			d, ok := decl.(*ast.GenDecl)
			if !ok || d.Tok != token.CONST {
				continue
			}
			current := ""
			for _, spec := range d.Specs {
				vs := spec.(*ast.ValueSpec)
				if vs.Type != nil {
					current = typeIdent(vs.Type)
				} else if len(vs.Values) > 0 {
					current = conversionIdent(vs.Values[0])
				}
				declared, has := types[current]
				if !has || declared.failure == nil {
					continue
				}
				doc := vs.Doc
				if doc == nil && !d.Lparen.IsValid() {
					doc = d.Doc
				}
				for i, ident := range vs.Names {
					if ident.Name == "_" {
						continue
					}
					if i < len(vs.Values) && isVariantAlias(vs.Values[i], declared.failure) {
						continue
					}
					variant, refs, variantDiagnostics := newVariant(fset, ident, doc)
					diagnostics = append(diagnostics, variantDiagnostics...)
					if variant == nil {
						continue
					}
					declared.failure.Variants = append(declared.failure.Variants, variant)
					declared.refs = append(declared.refs, refs...)
				}
			}
		}
	}
	failures = make([]*Failure, 0, len(typeNames))
	for _, name := range typeNames {
		declared := types[name]
		if declared.failure == nil {
			continue
		}
		failure := declared.failure
		if len(failure.Variants) == 0 {
			diagnostics = append(diagnostics, diagnose(fset, declared.spec.Pos(), fmt.Sprintf("@failure %s is not an enum, no constants are declared", name)))
			continue
		}
		for _, variant := range failure.Variants {
			if !variant.HasStatus {
				continue
			}
			statusExpr, _ := parser.ParseExpr(variant.Status)
			_, _, statusErr := EvalStatus(statusExpr, declared.imports)
			if statusErr != nil {
				diagnostics = append(diagnostics, diagnoseAt(variant.statusPosition, "invalid @status").WithCause(statusErr).WithMeta("expr", variant.Status))
			}
		}
		failure.Imports = declared.imports.Referenced(declared.refs...)
		failures = append(failures, failure)
	}
	if len(diagnostics) > 0 {
		errs := errors.MakeErrors()
		for _, diagnostic := range diagnostics {
			errs.Append(diagnostic)
		}
		failures = nil
		err = errors.Warning("sources: parse failures failed").WithCause(errs.Error()).WithMeta("package", pkg.Path)
		return
	}
	return
}

func newFailure(fset *token.FileSet, pkg Package, declared *declaredType) (failure *Failure, diagnostics []errors.CodeError) {
	ts := declared.spec
	name := ts.Name.Name
	diagnostics = checkAnnotations(fset, declared.annotations, declared.positions, typeAnnotations, ts.Pos())
	kind, isIdent := ts.Type.(*ast.Ident)
	if ts.TypeParams != nil || ts.Assign.IsValid() || !isIdent {
		diagnostics = append(diagnostics, diagnose(fset, annotationPos(declared.annotations, declared.positions, "failure", ts.Pos()), fmt.Sprintf("@failure %s is not an enum, the underlying type must be an integer or string", name)))
		return
	}
	if _, ok := enumKinds[kind.Name]; !ok {
		diagnostics = append(diagnostics, diagnose(fset, annotationPos(declared.annotations, declared.positions, "failure", ts.Pos()), fmt.Sprintf("@failure %s is not an enum, the underlying type must be an integer or string", name)))
		return
	}
	failure = &Failure{
		Package:  pkg,
		Name:     name,
		Kind:     kind.Name,
		Position: fset.Position(ts.Pos()),
		Variants: make([]*Variant, 0, 1),
	}
	if extra, has := declared.annotations.Get("extra"); has {
		param := extra.Param()
		pos := annotationPos(declared.annotations, declared.positions, "extra", ts.Pos())
		if param == "" {
			diagnostics = append(diagnostics, diagnose(fset, pos, "invalid @extra, type is required"))
		} else if expr, parseErr := parser.ParseExpr(param); parseErr != nil {
			diagnostics = append(diagnostics, diagnose(fset, pos, "invalid @extra, type does not parse").WithCause(parseErr).WithMeta("expr", param))
		} else {
			failure.Extra = param
			failure.HasExtra = true
			declared.refs = append(declared.refs, expr)
		}
	}
	if message, has := declared.annotations.Get("message"); has {
		failure.Message = message.Param()
		failure.HasMessage = true
	}
	return
}

func newVariant(fset *token.FileSet, ident *ast.Ident, doc *ast.CommentGroup) (variant *Variant, refs []ast.Expr, diagnostics []errors.CodeError) {
	text, positions := commentLines(doc)
	annotations, annotationsErr := ParseAnnotations(text)
	if annotationsErr != nil {
		diagnostics = append(diagnostics, diagnose(fset, ident.Pos(), "invalid annotations").WithCause(annotationsErr))
		return
	}
	diagnostics = checkAnnotations(fset, annotations, positions, variantAnnotations, ident.Pos())
	variant = &Variant{
		Name:     ident.Name,
		Position: fset.Position(ident.Pos()),
	}
	if message, has := annotations.Get("message"); has {
		variant.Message = message.Param()
		variant.HasMessage = true
	}
	if status, has := annotations.Get("status"); has {
		pos := annotationPos(annotations, positions, "status", ident.Pos())
		param := status.Param()
		expr, parseErr := parser.ParseExpr(param)
		if parseErr != nil {
			diagnostics = append(diagnostics, diagnose(fset, pos, "invalid @status, expression does not parse").WithCause(parseErr).WithMeta("expr", param))
		} else {
			variant.Status = param
			variant.HasStatus = true
			variant.statusPosition = fset.Position(pos)
			refs = append(refs, expr)
		}
	}
	if extra, has := annotations.Get("extra"); has {
		pos := annotationPos(annotations, positions, "extra", ident.Pos())
		param := extra.Param()
		expr, parseErr := parser.ParseExpr(param)
		if parseErr != nil {
			diagnostics = append(diagnostics, diagnose(fset, pos, "invalid @extra, expression does not parse").WithCause(parseErr).WithMeta("expr", param))
		} else {
			variant.Extra = param
			variant.HasExtra = true
			refs = append(refs, expr)
		}
	}
	return
}

func checkAnnotations(fset *token.FileSet, annotations Annotations, positions []token.Pos, allowed map[string]struct{}, fallback token.Pos) (diagnostics []errors.CodeError) {
	diagnostics = make([]errors.CodeError, 0, 1)
	for _, annotation := range annotations {
		if _, ok := allowed[annotation.Name]; !ok {
			diagnostics = append(diagnostics, diagnose(fset, linePos(positions, annotation.Line, fallback), fmt.Sprintf("unknown annotation @%s", annotation.Name)))
		}
	}
	seen := make(map[string]struct{}, len(annotations))
	for _, annotation := range annotations {
		if _, has := seen[annotation.Name]; has {
			diagnostics = append(diagnostics, diagnose(fset, linePos(positions, annotation.Line, fallback), fmt.Sprintf("@%s is duplicated", annotation.Name)))
			continue
		}
		seen[annotation.Name] = struct{}{}
	}
	return
}

func diagnose(fset *token.FileSet, pos token.Pos, message string) errors.CodeError {
	return diagnoseAt(fset.Position(pos), message)
}

func diagnoseAt(position token.Position, message string) errors.CodeError {
	return errors.Warning(fmt.Sprintf("sources: %s", message)).
		WithMeta("file", position.Filename).
		WithMeta("line", strconv.Itoa(position.Line)).
		WithMeta("col", strconv.Itoa(position.Column)).
		WithMeta("position", position.String())
}

func annotationPos(annotations Annotations, positions []token.Pos, name string, fallback token.Pos) token.Pos {
	annotation, has := annotations.Get(name)
	if !has {
		return fallback
	}
	return linePos(positions, annotation.Line, fallback)
}

func linePos(positions []token.Pos, line int, fallback token.Pos) token.Pos {
	if line < 0 || line >= len(positions) || !positions[line].IsValid() {
		return fallback
	}
	return positions[line]
}

// commentLines returns the text of a comment group and, per line, the position of its first '@'
// or of the comment when the line has none.
func commentLines(doc *ast.CommentGroup) (text string, positions []token.Pos) {
	if doc == nil {
		return
	}
	lines := make([]string, 0, len(doc.List))
	positions = make([]token.Pos, 0, len(doc.List))
	for _, comment := range doc.List {
		if strings.HasPrefix(comment.Text, "//") {
			line := comment.Text[2:]
			lines = append(lines, line)
			if idx := strings.IndexByte(comment.Text, '@'); idx > -1 {
				positions = append(positions, comment.Pos()+token.Pos(idx))
			} else {
				positions = append(positions, comment.Pos())
			}
			continue
		}
		content := strings.TrimSuffix(strings.TrimPrefix(comment.Text, "/*"), "*/")
		offset := 2
		for _, line := range strings.Split(content, "\n") {
			lines = append(lines, line)
			if idx := strings.IndexByte(line, '@'); idx > -1 {
				positions = append(positions, comment.Pos()+token.Pos(offset+idx))
			} else {
				positions = append(positions, comment.Pos()+token.Pos(offset))
			}
			offset += len(line) + 1
		}
	}
	text = strings.Join(lines, "\n")
	return
}

func parsePackageFiles(fset *token.FileSet, dir string) (files []*ast.File, err error) {
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		err = errors.Warning("sources: read package dir failed").WithCause(readErr).WithMeta("dir", dir)
		return
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	files = make([]*ast.File, 0, len(names))
	for _, name := range names {
		filename := filepath.Join(dir, name)
		src, srcErr := os.ReadFile(filename)
		if srcErr != nil {
			err = errors.Warning("sources: read file failed").WithCause(srcErr).WithMeta("file", filename)
			return
		}
		if bytes.Contains(src, []byte(GeneratedNote)) && strings.HasSuffix(name, "_failure.go") {
			continue
		}
		file, parseErr := parser.ParseFile(fset, filename, src, parser.ParseComments)
		if parseErr != nil {
			err = errors.Warning("sources: parse file failed").WithCause(parseErr).WithMeta("file", filename)
			return
		}
		if len(files) > 0 && files[0].Name.Name != file.Name.Name {
			// package main helpers guarded by build tags
			continue
		}
		files = append(files, file)
	}
	return
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	case *ast.ParenExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	}
	return ""
}

func typeIdent(expr ast.Expr) string {
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

// conversionIdent returns T for a T(x) value.
func conversionIdent(expr ast.Expr) string {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return ""
	}
	return typeIdent(call.Fun)
}

func isVariantAlias(expr ast.Expr, failure *Failure) bool {
	if call, ok := expr.(*ast.CallExpr); ok && len(call.Args) == 1 {
		expr = call.Args[0]
	}
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return false
	}
	for _, variant := range failure.Variants {
		if variant.Name == ident.Name {
			return true
		}
	}
	return false
}

// SnakeCase converts AppError into app_error.
// Acronym runs are folded first, so HTTPError is parsed as HttpError.
func SnakeCase(s string) string {
	v, err := cases.MapTo(cases.Camel(), cases.Snake(), foldAcronyms(s))
	if err != nil || v == "" {
		return strings.ToLower(s)
	}
	return v
}

func foldAcronyms(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) || !unicode.IsUpper(runes[i-1]) {
			continue
		}
		if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			continue
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
