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
	"go/ast"
	"strconv"
	"strings"
)

// NewImports indexes the imports of a file by the identifier they are referenced with.
func NewImports(specs []*ast.ImportSpec) (v Imports) {
	v = Imports{}
	for _, spec := range specs {
		path, unquoteErr := strconv.Unquote(spec.Path.Value)
		if unquoteErr != nil {
			continue
		}
		alias := ""
		if spec.Name != nil && spec.Name.Name != "" {
			alias = spec.Name.Name
		}
		if alias == "_" || alias == "." {
			continue
		}
		v.Add(&Import{
			Alias: alias,
			Path:  path,
		})
	}
	return
}

type Imports map[string]*Import

func (s Imports) Find(ident string) (v *Import, has bool) {
	v, has = s[ident]
	return
}

func (s Imports) Path(path string) (v *Import, has bool) {
	for _, i := range s {
		if i.Path == path {
			v = i
			has = true
			return
		}
	}
	return
}

func (s Imports) Len() (n int) {
	n = len(s)
	return
}

func (s Imports) Add(i *Import) {
	if _, has := s.Find(i.Ident()); has {
		return
	}
	s[i.Ident()] = i
}

// Referenced returns the imports used as the qualifier of a selector in exprs.
func (s Imports) Referenced(exprs ...ast.Expr) (v Imports) {
	v = Imports{}
	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		ast.Inspect(expr, func(node ast.Node) bool {
			sel, ok := node.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			ident, isIdent := sel.X.(*ast.Ident)
			if !isIdent {
				return true
			}
			if i, has := s.Find(ident.Name); has {
				v.Add(i)
			}
			return true
		})
	}
	return
}

type Import struct {
	Path  string
	Alias string
}

func (i *Import) Ident() (ident string) {
	if i.Alias != "" {
		ident = i.Alias
		return
	}
	ident = i.Name()
	return
}

// Name is the default package name of the path, major version suffixes are skipped.
func (i *Import) Name() (name string) {
	items := strings.Split(i.Path, "/")
	name = items[len(items)-1]
	if len(items) > 1 && isMajorVersion(name) {
		name = items[len(items)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}
	name = strings.ReplaceAll(name, "-", "_")
	return
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
