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
	"github.com/aacfactory/errors"
	"go/ast"
	"go/constant"
	"go/importer"
	"go/token"
	"go/types"
	"golang.org/x/sync/singleflight"
	"strings"
	"sync"
)

var (
	stdPackages      = sync.Map{}
	stdPackagesGroup = singleflight.Group{}
)

// EvalStatus resolves the value of a @status expression when it is a constant.
// Literals must be integers, constants must be in 100..599.
// Expressions depending on the receiver or on packages out of the standard library are not constant.
func EvalStatus(expr ast.Expr, imports Imports) (status int64, isConst bool, err error) {
	if expr == nil {
		err = errors.Warning("sources: status expression is required")
		return
	}
	var value constant.Value
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			err = errors.Warning("sources: status literal is not an integer").WithMeta("literal", e.Value)
			return
		}
		value = constant.MakeFromLiteral(e.Value, e.Kind, 0)
	case *ast.SelectorExpr:
		value = stdConstant(e, imports)
	default:
		tv, evalErr := types.Eval(token.NewFileSet(), nil, token.NoPos, types.ExprString(expr))
		if evalErr == nil && tv.Value != nil {
			value = tv.Value
		}
	}
	if value == nil || value.Kind() == constant.Unknown {
		return
	}
	if value.Kind() != constant.Int {
		err = errors.Warning("sources: status constant is not an integer").WithMeta("value", value.ExactString())
		return
	}
	n, exact := constant.Int64Val(value)
	if !exact || n < 100 || n > 599 {
		err = errors.Warning("sources: status is out of range").WithMeta("value", value.ExactString()).WithMeta("range", "100..599")
		return
	}
	status = n
	isConst = true
	return
}

func stdConstant(sel *ast.SelectorExpr, imports Imports) (value constant.Value) {
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return
	}
	i, has := imports.Find(ident.Name)
	if !has || !isStd(i.Path) {
		return
	}
	pkg, loadErr := loadStd(i.Path)
	if loadErr != nil {
		return
	}
	c, ok := pkg.Scope().Lookup(sel.Sel.Name).(*types.Const)
	if !ok {
		return
	}
	value = c.Val()
	return
}

func isStd(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// loadStd loads a standard package once, concurrent loads of one path are merged.
func loadStd(path string) (pkg *types.Package, err error) {
	if cached, has := stdPackages.Load(path); has {
		pkg = cached.(*types.Package)
		return
	}
	v, loadErr, _ := stdPackagesGroup.Do(path, func() (v interface{}, err error) {
		// export data first, type checking from source is the fallback
		v, err = importer.Default().Import(path)
		if err != nil {
			v, err = importer.ForCompiler(token.NewFileSet(), "source", nil).Import(path)
		}
		if err != nil {
			err = errors.Warning("sources: import package failed").WithCause(err).WithMeta("path", path)
			return
		}
		stdPackages.Store(path, v)
		return
	})
	if loadErr != nil {
		err = loadErr
		return
	}
	pkg = v.(*types.Package)
	return
}
