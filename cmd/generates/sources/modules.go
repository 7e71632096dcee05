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
	"golang.org/x/mod/modfile"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Find walks up from dir until a go.mod is found.
func Find(dir string) (mod *Module, err error) {
	if !filepath.IsAbs(dir) {
		absolute, absoluteErr := filepath.Abs(dir)
		if absoluteErr != nil {
			err = errors.Warning("sources: find module failed").WithCause(absoluteErr).WithMeta("dir", dir)
			return
		}
		dir = absolute
	}
	current := dir
	for {
		filename := filepath.Join(current, "go.mod")
		if info, statErr := os.Stat(filename); statErr == nil && !info.IsDir() {
			mod, err = New(filename)
			return
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	err = errors.Warning("sources: find module failed").
		WithCause(errors.Warning("sources: go.mod was not found")).WithMeta("dir", dir)
	return
}

// New reads the module declared by the go.mod file at filename.
func New(filename string) (mod *Module, err error) {
	if !filepath.IsAbs(filename) {
		absolute, absoluteErr := filepath.Abs(filename)
		if absoluteErr != nil {
			err = errors.Warning("sources: new module failed").WithCause(absoluteErr).WithMeta("file", filename)
			return
		}
		filename = absolute
	}
	data, readErr := os.ReadFile(filename)
	if readErr != nil {
		err = errors.Warning("sources: new module failed").
			WithCause(errors.Warning("sources: read mod file failed").WithCause(readErr)).WithMeta("file", filename)
		return
	}
	mf, parseErr := modfile.ParseLax(filename, data, nil)
	if parseErr != nil {
		err = errors.Warning("sources: new module failed").
			WithCause(errors.Warning("sources: parse mod file failed").WithCause(parseErr)).WithMeta("file", filename)
		return
	}
	if mf.Module == nil || mf.Module.Mod.Path == "" {
		err = errors.Warning("sources: new module failed").
			WithCause(errors.Warning("sources: module directive is missing")).WithMeta("file", filename)
		return
	}
	mod = &Module{
		Dir:       filepath.ToSlash(filepath.Dir(filename)),
		Path:      mf.Module.Mod.Path,
		GoVersion: "",
	}
	if mf.Go != nil {
		mod.GoVersion = mf.Go.Version
	}
	return
}

type Module struct {
	Dir       string
	Path      string
	GoVersion string
}

// Package is a directory of the module holding go files.
type Package struct {
	Dir  string
	Path string
}

// Packages lists the packages under dir, dir must be inside the module.
// Hidden, vendor, testdata and underscore prefixed directories are skipped when recursive.
func (mod *Module) Packages(dir string, recursive bool) (packages []Package, err error) {
	if !filepath.IsAbs(dir) {
		dir, err = filepath.Abs(dir)
		if err != nil {
			err = errors.Warning("sources: list packages failed").WithCause(err).WithMeta("dir", dir)
			return
		}
	}
	dir = filepath.ToSlash(dir)
	if _, relErr := mod.importPath(dir); relErr != nil {
		err = errors.Warning("sources: list packages failed").WithCause(relErr).WithMeta("dir", dir)
		return
	}
	packages = make([]Package, 0, 1)
	if !recursive {
		if ok, _ := hasGoFiles(dir); ok {
			pkgPath, _ := mod.importPath(dir)
			packages = append(packages, Package{Dir: dir, Path: pkgPath})
		}
		return
	}
	walkErr := filepath.WalkDir(dir, func(current string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		current = filepath.ToSlash(current)
		if current != dir {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata" {
				return filepath.SkipDir
			}
			// nested module
			if _, statErr := os.Stat(filepath.Join(current, "go.mod")); statErr == nil {
				return filepath.SkipDir
			}
		}
		ok, readErr := hasGoFiles(current)
		if readErr != nil {
			return readErr
		}
		if ok {
			pkgPath, _ := mod.importPath(current)
			packages = append(packages, Package{Dir: current, Path: pkgPath})
		}
		return nil
	})
	if walkErr != nil {
		err = errors.Warning("sources: list packages failed").WithCause(walkErr).WithMeta("dir", dir)
		return
	}
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Path < packages[j].Path
	})
	return
}

func (mod *Module) importPath(dir string) (v string, err error) {
	rel, relErr := filepath.Rel(mod.Dir, dir)
	if relErr != nil {
		err = relErr
		return
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		err = errors.Warning("sources: dir is not in module").WithMeta("module", mod.Dir)
		return
	}
	if rel == "." {
		v = mod.Path
		return
	}
	v = path.Join(mod.Path, rel)
	return
}

func hasGoFiles(dir string) (ok bool, err error) {
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		err = readErr
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			ok = true
			return
		}
	}
	return
}
