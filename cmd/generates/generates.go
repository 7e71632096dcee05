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

package generates

import (
	"context"
	"fmt"
	"github.com/aacfactory/errors"
	"github.com/aacfactory/outcomes/cmd/generates/sources"
	"github.com/aacfactory/outcomes/cmd/generates/writers"
	"github.com/aacfactory/outcomes/logs"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/sync/errgroup"
	"runtime"
	"sort"
	"sync"
)

func NewGenerator(verbose bool, recursive bool) *Generator {
	return &Generator{
		verbose:   verbose,
		recursive: recursive,
		workers:   runtime.NumCPU(),
	}
}

// Generator writes the failure methods of every @failure enum found under a directory.
type Generator struct {
	verbose   bool
	recursive bool
	workers   int
}

// Generate returns the written files, sorted.
// Diagnostics of all packages are reported together.
func (generator *Generator) Generate(ctx context.Context, dir string) (files []string, err error) {
	mod, modErr := sources.Find(dir)
	if modErr != nil {
		err = errors.Warning("generates: generate failed").WithCause(modErr)
		return
	}
	packages, packagesErr := mod.Packages(dir, generator.recursive)
	if packagesErr != nil {
		err = errors.Warning("generates: generate failed").WithCause(packagesErr)
		return
	}
	if len(packages) == 0 {
		return
	}
	var log logs.Logger
	if generator.verbose {
		log, err = logs.New(logs.Config{
			Level:     logs.Debug,
			Formatter: logs.TextColorfulConsoleFormatter,
			Console:   logs.Stdout,
		})
		if err != nil {
			err = errors.Warning("generates: generate failed").WithCause(err)
			return
		}
		defer log.Shutdown(context.Background())
		log = log.With("module", mod.Path)
		if log.DebugEnabled() {
			log.Debug().With("packages", len(packages)).With("recursive", generator.recursive).Message("generates: scanning")
		}
	}
	run := func() {
		files, err = generator.generate(ctx, packages, log)
	}
	if generator.verbose {
		run()
	} else {
		_ = spinner.New().Type(spinner.Dots).Title("Generating...").Action(run).Run()
	}
	if err != nil {
		return
	}
	if log != nil && log.DebugEnabled() {
		log.Debug().With("files", len(files)).Message("generates: generate finished")
	}
	return
}

func (generator *Generator) generate(ctx context.Context, packages []sources.Package, log logs.Logger) (files []string, err error) {
	locker := sync.Mutex{}
	files = make([]string, 0, 1)
	failed := make([]error, 0, 1)
	group, groupCtx := errgroup.WithContext(ctx)
	if generator.workers > 0 {
		group.SetLimit(generator.workers)
	}
	for _, pkg := range packages {
		pkg := pkg
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			written, generateErr := generatePackage(groupCtx, pkg, log)
			locker.Lock()
			defer locker.Unlock()
			if generateErr != nil {
				failed = append(failed, generateErr)
				return nil
			}
			files = append(files, written...)
			return nil
		})
	}
	if waitErr := group.Wait(); waitErr != nil {
		err = errors.Warning("generates: generate failed").WithCause(waitErr)
		return
	}
	if len(failed) > 0 {
		errs := errors.MakeErrors()
		for _, failure := range failed {
			errs.Append(failure)
		}
		err = errors.Warning("generates: generate failed").WithCause(errs.Error())
		return
	}
	sort.Strings(files)
	return
}

func generatePackage(ctx context.Context, pkg sources.Package, log logs.Logger) (files []string, err error) {
	failures, parseErr := sources.ParseFailures(ctx, pkg)
	if parseErr != nil {
		err = parseErr
		return
	}
	files = make([]string, 0, len(failures))
	for _, failure := range failures {
		file := writers.NewFailureFile(failure)
		if err = file.Write(ctx); err != nil {
			return
		}
		files = append(files, file.Name())
		if log != nil && log.DebugEnabled() {
			log.Debug().
				With("package", pkg.Path).With("failure", failure.Name).With("variants", len(failure.Variants)).
				Message(fmt.Sprintf("generates: %s written", file.Name()))
		}
	}
	return
}
