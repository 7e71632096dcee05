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
	"github.com/urfave/cli/v2"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	VerboseEnv   = "OUTCOMES_VERBOSE"
	RecursiveEnv = "OUTCOMES_RECURSIVE"
)

// GenerateCommand is the `generate` sub command of the outcomes binary.
var GenerateCommand = &cli.Command{
	Name:      "generate",
	Aliases:   []string{"gen"},
	Usage:     "derive failure methods of @failure enums",
	ArgsUsage: "[dir]",
	Flags:     flags(),
	Action:    handle,
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     "verbose",
			EnvVars:  []string{VerboseEnv},
			Aliases:  []string{"v"},
			Usage:    "verbose output",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     "recursive",
			EnvVars:  []string{RecursiveEnv},
			Aliases:  []string{"r"},
			Usage:    "generate sub packages too",
			Required: false,
		},
	}
}

func WithName(name string) Option {
	return func(options *Options) {
		options.name = name
	}
}

type Option func(options *Options)

type Options struct {
	name string
}

// New makes a standalone generator command, for a go:generate directive in a project:
//
//	//go:generate go run ./internal/generator -r .
func New(options ...Option) (cmd Command) {
	opt := Options{}
	for _, option := range options {
		option(&opt)
	}
	name := opt.name
	if name == "" {
		name = callerPKG()
	}
	app := cli.NewApp()
	app.Name = name
	app.Flags = flags()
	app.Usage = fmt.Sprintf("%s {project path}", name)
	app.Action = handle
	cmd = &cliCommand{
		app: app,
	}
	return
}

type Command interface {
	Execute(ctx context.Context, args ...string) (err error)
}

type cliCommand struct {
	app *cli.App
}

func (c *cliCommand) Execute(ctx context.Context, args ...string) (err error) {
	err = c.app.RunContext(ctx, args)
	return
}

func handle(c *cli.Context) (err error) {
	verbose := c.Bool("verbose")
	recursive := c.Bool("recursive")
	dir := strings.TrimSpace(c.Args().First())
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		dir, err = filepath.Abs(dir)
		if err != nil {
			err = errors.Warning("generates: generate failed").WithCause(err).WithMeta("dir", dir)
			return
		}
	}
	dir = filepath.ToSlash(dir)
	generator := NewGenerator(verbose, recursive)
	files, generateErr := generator.Generate(c.Context, dir)
	if generateErr != nil {
		err = generateErr
		return
	}
	if verbose {
		for _, file := range files {
			fmt.Println("generated:", file)
		}
	}
	return
}

func callerPKG() string {
	_, file, _, ok := runtime.Caller(2)
	if ok {
		dir := filepath.Dir(file)
		if dir == "" {
			return "outcomes"
		}
		return filepath.Base(dir)
	}
	return "outcomes"
}
