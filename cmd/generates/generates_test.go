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

package generates_test

import (
	"context"
	"github.com/aacfactory/outcomes/cmd/generates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

const appErrors = `package apps

// AppError enumerates handler failures.
// @failure
// @extra int
type AppError int

const (
	// @message resource not found
	// @status 404
	// @extra 1004
	NotFound AppError = iota
	Internal
)
`

const orderErrors = `package orders

// @failure
type OrderError uint8

const (
	// @status 409
	Duplicated OrderError = iota + 1
)
`

func project(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"go.mod":           "module example.com/apps\n\ngo 1.24\n",
		"errors.go":        appErrors,
		"orders/errors.go": orderErrors,
	}
	for name, content := range files {
		filename := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))
		require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	}
	return
}

func assertParses(t *testing.T, filename string) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.AllErrors)
	require.NoError(t, err, filename)
}

func TestGenerator(t *testing.T) {
	dir := project(t)
	files, err := generates.NewGenerator(true, true).Generate(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.ToSlash(filepath.Join(dir, "app_error_failure.go")),
		filepath.ToSlash(filepath.Join(dir, "orders", "order_error_failure.go")),
	}, files)
	for _, file := range files {
		assertParses(t, file)
	}
	// regenerating skips the generated files
	again, err := generates.NewGenerator(true, true).Generate(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, files, again)
}

func TestGeneratorNotRecursive(t *testing.T) {
	dir := project(t)
	files, err := generates.NewGenerator(true, false).Generate(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	_, statErr := os.Stat(filepath.Join(dir, "orders", "order_error_failure.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGeneratorDiagnostics(t *testing.T) {
	dir := project(t)
	broken := "package apps\n\n// @failure\ntype Broken struct{}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.go"), []byte(broken), 0644))
	_, err := generates.NewGenerator(true, true).Generate(context.Background(), dir)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "app_error_failure.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCommand(t *testing.T) {
	dir := project(t)
	cmd := generates.New(generates.WithName("generator"))
	require.NoError(t, cmd.Execute(context.Background(), "generator", "--verbose", "--recursive", dir))
	assertParses(t, filepath.Join(dir, "orders", "order_error_failure.go"))

	_, err := os.Stat(filepath.Join(dir, "app_error_failure.go"))
	assert.NoError(t, err)
}

func TestGenerateCommand(t *testing.T) {
	dir := project(t)
	app := cli.NewApp()
	app.Name = "outcomes"
	app.Commands = []*cli.Command{generates.GenerateCommand}
	require.NoError(t, app.RunContext(context.Background(), []string{"outcomes", "gen", "-r", dir}))
	assertParses(t, filepath.Join(dir, "app_error_failure.go"))
	assertParses(t, filepath.Join(dir, "orders", "order_error_failure.go"))
}

const roundTripErrors = `package apps

import "net/http"

// AppError enumerates handler failures.
// @failure
// @extra int
// @message everything is fine
type AppError int

const (
	// @message resource not found
	// @status http.StatusNotFound
	// @extra 1004
	NotFound AppError = iota
	// @status teapot(e)
	Teapot
	Internal
)

func teapot(e AppError) int {
	return http.StatusTeapot
}
`

const roundTripTests = `package apps

import "testing"

func TestAppError(t *testing.T) {
	cases := []struct {
		e       AppError
		status  int
		message string
		extra   int
	}{
		{NotFound, 404, "resource not found", 1004},
		{Teapot, 418, "Teapot", 0},
		{Internal, 500, "Internal", 0},
	}
	for _, c := range cases {
		if got := c.e.HTTPStatus(); got != c.status {
			t.Errorf("%s: status %d, want %d", c.e, got, c.status)
		}
		if got := c.e.ResponseMessage(); got != c.message {
			t.Errorf("%s: message %q, want %q", c.e, got, c.message)
		}
		if got := c.e.ExtraMessage(); got != any(c.extra) {
			t.Errorf("%s: extra %v, want %v", c.e, got, c.extra)
		}
		if c.e.Error() != c.e.LogMessage() {
			t.Errorf("%s: error and log message differ", c.e)
		}
	}
	if got := AppError(9).String(); got != "AppError(9)" {
		t.Errorf("unknown variant %q", got)
	}
	var zero AppError
	if message, has := zero.DefaultResponseMessage(); !has || message != "everything is fine" {
		t.Errorf("default message %q %v", message, has)
	}
	if extra, has := zero.DefaultExtraMessage(); !has || extra != any(0) {
		t.Errorf("default extra %v %v", extra, has)
	}
}
`

const roundTripOrders = `package orders

import "testing"

func TestOrderError(t *testing.T) {
	if got := Duplicated.HTTPStatus(); got != 409 {
		t.Errorf("status %d", got)
	}
	if Duplicated.ResponseMessage() != Duplicated.LogMessage() {
		t.Errorf("message %q does not fall back to %q", Duplicated.ResponseMessage(), Duplicated.LogMessage())
	}
	if _, has := Duplicated.DefaultResponseMessage(); has {
		t.Error("default message is not declared")
	}
	if _, has := Duplicated.DefaultExtraMessage(); has {
		t.Error("default extra is not declared")
	}
	if got := Duplicated.ExtraMessage(); got != any("") {
		t.Errorf("extra %v", got)
	}
	if got := OrderError(7).String(); got != "OrderError(7)" {
		t.Errorf("unknown variant %q", got)
	}
}
`

func TestGeneratedMethods(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a generated module")
	}
	gobin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go is not in PATH")
	}
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":                "module example.com/apps\n\ngo 1.21\n",
		"errors.go":             roundTripErrors,
		"errors_test.go":        roundTripTests,
		"orders/errors.go":      orderErrors,
		"orders/errors_test.go": roundTripOrders,
	}
	for name, content := range files {
		filename := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))
		require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	}
	generated, err := generates.NewGenerator(true, true).Generate(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, generated, 2)

	cmd := exec.Command(gobin, "test", "./...")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod", "GOTOOLCHAIN=local")
	out, runErr := cmd.CombinedOutput()
	require.NoError(t, runErr, string(out))
}
