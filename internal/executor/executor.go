// Package executor runs planned pipelines in a shell.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/harshul/builder/internal/vars"
	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Shell selects how a pipeline string is interpreted.
type Shell string

const (
	// ShellSystem runs the pipeline with sh -c (cmd /C on Windows).
	ShellSystem Shell = "system"
	// ShellBuiltin runs the pipeline with the in-process POSIX interpreter.
	ShellBuiltin Shell = "builtin"
)

// DefaultShell returns the shell used when none is configured. cmd.exe
// cannot print the echo -e banners, so Windows uses the builtin shell.
func DefaultShell(goos string) Shell {
	if goos == "windows" {
		return ShellBuiltin
	}
	return ShellSystem
}

// ErrUnknownShell is returned by ParseShell.
var ErrUnknownShell = eris.New("unknown shell")

// ParseShell validates a shell name.
func ParseShell(name string) (Shell, error) {
	switch s := Shell(strings.ToLower(name)); s {
	case ShellSystem, ShellBuiltin:
		return s, nil
	}
	return "", eris.Wrapf(ErrUnknownShell, "%q (want %s or %s)", name, ShellSystem, ShellBuiltin)
}

// ExecutionError reports a pipeline that exited with a non-zero status or
// could not be started.
type ExecutionError struct {
	Command  string
	ExitCode int
	Err      error
}

var _ error = (*ExecutionError)(nil)

func (e *ExecutionError) Error() string {
	return `Execution of "` + e.Command + `" failed.`
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Executor runs pipelines. The zero value is not usable; use New.
type Executor struct {
	Shell  Shell
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// BaseEnv is the environment every pipeline starts from.
	BaseEnv []string
}

// New returns an Executor wired to the process's standard streams and
// environment.
func New(shell Shell) *Executor {
	return &Executor{
		Shell:   shell,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		BaseEnv: os.Environ(),
	}
}

// Execute prints pipeline, then runs it in dir with the base environment
// overlaid by env. It blocks until the shell exits and returns an
// *ExecutionError on a non-zero exit status.
func (e *Executor) Execute(ctx context.Context, pipeline, dir string, env vars.Map) error {
	fmt.Fprintln(e.Stdout, pipeline)

	environ, err := Overlay(e.BaseEnv, env)
	if err != nil {
		return err
	}

	switch e.Shell {
	case ShellBuiltin:
		return e.runBuiltin(ctx, pipeline, dir, environ)
	default:
		return e.runSystem(ctx, pipeline, dir, environ)
	}
}

func (e *Executor) runSystem(ctx context.Context, pipeline, dir string, environ []string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", pipeline)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", pipeline)
	}
	cmd.Dir = dir
	cmd.Env = environ
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ExecutionError{Command: pipeline, ExitCode: code, Err: err}
	}
	return nil
}

func (e *Executor) runBuiltin(ctx context.Context, pipeline, dir string, environ []string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(pipeline), "")
	if err != nil {
		return &ExecutionError{Command: pipeline, ExitCode: 2, Err: err}
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(e.Stdin, e.Stdout, e.Stderr),
	)
	if err != nil {
		return &ExecutionError{Command: pipeline, ExitCode: -1, Err: err}
	}

	if err := runner.Run(ctx, file); err != nil {
		code := -1
		var status interp.ExitStatus
		if errors.As(err, &status) {
			code = int(status)
		}
		return &ExecutionError{Command: pipeline, ExitCode: code, Err: err}
	}
	return nil
}

// Overlay returns base with every entry of env added, replacing entries of
// the same name. base is not modified.
func Overlay(base []string, env vars.Map) ([]string, error) {
	merged := make(map[string]string, len(base)+env.Len())
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		merged[k] = v
	}

	overlay := make(map[string]string, env.Len())
	for k, v := range env.All() {
		overlay[k] = v
	}
	if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
		return nil, eris.Wrap(err, "error merging environment")
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out, nil
}
