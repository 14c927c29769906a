// Package runner executes the external tools neurax orchestrates (ssh, sshfs,
// fusermount) and reports their outcome as plain values.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// ExitNotFound is the exit code reported when the executable could not be found.
const ExitNotFound = 127

// Result describes a finished subprocess.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Err      error
}

// OK reports whether the process ran and exited with status 0.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Message returns trimmed stderr, falling back to the error text.
func (r Result) Message() string {
	if msg := strings.TrimSpace(string(r.Stderr)); msg != "" {
		return msg
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Runner abstracts subprocess execution.
type Runner interface {
	// Run executes a command with captured output.
	Run(ctx context.Context, name string, args ...string) Result
	// RunInteractive executes a command attached to the caller's terminal.
	RunInteractive(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs commands on the local host via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := resultOf(err)
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	return res
}

func (ExecRunner) RunInteractive(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return resultOf(cmd.Run())
}

func resultOf(err error) Result {
	if err == nil {
		return Result{}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Err: err}
	}

	exitCode := 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = ExitNotFound
	}
	return Result{ExitCode: exitCode, Err: err}
}
