// Package gitcmd runs git as a blocking subprocess.
package gitcmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor runs a single git invocation to completion.
type Executor interface {
	Run(args ...string) (Result, error)
}

// Runner executes git commands with shared logging and output handling.
type Runner struct {
	Verbose bool
	Dir     string
	Env     []string
	Logger  io.Writer
}

// Result contains captured stdout/stderr for a git command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

// Run executes git with args, blocking until it exits.
// Stdin is inherited so hooks and credential helpers can still prompt.
func (r Runner) Run(args ...string) (Result, error) {
	r.log(args)

	cmd := exec.Command("git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.Stdin = os.Stdin

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

func (r Runner) log(args []string) {
	if !r.Verbose {
		return
	}
	logger := r.Logger
	if logger == nil {
		logger = os.Stderr
	}
	fmt.Fprintf(logger, "Running: git %s\n", strings.Join(args, " "))
}

// WrapError builds an error message that prefers git stderr output when present.
func WrapError(action string, result Result, err error) error {
	errMsg := result.StderrString(true)
	if errMsg != "" {
		return fmt.Errorf("%s: %s: %w", action, errMsg, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
