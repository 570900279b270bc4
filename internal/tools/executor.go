// Package tools invokes the external programs that generate intermediate
// artifacts. Each program has an artifact.Generator implementation; all of
// them run through a Runner so tests can substitute the process layer.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// Command is one external program invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory of the process. Empty means the current one.
	Dir string

	// StdoutPath, when set, receives the process stdout. The file only
	// appears at StdoutPath once the process has exited with status 0.
	StdoutPath string
}

// Result is the outcome of a finished process.
type Result struct {
	// Stdout is empty when Command.StdoutPath was set.
	Stdout []byte
	Stderr []byte

	// ExitCode is 0 on success.
	ExitCode int
}

// Runner executes commands. Run blocks until the process exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Executor runs commands as child processes.
//
// The host environment is inherited: the generating tools locate their
// databases and model files through variables such as BLASTDB and
// AUGUSTUS_CONFIG_PATH.
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor { return &Executor{} }

// Run starts cmd and waits for it. A non-zero exit is reported through
// Result.ExitCode, not as an error; errors mean the process could not be
// started, was cancelled, or its output could not be stored.
//
// There is no timeout. Cancelling ctx kills the whole process group.
func (e *Executor) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("command name is empty")
	}

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = os.Environ()
	// Own process group so cancellation reaches the tool's children too.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	c.Stderr = &stderr

	var tmp *os.File
	if cmd.StdoutPath != "" {
		f, err := os.CreateTemp(filepath.Dir(cmd.StdoutPath), filepath.Base(cmd.StdoutPath)+".tmp.*")
		if err != nil {
			return nil, fmt.Errorf("creating stdout file: %w", err)
		}
		tmp = f
		defer func() {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}()
		c.Stdout = tmp
	} else {
		c.Stdout = &stdout
	}

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if c.Process != nil {
			_ = syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return nil, fmt.Errorf("%s cancelled: %w", cmd.Name, ctx.Err())
	case err = <-done:
	}

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to execute %s: %w", cmd.Name, err)
		}
		exitCode = exitErr.ExitCode()
	}

	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitCode}
	if tmp != nil && exitCode == 0 {
		if err := commit(tmp, cmd.StdoutPath); err != nil {
			return nil, fmt.Errorf("storing %s output: %w", cmd.Name, err)
		}
	}
	return res, nil
}

// commit flushes tmp and renames it onto path.
func commit(tmp *os.File, path string) error {
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// tail returns at most the last n bytes of b, for error messages.
func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) <= n {
		return string(b)
	}
	return "..." + string(b[len(b)-n:])
}
