package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/cli/safeexec"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var runnerLog = logger.New("build:runner")

// Runner starts an external command, waits for it and reports how it ended.
// A non-zero exit is reported as an error implementing ExitCode() int, such
// as *exec.ExitError.
type Runner interface {
	Run(ctx context.Context, command string, args []string, stdout, stderr io.Writer) error
}

// ExecRunner runs commands as child processes of the current process.
type ExecRunner struct {
	// Dir is the working directory of the child. Empty means the current one.
	Dir string
	// Env is appended to the current environment.
	Env []string
	// Stdin is connected to the child. Nil means no input.
	Stdin io.Reader
}

// Run resolves command on PATH and runs it to completion. The child's handles
// are released by the time Run returns, on every path.
func (r *ExecRunner) Run(ctx context.Context, command string, args []string, stdout, stderr io.Writer) error {
	path, err := safeexec.LookPath(command)
	if err != nil {
		runnerLog.Printf("Failed to resolve %s: %v", command, err)
		return &StartError{Command: command, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.Stdin = r.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runnerLog.Printf("Running %s %v", path, args)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		return &StartError{Command: command, Err: err}
	}
	return nil
}

// StartError reports a command that could not be started at all.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ExitCode is -1: the command never produced an exit status.
func (e *StartError) ExitCode() int {
	return -1
}

// exitCodeOf maps a Runner error to a process exit code.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}
