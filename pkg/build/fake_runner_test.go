//go:build !integration

package build

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// exitStatus is a Runner error carrying a process exit code.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func (e exitStatus) ExitCode() int {
	return int(e)
}

type call struct {
	Command string
	Args    []string
}

// recordingRunner records every invocation and fails the commands listed in
// errs with the associated error.
type recordingRunner struct {
	mu    sync.Mutex
	calls []call
	errs  map[string]error
	// output is written to stdout for every call
	output string
}

func (r *recordingRunner) Run(_ context.Context, command string, args []string, stdout, _ io.Writer) error {
	r.mu.Lock()
	r.calls = append(r.calls, call{Command: command, Args: append([]string(nil), args...)})
	r.mu.Unlock()
	if r.output != "" {
		fmt.Fprint(stdout, r.output)
	}
	return r.errs[command]
}

func (r *recordingRunner) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		out = append(out, c.Command)
	}
	return out
}
