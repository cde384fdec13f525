//go:build !integration

package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/usefultrainer/freeze/pkg/constants"
)

type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

type fakeRunner struct {
	mu       sync.Mutex
	commands []string
	args     [][]string
	errs     map[string]error
	output   string
}

func (r *fakeRunner) Run(_ context.Context, command string, args []string, stdout, _ io.Writer) error {
	r.mu.Lock()
	r.commands = append(r.commands, command)
	r.args = append(r.args, append([]string(nil), args...))
	r.mu.Unlock()
	if r.output != "" {
		fmt.Fprint(stdout, r.output)
	}
	return r.errs[command]
}

// clearFreezeEnv keeps the caller's environment from leaking into a test.
func clearFreezeEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		constants.EnvInput, constants.EnvOutputDir, constants.EnvIcon,
		constants.EnvObfuscator, constants.EnvPackager, constants.EnvCheckStatus,
		constants.EnvNoPause, constants.EnvWatchDebounceMillis,
	} {
		t.Setenv(v, "")
	}
}
