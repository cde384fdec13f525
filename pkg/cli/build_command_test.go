//go:build !integration

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usefultrainer/freeze/pkg/build"
	"github.com/usefultrainer/freeze/pkg/testutil"
)

func newTestBuildConfig(t *testing.T, runner build.Runner, stdin string) (BuildConfig, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	clearFreezeEnv(t)
	dir := testutil.TempDir(t, "build-*")
	var stdout, stderr bytes.Buffer
	return BuildConfig{
		ConfigPath: filepath.Join(dir, "missing.yaml"),
		Stdin:      strings.NewReader(stdin),
		Stdout:     &stdout,
		Stderr:     &stderr,
		Runner:     runner,
	}, &stdout, &stderr
}

func TestRunBuildDefaults(t *testing.T) {
	runner := &fakeRunner{}
	cfg, stdout, _ := newTestBuildConfig(t, runner, "\n")

	err := RunBuild(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"pyarmor", "pyinstaller"}, runner.commands)
	assert.Equal(t, []string{"gen", "--recursive", "--output", "obfuscated", "program.py"}, runner.args[0])
	assert.Equal(t, []string{"--onefile", "--noconsole", "--icon", "icon.ico", filepath.Join("obfuscated", "program.py")}, runner.args[1])

	out := stdout.String()
	assert.Equal(t, 1, strings.Count(out, "Build complete! Executable: dist/program"), "completion message should be printed exactly once")
	completion := strings.Index(out, "Build complete!")
	prompt := strings.Index(out, "Press any key to continue")
	require.GreaterOrEqual(t, prompt, 0, "acknowledgement prompt should be printed")
	assert.Less(t, completion, prompt, "completion message should come before the prompt")
}

func TestRunBuildLegacyIgnoresFailures(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"pyarmor": exitStatus(1), "pyinstaller": exitStatus(2)}}
	cfg, stdout, _ := newTestBuildConfig(t, runner, "\n")

	err := RunBuild(context.Background(), cfg)
	require.NoError(t, err, "legacy mode should never fail the build")
	assert.Equal(t, []string{"pyarmor", "pyinstaller"}, runner.commands)
	assert.Contains(t, stdout.String(), "Build complete! Executable:")
}

func TestRunBuildCheckedModeStops(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"pyarmor": exitStatus(3)}}
	cfg, stdout, stderr := newTestBuildConfig(t, runner, "\n")
	checked := true
	cfg.CheckStatus = &checked

	err := RunBuild(context.Background(), cfg)
	require.Error(t, err)

	var silent *SilentError
	require.ErrorAs(t, err, &silent)
	var stepErr *build.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "obfuscate", stepErr.Step)
	assert.Equal(t, 3, stepErr.ExitCode)

	assert.Equal(t, []string{"pyarmor"}, runner.commands, "packager should not run after a failure")
	assert.NotContains(t, stdout.String(), "Build complete!")
	assert.Contains(t, stdout.String(), "Press any key to continue", "should still pause after a failure")
	assert.Contains(t, stderr.String(), "step obfuscate failed")
	assert.Contains(t, stderr.String(), "freeze doctor")
}

func TestRunBuildNoPause(t *testing.T) {
	runner := &fakeRunner{}
	cfg, stdout, _ := newTestBuildConfig(t, runner, "")
	cfg.NoPause = true

	require.NoError(t, RunBuild(context.Background(), cfg))
	assert.NotContains(t, stdout.String(), "Press any key")
}

func TestRunBuildFlagOverrides(t *testing.T) {
	runner := &fakeRunner{}
	cfg, stdout, _ := newTestBuildConfig(t, runner, "\n")
	cfg.Input = "src/editor.py"
	cfg.OutputDir = "out"
	cfg.Icon = "app.ico"

	require.NoError(t, RunBuild(context.Background(), cfg))
	assert.Equal(t, "src/editor.py", runner.args[0][len(runner.args[0])-1])
	assert.Equal(t, "out", runner.args[0][3])
	assert.Equal(t, []string{"--onefile", "--noconsole", "--icon", "app.ico", filepath.Join("out", "editor.py")}, runner.args[1])
	assert.Contains(t, stdout.String(), "Executable: dist/editor")
}

func TestRunBuildConfigPrecedence(t *testing.T) {
	runner := &fakeRunner{}
	cfg, _, _ := newTestBuildConfig(t, runner, "\n")

	dir := testutil.TempDir(t, "config-*")
	cfg.ConfigPath = filepath.Join(dir, ".freeze.yaml")
	require.NoError(t, os.WriteFile(cfg.ConfigPath, []byte("input: from_file.py\nicon: file.ico\n"), 0o644))
	t.Setenv("FREEZE_ICON", "env.ico")
	cfg.Input = "from_flag.py"

	require.NoError(t, RunBuild(context.Background(), cfg))
	assert.Equal(t, "from_flag.py", runner.args[0][len(runner.args[0])-1], "flags win over the file")
	assert.Equal(t, "env.ico", runner.args[1][3], "environment wins over the file")
}

func TestRunBuildInvalidConfig(t *testing.T) {
	runner := &fakeRunner{}
	cfg, stdout, _ := newTestBuildConfig(t, runner, "\n")

	dir := testutil.TempDir(t, "config-*")
	cfg.ConfigPath = filepath.Join(dir, ".freeze.yaml")
	require.NoError(t, os.WriteFile(cfg.ConfigPath, []byte("unknown_key: 1\n"), 0o644))

	err := RunBuild(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Empty(t, runner.commands, "no tool should run with an invalid config")
	assert.Empty(t, stdout.String())
}

func TestRunBuildVerbosePrintsPlanAndSteps(t *testing.T) {
	runner := &fakeRunner{}
	cfg, _, stderr := newTestBuildConfig(t, runner, "\n")
	cfg.Verbose = true

	require.NoError(t, RunBuild(context.Background(), cfg))
	out := stderr.String()
	assert.Contains(t, out, "Build plan")
	assert.Contains(t, out, "Steps")
	assert.Contains(t, out, "obfuscate")
}

func TestQuietRunner(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantOutput bool
	}{
		{name: "success hides output", err: nil, wantOutput: false},
		{name: "failure replays output", err: exitStatus(1), wantOutput: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &fakeRunner{output: "tool chatter\n", errs: map[string]error{"tool": tt.err}}
			q := &quietRunner{inner: inner}

			var stdout, stderr bytes.Buffer
			err := q.Run(context.Background(), "tool", nil, &stdout, &stderr)

			assert.Equal(t, tt.err, err)
			assert.Empty(t, stdout.String())
			if tt.wantOutput {
				assert.Equal(t, "tool chatter\n", stderr.String())
			} else {
				assert.Empty(t, stderr.String())
			}
		})
	}
}

func TestNewBuildCommandFlags(t *testing.T) {
	cmd := NewBuildCommand()
	for _, name := range []string{"input", "output-dir", "icon", "check-status", "no-pause", "quiet", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.NotNil(t, cmd.RunE)
}

func TestSilentError(t *testing.T) {
	inner := errors.New("boom")
	err := &SilentError{Err: inner}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestRunOnceInterruptedWatchSkipsCompletion(t *testing.T) {
	tests := []struct {
		name           string
		watch          bool
		wantCompletion bool
	}{
		{name: "watch rebuild interrupted", watch: true, wantCompletion: false},
		{name: "plain build keeps legacy behaviour", watch: false, wantCompletion: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{errs: map[string]error{"pyinstaller": context.Canceled}}
			cfg, stdout, _ := newTestBuildConfig(t, runner, "")
			cfg.Watch = tt.watch

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			buildOpts := build.DefaultOptions()
			buildOpts.Runner = runner
			buildOpts.Stdout = cfg.Stdout
			buildOpts.Stderr = cfg.Stderr

			require.NoError(t, runOnce(ctx, cfg, buildOpts))
			assert.Equal(t, tt.wantCompletion, strings.Contains(stdout.String(), "Build complete!"))
		})
	}
}
