//go:build !integration

package build

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/testutil"
)

func testOptions(runner Runner) (Options, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts := DefaultOptions()
	opts.Runner = runner
	opts.Stdout = &stdout
	opts.Stderr = &stderr
	opts.GOOS = "windows"
	return opts, &stdout, &stderr
}

func TestRunInvokesObfuscatorThenPackager(t *testing.T) {
	runner := &recordingRunner{}
	opts, _, _ := testOptions(runner)

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"pyarmor", "pyinstaller"}, runner.commands(), "exactly two invocations, obfuscator first")
	require.Len(t, result.Invocations, 2)
	assert.Equal(t, constants.StepObfuscate, result.Invocations[0].Step)
	assert.Equal(t, constants.StepFreeze, result.Invocations[1].Step)
	assert.False(t, result.Failed())
	assert.Equal(t, filepath.Join("dist", "program.exe"), result.Artifact)
}

func TestRunArguments(t *testing.T) {
	runner := &recordingRunner{}
	opts, _, _ := testOptions(runner)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, runner.calls, 2)

	assert.Equal(t,
		[]string{"gen", "--recursive", "--output", "obfuscated", "program.py"},
		runner.calls[0].Args)
	assert.Equal(t,
		[]string{"--onefile", "--noconsole", "--icon", "icon.ico", filepath.Join("obfuscated", "program.py")},
		runner.calls[1].Args)
}

func TestOutputDirFeedsPackagerInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		outputDir string
	}{
		{name: "defaults", input: "program.py", outputDir: "obfuscated"},
		{name: "nested input", input: filepath.Join("src", "editor.py"), outputDir: "build"},
		{name: "absolute output", input: "main.py", outputDir: filepath.Join(string(filepath.Separator), "tmp", "obf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			opts, _, _ := testOptions(runner)
			opts.InputPath = tt.input
			opts.OutputDir = tt.outputDir

			_, err := Run(context.Background(), opts)
			require.NoError(t, err)
			require.Len(t, runner.calls, 2)

			obfArgs := runner.calls[0].Args
			outputIdx := indexOf(obfArgs, "--output")
			require.GreaterOrEqual(t, outputIdx, 0)
			outputArg := obfArgs[outputIdx+1]

			pkgArgs := runner.calls[1].Args
			packagerInput := pkgArgs[len(pkgArgs)-1]

			assert.Equal(t, outputArg, filepath.Dir(packagerInput), "packager input must live in the obfuscator output dir")
			assert.Equal(t, filepath.Base(tt.input), filepath.Base(packagerInput))
		})
	}
}

func TestRunLegacyContinuesAfterFailure(t *testing.T) {
	tests := []struct {
		name string
		errs map[string]error
	}{
		{name: "obfuscator exits non-zero", errs: map[string]error{"pyarmor": exitStatus(1)}},
		{name: "packager exits non-zero", errs: map[string]error{"pyinstaller": exitStatus(2)}},
		{name: "both fail", errs: map[string]error{"pyarmor": exitStatus(3), "pyinstaller": exitStatus(4)}},
		{name: "obfuscator missing", errs: map[string]error{"pyarmor": &StartError{Command: "pyarmor", Err: errors.New("executable file not found")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{errs: tt.errs}
			opts, _, _ := testOptions(runner)

			result, err := Run(context.Background(), opts)

			require.NoError(t, err, "legacy mode never reports tool failures")
			assert.Equal(t, []string{"pyarmor", "pyinstaller"}, runner.commands(), "packager runs regardless of obfuscator status")
			assert.True(t, result.Failed())
		})
	}
}

func TestRunLegacyRecordsExitCodes(t *testing.T) {
	runner := &recordingRunner{errs: map[string]error{"pyarmor": exitStatus(5)}}
	opts, _, _ := testOptions(runner)

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Invocations[0].ExitCode)
	assert.Equal(t, 0, result.Invocations[1].ExitCode)
	assert.True(t, result.Invocations[1].Succeeded())
}

func TestRunReportsStartFailureLikeShell(t *testing.T) {
	runner := &recordingRunner{errs: map[string]error{
		"pyarmor": &StartError{Command: "pyarmor", Err: errors.New("executable file not found in $PATH")},
	}}
	opts, _, stderr := testOptions(runner)

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, -1, result.Invocations[0].ExitCode)
	assert.Equal(t, "pyarmor: executable file not found in $PATH\n", stderr.String())
}

func TestRunCheckStatusHaltsAtFirstFailure(t *testing.T) {
	runner := &recordingRunner{errs: map[string]error{"pyarmor": exitStatus(2)}}
	opts, _, _ := testOptions(runner)
	opts.CheckStatus = true

	result, err := Run(context.Background(), opts)

	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, constants.StepObfuscate, stepErr.Step)
	assert.Equal(t, 2, stepErr.ExitCode)
	assert.Equal(t, "step obfuscate failed: pyarmor exited with code 2", err.Error())

	assert.Equal(t, []string{"pyarmor"}, runner.commands(), "packager must not run after a checked failure")
	assert.Len(t, result.Invocations, 1)
}

func TestRunCheckStatusPackagerFailure(t *testing.T) {
	runner := &recordingRunner{errs: map[string]error{"pyinstaller": exitStatus(1)}}
	opts, _, _ := testOptions(runner)
	opts.CheckStatus = true

	result, err := Run(context.Background(), opts)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, constants.StepFreeze, stepErr.Step)
	assert.Len(t, result.Invocations, 2)
}

func TestRunCheckStatusSuccess(t *testing.T) {
	runner := &recordingRunner{}
	opts, _, _ := testOptions(runner)
	opts.CheckStatus = true

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.Failed())
}

func TestRunPassesToolOutputThrough(t *testing.T) {
	runner := &recordingRunner{output: "INFO tool output\n"}
	opts, stdout, _ := testOptions(runner)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(stdout.String(), "INFO tool output"), "output is streamed, not parsed")
}

func TestRunWritesNoFiles(t *testing.T) {
	dir := testutil.TempDir(t, "orchestrator-*")
	testutil.Chdir(t, dir)

	runner := &recordingRunner{errs: map[string]error{"pyarmor": exitStatus(1)}}
	opts, _, _ := testOptions(runner)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Empty(t, testutil.ListFiles(t, dir), "the orchestrator itself must not create files")
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		distDir  string
		goos     string
		expected string
	}{
		{name: "windows", input: "program.py", distDir: "dist", goos: "windows", expected: filepath.Join("dist", "program.exe")},
		{name: "linux", input: "program.py", distDir: "dist", goos: "linux", expected: filepath.Join("dist", "program")},
		{name: "nested input", input: filepath.Join("src", "editor.py"), distDir: "out", goos: "windows", expected: filepath.Join("out", "editor.exe")},
		{name: "no extension", input: "tool", distDir: "dist", goos: "darwin", expected: filepath.Join("dist", "tool")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.InputPath = tt.input
			opts.DistDir = tt.distDir
			opts.GOOS = tt.goos
			assert.Equal(t, tt.expected, ArtifactPath(opts))
		})
	}
}

func TestNewPlanDoesNotAliasToolArgs(t *testing.T) {
	opts := DefaultOptions()
	opts.Obfuscator.Args = make([]string, 1, 8)
	opts.Obfuscator.Args[0] = "gen"

	first := NewPlan(opts)
	opts.OutputDir = "other"
	second := NewPlan(opts)

	assert.Contains(t, first.Steps[0].Args, "obfuscated")
	assert.Contains(t, second.Steps[0].Args, "other")
	assert.Equal(t, []string{"gen"}, opts.Obfuscator.Args)
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
