package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/usefultrainer/freeze/pkg/logger"
)

var orchestratorLog = logger.New("build:orchestrator")

// Invocation records one executed step.
type Invocation struct {
	Step     string
	Command  string
	Args     []string
	ExitCode int
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the step exited zero.
func (i Invocation) Succeeded() bool {
	return i.Err == nil && i.ExitCode == 0
}

// Result is the outcome of a build.
type Result struct {
	Invocations []Invocation
	// Artifact is the expected executable path. It is never checked.
	Artifact string
}

// Failed reports whether any step exited non-zero or could not start.
func (r *Result) Failed() bool {
	for _, inv := range r.Invocations {
		if !inv.Succeeded() {
			return true
		}
	}
	return false
}

// Run executes the plan for opts, one step after the other. Each step starts
// only once the previous process has exited.
//
// With CheckStatus unset the returned error is always nil and every step runs.
// With CheckStatus set, the first failing step stops the build and is returned
// as a *StepError.
func Run(ctx context.Context, opts Options) (*Result, error) {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	runner := opts.Runner
	if runner == nil {
		runner = &ExecRunner{}
	}

	plan := NewPlan(opts)
	result := &Result{Artifact: plan.Artifact}
	orchestratorLog.Printf("Starting build: input=%s, output=%s, steps=%d, checkStatus=%t",
		opts.InputPath, opts.OutputDir, len(plan.Steps), opts.CheckStatus)

	for _, step := range plan.Steps {
		inv := runStep(ctx, runner, step, stdout, stderr)
		result.Invocations = append(result.Invocations, inv)

		if inv.Succeeded() {
			orchestratorLog.Printf("Step %s finished in %s", step.Name, inv.Duration)
			continue
		}

		orchestratorLog.Printf("Step %s failed: exit=%d err=%v", step.Name, inv.ExitCode, inv.Err)
		if opts.CheckStatus {
			return result, &StepError{Step: step.Name, Command: step.Command, ExitCode: inv.ExitCode, Err: inv.Err}
		}
	}

	return result, nil
}

func runStep(ctx context.Context, runner Runner, step Step, stdout, stderr io.Writer) Invocation {
	start := time.Now()
	err := runner.Run(ctx, step.Command, step.Args, stdout, stderr)
	inv := Invocation{
		Step:     step.Name,
		Command:  step.Command,
		Args:     step.Args,
		ExitCode: exitCodeOf(err),
		Err:      err,
		Duration: time.Since(start),
	}

	// A command that never started printed nothing; say so the way a shell would.
	var startErr *StartError
	if errors.As(err, &startErr) {
		fmt.Fprintln(stderr, startErr.Error())
	}
	return inv
}

// RunBuild runs the default tools against the given paths in legacy mode,
// using the process's standard streams. It reports nothing back.
func RunBuild(ctx context.Context, inputPath, outputDir, iconPath string) {
	opts := DefaultOptions()
	opts.InputPath = inputPath
	opts.OutputDir = outputDir
	opts.IconPath = iconPath
	_, _ = Run(ctx, opts)
}
