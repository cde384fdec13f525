package build

import "fmt"

// StepError reports a step that exited non-zero while status checking was on.
type StepError struct {
	Step     string
	Command  string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %s failed: %s exited with code %d", e.Step, e.Command, e.ExitCode)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
