package build

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatPlan renders a plan as plain text, one numbered line per step.
// Paths are shown with forward slashes on every platform.
func FormatPlan(plan Plan) string {
	var b strings.Builder
	b.WriteString("Build plan\n")
	for i, step := range plan.Steps {
		display := step
		display.Args = make([]string, len(step.Args))
		for j, arg := range step.Args {
			display.Args[j] = filepath.ToSlash(arg)
		}
		fmt.Fprintf(&b, "  %d. %-9s %s\n", i+1, step.Name, display.CommandLine())
	}
	fmt.Fprintf(&b, "Artifact: %s\n", filepath.ToSlash(plan.Artifact))
	return b.String()
}
