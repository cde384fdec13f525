package build

import (
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/usefultrainer/freeze/pkg/constants"
)

// Tool is an external command plus the arguments that precede the per-build
// flags (for example a sub-command).
type Tool struct {
	Command string
	Args    []string
}

// Options configures one build.
type Options struct {
	InputPath string
	OutputDir string
	IconPath  string
	DistDir   string

	Obfuscator Tool
	Packager   Tool

	// CheckStatus halts the build at the first step exiting non-zero. When
	// false, exit statuses are recorded but never acted on.
	CheckStatus bool

	// GOOS selects the executable suffix of the expected artifact. Empty
	// means runtime.GOOS.
	GOOS string

	Stdout io.Writer
	Stderr io.Writer
	Runner Runner
}

// DefaultOptions returns the fixed-path configuration.
func DefaultOptions() Options {
	return Options{
		InputPath:  constants.DefaultInputPath,
		OutputDir:  constants.DefaultOutputDir,
		IconPath:   constants.DefaultIconPath,
		DistDir:    constants.DefaultDistDir,
		Obfuscator: Tool{Command: constants.DefaultObfuscator, Args: append([]string(nil), constants.DefaultObfuscatorArgs...)},
		Packager:   Tool{Command: constants.DefaultPackager},
	}
}

// Step is one planned external invocation.
type Step struct {
	Name    string
	Command string
	Args    []string
}

// CommandLine renders the step as a single space separated line.
func (s Step) CommandLine() string {
	parts := append([]string{s.Command}, s.Args...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"") {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
	}
	return strings.Join(parts, " ")
}

// Plan is the ordered list of steps of a build plus the path where the
// packager is expected to leave the executable.
type Plan struct {
	Steps    []Step
	Artifact string
}

// NewPlan builds the obfuscate and freeze steps for opts.
//
// The freeze step's input is the output directory joined with the input's
// base name. It is derived, not discovered: nothing checks that the obfuscator
// actually wrote a file there.
func NewPlan(opts Options) Plan {
	obfuscate := Step{
		Name:    constants.StepObfuscate,
		Command: opts.Obfuscator.Command,
		Args:    append(append([]string(nil), opts.Obfuscator.Args...), "--recursive", "--output", opts.OutputDir, opts.InputPath),
	}
	freeze := Step{
		Name:    constants.StepFreeze,
		Command: opts.Packager.Command,
		Args:    append(append([]string(nil), opts.Packager.Args...), "--onefile", "--noconsole", "--icon", opts.IconPath, ObfuscatedPath(opts)),
	}
	return Plan{
		Steps:    []Step{obfuscate, freeze},
		Artifact: ArtifactPath(opts),
	}
}

// ObfuscatedPath is where the packager reads the obfuscated copy of the input.
func ObfuscatedPath(opts Options) string {
	return filepath.Join(opts.OutputDir, filepath.Base(opts.InputPath))
}

// ArtifactPath is the expected location of the final executable.
func ArtifactPath(opts Options) string {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	base := filepath.Base(opts.InputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(opts.DistDir, name)
}
