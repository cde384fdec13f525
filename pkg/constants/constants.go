// Package constants holds the fixed defaults of the freeze build.
package constants

// CLIName is the name of the command-line tool.
const CLIName = "freeze"

// Default paths. With no configuration, flags or environment overrides the
// build uses exactly these values.
const (
	DefaultInputPath  = "program.py"
	DefaultOutputDir  = "obfuscated"
	DefaultIconPath   = "icon.ico"
	DefaultDistDir    = "dist"
	DefaultConfigFile = ".freeze.yaml"
)

// Default external tools.
const (
	DefaultObfuscator = "pyarmor"
	DefaultPackager   = "pyinstaller"
)

// DefaultObfuscatorArgs are the leading arguments passed to the obfuscator
// before the per-build flags.
var DefaultObfuscatorArgs = []string{"gen"}

// Step names as they appear in logs and plans.
const (
	StepObfuscate = "obfuscate"
	StepFreeze    = "freeze"
)

// CompletionMessage is printed once after both steps have run.
const CompletionMessage = "Build complete! Executable: %s"

// AcknowledgePrompt mirrors the prompt of the Windows "pause" builtin.
const AcknowledgePrompt = "Press any key to continue . . . "

// Environment variables read on top of the configuration file.
const (
	EnvInput               = "FREEZE_INPUT"
	EnvOutputDir           = "FREEZE_OUTPUT_DIR"
	EnvIcon                = "FREEZE_ICON"
	EnvObfuscator          = "FREEZE_OBFUSCATOR"
	EnvPackager            = "FREEZE_PACKAGER"
	EnvCheckStatus         = "FREEZE_CHECK_STATUS"
	EnvNoPause             = "FREEZE_NO_PAUSE"
	EnvWatchDebounceMillis = "FREEZE_WATCH_DEBOUNCE_MS"
)

// DefaultWatchDebounceMillis coalesces bursts of editor writes into one rebuild.
const DefaultWatchDebounceMillis = 300
