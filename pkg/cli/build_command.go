package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/usefultrainer/freeze/pkg/build"
	"github.com/usefultrainer/freeze/pkg/config"
	"github.com/usefultrainer/freeze/pkg/console"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var buildLog = logger.New("cli:build")

// BuildConfig holds the options of a build invocation. Zero values leave the
// configuration file (or the defaults) in charge.
type BuildConfig struct {
	ConfigPath string
	Input      string
	OutputDir  string
	Icon       string
	// CheckStatus overrides the configuration when non-nil.
	CheckStatus *bool
	NoPause     bool
	Quiet       bool
	Watch       bool
	Verbose     bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Runner replaces the process runner, mainly for tests.
	Runner build.Runner
}

// NewBuildCommand creates the build command. Running freeze without a
// sub-command does the same thing.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Obfuscate the input script and freeze it into a standalone executable",
		Long: `Run the obfuscator on the input script, then run the packager on the
obfuscated copy, then print where the executable is expected and wait for a
keypress.

By default exit statuses of the two tools are not checked: the packager runs
even if the obfuscator failed and the completion message is always printed.
Use --check-status to stop at the first failing step instead.

Examples:
  freeze build                          # Same as running 'freeze'
  freeze build --input src/editor.py    # Build another script
  freeze build --check-status           # Stop when a tool fails
  freeze build --no-pause               # Do not wait for a keypress (CI)
  freeze build --watch                  # Rebuild whenever the input changes`,
		Args: cobra.NoArgs,
	}
	ConfigureBuildCommand(cmd)
	return cmd
}

// ConfigureBuildCommand registers the build flags on cmd and makes it run a
// build. It is shared by the root command and the build sub-command.
func ConfigureBuildCommand(cmd *cobra.Command) {
	var opts BuildConfig
	var checkStatus bool

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Script to obfuscate and freeze (default \""+constants.DefaultInputPath+"\")")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for the obfuscated copy (default \""+constants.DefaultOutputDir+"\")")
	cmd.Flags().StringVar(&opts.Icon, "icon", "", "Icon embedded in the executable (default \""+constants.DefaultIconPath+"\")")
	cmd.Flags().BoolVar(&checkStatus, "check-status", false, "Stop at the first tool exiting with a non-zero status")
	cmd.Flags().BoolVar(&opts.NoPause, "no-pause", false, "Do not wait for a keypress after the build")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide tool output unless a tool fails")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Rebuild whenever the input file changes")

	_ = cmd.RegisterFlagCompletionFunc("input", cobra.FixedCompletions([]string{"py"}, cobra.ShellCompDirectiveFilterFileExt))
	_ = cmd.RegisterFlagCompletionFunc("icon", cobra.FixedCompletions([]string{"ico"}, cobra.ShellCompDirectiveFilterFileExt))
	_ = cmd.MarkFlagDirname("output-dir")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("check-status") {
			opts.CheckStatus = &checkStatus
		}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.Verbose, _ = cmd.Flags().GetBool("verbose")
		return RunBuild(cmd.Context(), opts)
	}
}

// RunBuild loads the configuration, runs the build and waits for the
// acknowledgement.
func RunBuild(ctx context.Context, opts BuildConfig) error {
	opts.setDefaults()
	buildLog.Printf("Running build: config=%s, watch=%t, quiet=%t", opts.ConfigPath, opts.Watch, opts.Quiet)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	buildOpts := cfg.BuildOptions()
	buildOpts.Stdout = opts.Stdout
	buildOpts.Stderr = opts.Stderr
	buildOpts.Runner = opts.Runner
	if buildOpts.Runner == nil {
		buildOpts.Runner = &build.ExecRunner{}
	}
	if opts.Quiet {
		buildOpts.Runner = &quietRunner{inner: buildOpts.Runner}
	}

	if opts.Verbose {
		fmt.Fprintln(opts.Stderr, console.FormatInfoMessage("Using configuration "+describeConfigSource(opts.ConfigPath)))
		fmt.Fprint(opts.Stderr, build.FormatPlan(build.NewPlan(buildOpts)))
	}

	if opts.Watch {
		return watchAndRebuild(ctx, cfg.Input, opts, buildOpts)
	}

	buildErr := runOnce(ctx, opts, buildOpts)

	if cfg.ShouldPause() {
		if err := console.WaitForKeypress(opts.Stdin, opts.Stdout); err != nil {
			buildLog.Printf("Acknowledgement failed: %v", err)
		}
	}
	return buildErr
}

func (o *BuildConfig) setDefaults() {
	if o.ConfigPath == "" {
		o.ConfigPath = constants.DefaultConfigFile
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// resolveConfig applies file, environment and flags, in that order.
func resolveConfig(opts BuildConfig) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if opts.Input != "" {
		cfg.Input = opts.Input
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.Icon != "" {
		cfg.Icon = opts.Icon
	}
	if opts.CheckStatus != nil {
		cfg.CheckStatus = *opts.CheckStatus
	}
	if opts.NoPause || opts.Watch {
		pause := false
		cfg.Pause = &pause
	}
	return cfg, nil
}

// runOnce runs one build and prints the completion report. In legacy mode the
// completion message is printed whatever the tools did.
func runOnce(ctx context.Context, opts BuildConfig, buildOpts build.Options) error {
	result, err := build.Run(ctx, buildOpts)
	if opts.Verbose {
		printInvocations(opts.Stderr, result)
	}

	if err != nil {
		fmt.Fprintln(opts.Stderr, console.FormatErrorWithSuggestions(err.Error(), []string{
			"Run '" + constants.CLIName + " doctor' to check that both tools are installed",
			"Run '" + constants.CLIName + " plan' to see the exact commands",
		}))
		return &SilentError{Err: err}
	}

	// Ctrl+C during a watch rebuild: the remaining steps could not start.
	if opts.Watch && ctx.Err() != nil {
		buildLog.Printf("Build interrupted: %v", ctx.Err())
		return nil
	}

	fmt.Fprintln(opts.Stdout, console.FormatSuccessMessageFor(opts.Stdout, fmt.Sprintf(constants.CompletionMessage, filepath.ToSlash(result.Artifact))))
	return nil
}

func printInvocations(w io.Writer, result *build.Result) {
	if result == nil || len(result.Invocations) == 0 {
		return
	}
	rows := make([][]string, 0, len(result.Invocations))
	for _, inv := range result.Invocations {
		rows = append(rows, []string{inv.Step, inv.Command, strconv.Itoa(inv.ExitCode), inv.Duration.Round(time.Millisecond).String()})
	}
	fmt.Fprint(w, console.RenderTable(console.TableConfig{
		Title:   "Steps",
		Headers: []string{"Step", "Command", "Exit Code", "Duration"},
		Rows:    rows,
	}))
}

func describeConfigSource(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "defaults (no " + path + ")"
	}
	return path
}

// quietRunner hides tool output behind a spinner and replays it only when the
// tool fails.
type quietRunner struct {
	inner build.Runner
}

func (q *quietRunner) Run(ctx context.Context, command string, args []string, stdout, stderr io.Writer) error {
	var captured bytes.Buffer
	spinner := console.NewSpinner(fmt.Sprintf("Running %s...", command))
	spinner.Start()
	err := q.inner.Run(ctx, command, args, &captured, &captured)
	spinner.Stop()

	if err != nil {
		buildLog.Printf("%s failed, replaying %d bytes of output", command, captured.Len())
		_, _ = stderr.Write(captured.Bytes())
	}
	return err
}

// SilentError wraps an error that has already been reported to the user.
type SilentError struct {
	Err error
}

func (e *SilentError) Error() string {
	return e.Err.Error()
}

func (e *SilentError) Unwrap() error {
	return e.Err
}
