package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cli/safeexec"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/cobra"
	"github.com/usefultrainer/freeze/pkg/config"
	"github.com/usefultrainer/freeze/pkg/console"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var doctorLog = logger.New("cli:doctor")

const doctorProbeTimeout = 30 * time.Second

// versionProber runs command with --version and returns its output.
type versionProber func(ctx context.Context, command string) (string, error)

type toolCheck struct {
	Role       string
	Command    string
	MinVersion string
}

type toolStatus struct {
	toolCheck
	Path    string
	Version string
	Err     error
}

func (s toolStatus) ok() bool {
	return s.Err == nil && meetsMinimum(s.Version, s.MinVersion)
}

func (s toolStatus) state() string {
	switch {
	case s.Err != nil:
		return "missing"
	case s.MinVersion != "" && s.Version == "":
		return "unknown version"
	case !meetsMinimum(s.Version, s.MinVersion):
		return "too old (need " + s.MinVersion + ")"
	default:
		return "ok"
	}
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the obfuscator and the packager are installed",
		Long: `Run both tools with --version, concurrently, and report where they were
found and which version they are. When the configuration sets min_version for a
tool, older versions are reported as failures.

Exits with a non-zero status if a tool is missing or too old.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = constants.DefaultConfigFile
			}
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			cfg.ApplyEnv()
			return RunDoctor(cmd.Context(), cmd.OutOrStdout(), cfg, execVersionProber)
		},
	}
}

// RunDoctor probes the tools named by cfg and prints a report to w.
func RunDoctor(ctx context.Context, w io.Writer, cfg *config.Config, probe versionProber) error {
	if w == nil {
		w = os.Stdout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, doctorProbeTimeout)
	defer cancel()

	checks := []toolCheck{
		{Role: "obfuscator", Command: cfg.Obfuscator.Command, MinVersion: cfg.Obfuscator.MinVersion},
		{Role: "packager", Command: cfg.Packager.Command, MinVersion: cfg.Packager.MinVersion},
	}
	doctorLog.Printf("Probing %d tools", len(checks))

	statuses := iter.Map(checks, func(c *toolCheck) toolStatus {
		return probeTool(ctx, *c, probe)
	})

	rows := make([][]string, 0, len(statuses))
	var failed []string
	for _, s := range statuses {
		version := s.Version
		if version == "" {
			version = "-"
		}
		path := s.Path
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{s.Role, s.Command, version, path, s.state()})
		if !s.ok() {
			failed = append(failed, fmt.Sprintf("%s (%s): %s", s.Role, s.Command, s.state()))
		}
	}

	fmt.Fprint(w, console.RenderTable(console.TableConfig{
		Title:   "Build tools",
		Headers: []string{"Role", "Command", "Version", "Path", "Status"},
		Rows:    rows,
	}))

	if len(failed) > 0 {
		fmt.Fprintln(w, console.FormatErrorWithSuggestions(
			"Some build tools are not usable: "+strings.Join(failed, "; "),
			[]string{
				"Install the tools with 'pip install pyarmor pyinstaller'",
				"Point " + constants.EnvObfuscator + " or " + constants.EnvPackager + " at another executable",
			}))
		return &SilentError{Err: fmt.Errorf("%d build tool(s) not usable", len(failed))}
	}
	fmt.Fprintln(w, console.FormatSuccessMessage("All build tools are available"))
	return nil
}

func probeTool(ctx context.Context, check toolCheck, probe versionProber) toolStatus {
	status := toolStatus{toolCheck: check}
	path, err := safeexec.LookPath(check.Command)
	if err != nil {
		status.Err = err
		doctorLog.Printf("%s not found: %v", check.Command, err)
		return status
	}
	status.Path = path

	output, err := probe(ctx, path)
	if err != nil {
		// Some tools exit non-zero on --version but still print it.
		doctorLog.Printf("%s --version failed: %v", check.Command, err)
	}
	status.Version = parseVersion(output)
	doctorLog.Printf("%s resolved to %s, version %q", check.Command, path, status.Version)
	return status
}

func execVersionProber(ctx context.Context, command string) (string, error) {
	out, err := exec.CommandContext(ctx, command, "--version").CombinedOutput()
	return string(out), err
}
