package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/usefultrainer/freeze/pkg/config"
	"github.com/usefultrainer/freeze/pkg/console"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/logger"
	"github.com/usefultrainer/freeze/pkg/tty"
)

var initLog = logger.New("cli:init")

// InitOptions controls how the configuration file is created.
type InitOptions struct {
	Path  string
	Yes   bool
	Force bool
	// Prompt fills cfg interactively. Defaults to the terminal form.
	Prompt func(cfg *config.Config) error
	Out    io.Writer
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var yes, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + constants.DefaultConfigFile + " configuration file",
		Long: `Ask for the input script, the output directory, the icon and the tools,
then write them to ` + constants.DefaultConfigFile + `.

Use --yes to write the defaults without asking, e.g. in CI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			return RunInit(InitOptions{Path: path, Yes: yes, Force: force, Out: cmd.ErrOrStderr()})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write the default configuration without prompting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	return cmd
}

// RunInit writes a new configuration file.
func RunInit(opts InitOptions) error {
	if opts.Path == "" {
		opts.Path = constants.DefaultConfigFile
	}
	if opts.Out == nil {
		opts.Out = os.Stderr
	}

	if _, err := os.Stat(opts.Path); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", opts.Path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", opts.Path, err)
	}

	cfg := config.Default()
	if !opts.Yes {
		prompt := opts.Prompt
		if prompt == nil {
			if !tty.IsStdinTerminal() {
				return errors.New("interactive init needs a terminal, use --yes to write the defaults")
			}
			prompt = promptConfig
		}
		if err := prompt(cfg); err != nil {
			return fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	if err := config.Save(opts.Path, cfg); err != nil {
		return err
	}
	initLog.Printf("Created %s (interactive=%t)", opts.Path, !opts.Yes)
	fmt.Fprintln(opts.Out, console.FormatSuccessMessage("Created "+console.ToRelativePath(opts.Path)))
	fmt.Fprintln(opts.Out, console.FormatInfoMessage("Run '"+constants.CLIName+" plan' to preview the build"))
	return nil
}

func promptConfig(cfg *config.Config) error {
	checkStatus := cfg.CheckStatus
	pause := cfg.ShouldPause()
	obfuscatorArgs := strings.Join(cfg.Obfuscator.Args, " ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Input script").
				Description("The script to obfuscate and freeze").
				Value(&cfg.Input).
				Validate(notEmpty("input script")),
			huh.NewInput().
				Title("Output directory").
				Description("Where the obfuscator writes its copy").
				Value(&cfg.OutputDir).
				Validate(notEmpty("output directory")),
			huh.NewInput().
				Title("Icon").
				Value(&cfg.Icon).
				Validate(notEmpty("icon")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Obfuscator command").
				Value(&cfg.Obfuscator.Command).
				Validate(notEmpty("obfuscator command")),
			huh.NewInput().
				Title("Obfuscator arguments").
				Description("Placed before --recursive, e.g. 'gen'").
				Value(&obfuscatorArgs),
			huh.NewInput().
				Title("Packager command").
				Value(&cfg.Packager.Command).
				Validate(notEmpty("packager command")),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Stop when a tool fails?").
				Description("By default both tools always run").
				Value(&checkStatus),
			huh.NewConfirm().
				Title("Wait for a keypress after the build?").
				Value(&pause),
		),
	).WithAccessible(console.IsAccessibleMode())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Obfuscator.Args = strings.Fields(obfuscatorArgs)
	cfg.CheckStatus = checkStatus
	cfg.Pause = &pause
	return nil
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}
