package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/usefultrainer/freeze/pkg/cli"
	"github.com/usefultrainer/freeze/pkg/console"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/logger"
)

// Build-time variables.
var (
	version = "dev"
)

var mainLog = logger.New("main")

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Obfuscate a script and freeze it into a standalone executable",
	Long: `freeze runs an obfuscator on a script and then a packager on the
obfuscated copy, producing a single windowed executable.

Running freeze without a command performs the build with the defaults:

  pyarmor gen --recursive --output obfuscated program.py
  pyinstaller --onefile --noconsole --icon icon.ico obfuscated/program.py

Defaults can be changed in ` + constants.DefaultConfigFile + ` (see 'freeze init'), through
FREEZE_* environment variables or with flags.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the freeze version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.CLIName, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", constants.DefaultConfigFile, "Path to the build configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print the plan and a step summary")

	cli.ConfigureBuildCommand(rootCmd)
	rootCmd.SetVersionTemplate(constants.CLIName + " version {{.Version}}\n")

	rootCmd.AddCommand(cli.NewBuildCommand())
	rootCmd.AddCommand(cli.NewPlanCommand())
	rootCmd.AddCommand(cli.NewDoctorCommand())
	rootCmd.AddCommand(cli.NewInitCommand())
	rootCmd.AddCommand(cli.NewCompletionCommand())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	mainLog.Printf("Starting %s %s", constants.CLIName, version)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var silent *cli.SilentError
		if !errors.As(err, &silent) {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}
