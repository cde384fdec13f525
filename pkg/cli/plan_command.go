package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/usefultrainer/freeze/pkg/build"
	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var planLog = logger.New("cli:plan")

// NewPlanCommand creates the plan command, a dry run of the build.
func NewPlanCommand() *cobra.Command {
	var input, outputDir, icon string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the commands a build would run without running them",
		Long: `Print the two commands of the build, in order, and the path where the
executable is expected. Nothing is executed and no file is written.

Examples:
  freeze plan
  freeze plan --input src/editor.py`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = constants.DefaultConfigFile
			}
			return RunPlan(cmd.OutOrStdout(), BuildConfig{
				ConfigPath: configPath,
				Input:      input,
				OutputDir:  outputDir,
				Icon:       icon,
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Script to obfuscate and freeze")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the obfuscated copy")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon embedded in the executable")
	return cmd
}

// RunPlan writes the resolved build plan to w.
func RunPlan(w io.Writer, opts BuildConfig) error {
	if w == nil {
		w = os.Stdout
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	plan := build.NewPlan(cfg.BuildOptions())
	planLog.Printf("Resolved plan with %d steps, artifact=%s", len(plan.Steps), plan.Artifact)
	_, err = fmt.Fprint(w, build.FormatPlan(plan))
	return err
}
