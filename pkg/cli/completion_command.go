package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/usefultrainer/freeze/pkg/logger"
)

var completionLog = logger.New("cli:completion")

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion scripts for freeze",
		Long: `Generate a shell completion script for freeze.

Completion covers sub-commands, flags, .py files for --input, .ico files for
--icon and directories for --output-dir.

Supported shells: bash, zsh, fish, powershell

Examples:
  freeze completion bash > ~/.bash_completion.d/freeze
  freeze completion zsh > "${fpath[1]}/_freeze"
  freeze completion fish > ~/.config/fish/completions/freeze.fish
  freeze completion powershell | Out-String | Invoke-Expression`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			completionLog.Printf("Generating %s completion script", shell)

			out := cmd.OutOrStdout()
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", shell)
			}
		},
	}
}
