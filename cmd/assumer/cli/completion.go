package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var completionShell string

var completionCmd = &cobra.Command{
	Use:   "generate-completion",
	Short: "Generate a shell completion script",
	Long: `Generate a shell completion script for bash, zsh, fish or powershell.

The shell can also be set with ASSUMER_SHELL.

Examples:
  assumer generate-completion --shell bash > /etc/bash_completion.d/assumer
  assumer generate-completion --shell zsh > "${fpath[1]}/_assumer"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := completionShell
		if shell == "" {
			shell = os.Getenv("ASSUMER_SHELL")
		}
		return writeCompletion(cmd.Root(), cmd.OutOrStdout(), shell)
	},
}

func writeCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	case "":
		return fmt.Errorf("--shell is required (bash, zsh, fish or powershell)")
	default:
		return fmt.Errorf("unsupported shell %q (expected bash, zsh, fish or powershell)", shell)
	}
}

func init() {
	completionCmd.Flags().StringVar(&completionShell, "shell", "", "target shell: bash, zsh, fish or powershell (env: ASSUMER_SHELL)")
	rootCmd.AddCommand(completionCmd)
}
