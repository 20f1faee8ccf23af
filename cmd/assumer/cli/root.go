// Package cli implements the assumer command-line interface using Cobra.
package cli

import (
	"errors"

	"github.com/majorcontext/assumer/internal/log"
	"github.com/majorcontext/assumer/internal/ui"
	"github.com/spf13/cobra"
)

// logRetentionDays is how long files in --debug-dir are kept.
const logRetentionDays = 14

var (
	verbose  bool
	jsonOut  bool
	debugDir string
)

var rootCmd = &cobra.Command{
	Use:   "assumer",
	Short: "Run a command with temporary AWS credentials served from a local endpoint",
	Long: `assumer runs a command with an AWS role's temporary credentials.

Instead of exporting static keys, assumer starts a loopback HTTP endpoint,
points the child's AWS SDK at it through AWS_CONTAINER_CREDENTIALS_FULL_URI,
and answers each poll with fresh STS AssumeRole credentials.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      debugDir,
			RetentionDays: logRetentionDays,
		}); err != nil {
			// Non-fatal: the default logger stays in place.
			ui.Warnf("failed to initialize debug logging: %v", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// ExitCodeError asks main to exit with Code without printing anything.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string { return "child exited with a non-zero code" }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return exitCode(rootCmd.Execute())
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitCodeError
	if errors.As(err, &exit) {
		return exit.Code
	}
	ui.Errorf("%v", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().StringVar(&debugDir, "debug-dir", "", "also write debug logs as JSONL files to this directory")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
