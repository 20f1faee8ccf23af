package cli

import (
	"encoding/json"
	"os"

	"github.com/majorcontext/assumer/internal/credclient"
	"github.com/spf13/cobra"
)

var credentialProcessCmd = &cobra.Command{
	Use:   "credential-process",
	Short: "Print endpoint credentials in credential_process format",
	Long: `Fetch credentials from the endpoint named by AWS_CONTAINER_CREDENTIALS_FULL_URI
and print them in the credential_process JSON format. Use this from inside a
child started by "assumer run" for tools that only support credential_process:

  [profile assumer]
  credential_process = assumer credential-process`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, token, err := credclient.FromEnv(os.Getenv)
		if err != nil {
			return err
		}
		creds, err := credclient.Fetch(cmd.Context(), nil, uri, token)
		if err != nil {
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(credclient.ToProcess(creds))
	},
}

func init() {
	rootCmd.AddCommand(credentialProcessCmd)
}
