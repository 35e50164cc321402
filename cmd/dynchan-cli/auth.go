package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the dynchan HTTP API",
		Long: `Authenticate with the dynchan HTTP API using your client ID.
This will generate a JWT token that can be used for subsequent requests.`,
		Args: cobra.NoArgs,
		RunE: runAuth,
	}

	return cmd
}

func runAuth(cmd *cobra.Command, args []string) error {
	if clientID == "" {
		return fmt.Errorf("--client-id is required")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Authenticating with server %s as client %s...\n", serverURL, clientID)

	if err := httpClient.Authenticate(ctx); err != nil {
		return err
	}

	token := httpClient.GetToken()
	fmt.Fprintf(out, "Authentication successful!\n")
	fmt.Fprintf(out, "Token: %s\n", token)
	fmt.Fprintf(out, "\nSave this token for future use:\n")
	fmt.Fprintf(out, "  export DYNCHAN_TOKEN=\"%s\"\n", token)
	fmt.Fprintf(out, "  dynchan-cli --token \"$DYNCHAN_TOKEN\" services list\n")

	return nil
}
