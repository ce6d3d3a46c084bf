package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/siftapi/sift"
)

var (
	connectRedirectURL string
	connectToken       string
)

// connectCmd groups the hosted connect-email flow commands
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Hosted connect-email flow",
}

var connectTokenCmd = &cobra.Command{
	Use:   "token USERNAME",
	Short: "Request a connect token for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectToken,
}

var connectURLCmd = &cobra.Command{
	Use:   "url USERNAME",
	Short: "Print the connect-email URL for a user",
	Long: `Print the URL of the hosted page where a user attaches an email account.
A connect token is requested first unless --token is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnectURL,
}

func init() {
	connectURLCmd.Flags().StringVar(&connectRedirectURL, "redirect-url", "", "where the user is sent after connecting")
	connectURLCmd.Flags().StringVar(&connectToken, "token", "", "existing connect token")

	connectCmd.AddCommand(connectTokenCmd)
	connectCmd.AddCommand(connectURLCmd)
	rootCmd.AddCommand(connectCmd)
}

func runConnectToken(cmd *cobra.Command, args []string) error {
	envelope, err := client.GetConnectToken(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get connect token for %s: %w", args[0], err)
	}

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}

	var ct sift.ConnectToken
	if err := envelope.DecodeResult(&ct); err != nil {
		return fmt.Errorf("unexpected connect token result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ct.ConnectToken)
	return nil
}

func runConnectURL(cmd *cobra.Command, args []string) error {
	u, err := client.GetConnectEmailURL(commandContext(cmd), args[0], connectRedirectURL, connectToken)
	if err != nil {
		return fmt.Errorf("failed to build connect URL for %s: %w", args[0], err)
	}

	logger.Debug().Str("username", args[0]).Bool("fetched_token", connectToken == "").Msg("Connect URL built")

	if outputMode == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]string{"url": u})
	}
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}
