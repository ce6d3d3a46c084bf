package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/siftapi/sift"
)

var (
	connLimit          int
	connOffset         int
	connIncludeInvalid bool

	connType   string
	connFields sift.ConnectionFields
)

// connectionsCmd groups email connection commands
var connectionsCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn"},
	Short:   "Manage a user's email connections",
}

var connectionsListCmd = &cobra.Command{
	Use:   "list USERNAME",
	Short: "List email connections of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionsList,
}

var connectionsAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Attach an email account to a user",
	Long: `Attach an email account to a user. Required flags depend on --type:

  exchange   --email --password [--account] [--host]
  imap       --email --password --host
  google     --email --refresh-token
  live       --email --refresh-token --redirect-uri
  yahoo      --account --refresh-token --redirect-uri`,
	Args: cobra.ExactArgs(1),
	RunE: runConnectionsAdd,
}

var connectionsDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME CONNECTION_ID",
	Short: "Remove an email connection",
	Args:  cobra.ExactArgs(2),
	RunE:  runConnectionsDelete,
}

func init() {
	connectionsListCmd.Flags().IntVar(&connLimit, "limit", 0, "maximum number of connections (default from config)")
	connectionsListCmd.Flags().IntVar(&connOffset, "offset", 0, "number of connections to skip")
	connectionsListCmd.Flags().BoolVar(&connIncludeInvalid, "include-invalid", false, "include connections with invalid credentials")

	flags := connectionsAddCmd.Flags()
	flags.StringVarP(&connType, "type", "t", "", "account type (exchange, imap, google, live, yahoo)")
	flags.StringVar(&connFields.Email, "email", "", "email address")
	flags.StringVar(&connFields.Password, "password", "", "account password")
	flags.StringVar(&connFields.Account, "account", "", "account name")
	flags.StringVar(&connFields.Host, "host", "", "mail server host")
	flags.StringVar(&connFields.RefreshToken, "refresh-token", "", "OAuth refresh token")
	flags.StringVar(&connFields.RedirectURI, "redirect-uri", "", "OAuth redirect URI used to obtain the token")
	_ = connectionsAddCmd.MarkFlagRequired("type")

	connectionsCmd.AddCommand(connectionsListCmd)
	connectionsCmd.AddCommand(connectionsAddCmd)
	connectionsCmd.AddCommand(connectionsDeleteCmd)
	rootCmd.AddCommand(connectionsCmd)
}

func runConnectionsList(cmd *cobra.Command, args []string) error {
	limit := connLimit
	if limit <= 0 {
		limit = cfg.Defaults.Limit
	}

	envelope, err := client.GetEmailConnections(commandContext(cmd), args[0], sift.ListOptions{
		Limit:          limit,
		Offset:         connOffset,
		IncludeInvalid: connIncludeInvalid,
	})
	if err != nil {
		return fmt.Errorf("failed to list connections for %s: %w", args[0], err)
	}

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}

	var conns []sift.EmailConnection
	if err := envelope.DecodeResult(&conns); err != nil {
		return fmt.Errorf("unexpected connections result: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(conns) == 0 {
		fmt.Fprintln(out, "No email connections found.")
		return nil
	}

	fmt.Fprintf(out, "%-10s %-10s %-40s %s\n", "ID", "TYPE", "ACCOUNT", "STATUS")
	for _, c := range conns {
		status := "ok"
		if c.Invalid {
			status = "invalid"
		}
		fmt.Fprintf(out, "%-10d %-10s %-40s %s\n", c.ID, c.AccountType, truncate(c.Account, 40), status)
	}
	return nil
}

func runConnectionsAdd(cmd *cobra.Command, args []string) error {
	conn, err := sift.NewConnection(connType, connFields)
	if err != nil {
		return err
	}

	envelope, err := client.AddEmailConnection(commandContext(cmd), args[0], conn)
	if err != nil {
		return fmt.Errorf("failed to add %s connection: %w", conn.AccountType(), err)
	}

	logger.Info().
		Str("username", args[0]).
		Str("account_type", conn.AccountType()).
		Msg("Email connection added")

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s connection added for %s\n", conn.AccountType(), args[0])
	return nil
}

func runConnectionsDelete(cmd *cobra.Command, args []string) error {
	envelope, err := client.DeleteEmailConnection(commandContext(cmd), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", args[1], err)
	}

	logger.Info().Str("username", args[0]).Str("connection_id", args[1]).Msg("Email connection deleted")

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Connection %s deleted\n", args[1])
	return nil
}
