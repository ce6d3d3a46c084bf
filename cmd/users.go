package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var userLocale string

// usersCmd groups user management commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage Sift users",
}

var usersAddCmd = &cobra.Command{
	Use:   "add [USERNAME]",
	Short: "Create a user",
	Long: `Create a user. When USERNAME is omitted a random UUID is used and printed,
so it can be stored on your side.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUsersAdd,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME",
	Short: "Delete a user and all of its data",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersAddCmd.Flags().StringVar(&userLocale, "locale", "", "locale of the user, e.g. en_US (default from config)")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	username := uuid.NewString()
	if len(args) == 1 {
		username = args[0]
	}
	locale := firstNonEmpty(userLocale, cfg.Defaults.Locale)

	envelope, err := client.AddUser(commandContext(cmd), locale, username)
	if err != nil {
		return fmt.Errorf("failed to add user %s: %w", username, err)
	}

	logger.Info().Str("username", username).Str("locale", locale).Msg("User added")

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ User %s added\n", username)
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	envelope, err := client.DeleteUser(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", args[0], err)
	}

	logger.Info().Str("username", args[0]).Msg("User deleted")

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ User %s deleted\n", args[0])
	return nil
}
