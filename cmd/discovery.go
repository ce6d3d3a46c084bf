package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/siftapi/sift"
)

var (
	feedbackLocale   string
	feedbackTimezone string
)

// discoveryCmd represents the discovery command
var discoveryCmd = &cobra.Command{
	Use:   "discovery FILE",
	Short: "Extract sifts from an .eml file",
	Long: `Send the contents of an .eml file to the discovery endpoint and print the
sifts found in it. Use "-" to read the email from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscovery,
}

// feedbackCmd represents the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback FILE",
	Short: "Report an email that was not parsed correctly",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackLocale, "locale", "", "locale of the email (default from config)")
	feedbackCmd.Flags().StringVar(&feedbackTimezone, "timezone", "", "timezone of the email, e.g. America/Los_Angeles (default from config)")

	rootCmd.AddCommand(discoveryCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	eml, err := readEml(cmd, args[0])
	if err != nil {
		return err
	}

	logger.Debug().Str("source", args[0]).Int("bytes", len(eml)).Msg("Running discovery")

	envelope, err := client.Discovery(commandContext(cmd), eml)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}

	var sifts []sift.Sift
	if err := envelope.DecodeResult(&sifts); err != nil {
		return fmt.Errorf("unexpected discovery result: %w", err)
	}
	printSifts(cmd.OutOrStdout(), sifts)
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	eml, err := readEml(cmd, args[0])
	if err != nil {
		return err
	}

	locale := firstNonEmpty(feedbackLocale, cfg.Defaults.Locale)
	timezone := firstNonEmpty(feedbackTimezone, cfg.Defaults.Timezone)

	envelope, err := client.SendFeedback(commandContext(cmd), eml, locale, timezone)
	if err != nil {
		return fmt.Errorf("failed to send feedback: %w", err)
	}

	logger.Info().Str("locale", locale).Str("timezone", timezone).Msg("Feedback sent")

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Feedback sent: %s\n", envelope.Message())
	return nil
}

// readEml reads an email from path, or from stdin when path is "-"
func readEml(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("email %s is empty", path)
	}
	return string(data), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
