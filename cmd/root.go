package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/siftapi/config"
	"github.com/s0up4200/siftapi/filter"
	"github.com/s0up4200/siftapi/sift"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	client     sift.API
	filters    *filter.Manager
	outputMode string

	version   = "dev"
	buildTime = "unknown"
)

// newClient builds the API client from config; tests replace it
var newClient = func(cfg *config.Config) (sift.API, error) {
	return sift.New(cfg.Sift.APIKey, cfg.Sift.APISecret,
		sift.WithTimeout(cfg.Sift.Timeout),
		sift.WithUserAgent("siftctl/"+version),
	)
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "siftctl",
	Short: "A command-line client for the Sift email-analysis API",
	Long: `siftctl talks to the Sift API: run discovery on .eml files, manage users
and their email connections, and list the sifts extracted from their mail.

Credentials are read from config.yaml or from SIFTCTL_SIFT_API_KEY and
SIFTCTL_SIFT_API_SECRET.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// SetVersion sets the version information
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", v, bt)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logFailure(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputMode, "output", "o", "table", "output format (table or json)")
}

// initializeApp initializes the configuration and the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	if outputMode != "table" && outputMode != "json" {
		return fmt.Errorf("invalid output format: %s (must be 'table' or 'json')", outputMode)
	}

	client, err = newClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create Sift client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("api_key", maskKey(cfg.Sift.APIKey)).
		Dur("timeout", cfg.Sift.Timeout).
		Int("presets", len(cfg.Filter.Presets)).
		Msg("Sift client initialized")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; no colors when stderr is redirected
	noColor := !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd())
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// logFailure logs a command error with the Sift failure code when present
func logFailure(err error) {
	event := logger.Error().Err(err)

	var rf *sift.RequestFailure
	if errors.As(err, &rf) {
		event = event.Int("code", rf.Code).Bool("has_response", rf.HasResponse())
	}
	if errors.Is(err, sift.ErrInvalidConfig) {
		event = event.Str("kind", "configuration")
	}

	event.Msg("Command failed")
}

// commandContext returns the context for one API call
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printEnvelope writes the full response envelope as indented JSON
func printEnvelope(w io.Writer, envelope sift.Envelope) error {
	return printJSON(w, envelope)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// maskKey keeps the first four characters of a key for log output
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}
