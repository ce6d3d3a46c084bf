package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/siftapi/filter"
	"github.com/s0up4200/siftapi/sift"
)

var (
	siftsLimit      int
	siftsOffset     int
	siftsSince      string
	siftsDomains    []string
	siftsFilter     string
	siftsPreset     string
	siftsIncludeEml bool
)

// siftsCmd groups sift retrieval commands
var siftsCmd = &cobra.Command{
	Use:   "sifts",
	Short: "Retrieve sifts extracted from a user's mail",
}

var siftsListCmd = &cobra.Command{
	Use:   "list USERNAME",
	Short: "List sifts for a user",
	Long: `List sifts for a user. Results can be narrowed locally with an expression
or a preset from the config file.

Filter examples:
  --filter 'Domain == "flight"'
  --filter 'Type == "FlightReservation" and daysSince(EmailTime) < 30'
  --filter 'isDomain("shipment", "purchase")'`,
	Args: cobra.ExactArgs(1),
	RunE: runSiftsList,
}

var siftsGetCmd = &cobra.Command{
	Use:   "get USERNAME SIFT_ID",
	Short: "Show a single sift",
	Args:  cobra.ExactArgs(2),
	RunE:  runSiftsGet,
}

var siftsSummaryCmd = &cobra.Command{
	Use:   "summary USERNAME",
	Short: "Count a user's sifts per configured filter preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runSiftsSummary,
}

func init() {
	siftsListCmd.Flags().IntVar(&siftsLimit, "limit", 0, "maximum number of sifts (default from config)")
	siftsListCmd.Flags().IntVar(&siftsOffset, "offset", 0, "number of sifts to skip")
	siftsListCmd.Flags().StringVar(&siftsSince, "since", "", "only sifts updated after this time (RFC3339, YYYY-MM-DD or a duration like 72h)")
	siftsListCmd.Flags().StringSliceVar(&siftsDomains, "domains", nil, "only these domains, e.g. flight,hotel")
	siftsListCmd.Flags().StringVarP(&siftsFilter, "filter", "f", "", "filter expression applied to the returned sifts")
	siftsListCmd.Flags().StringVarP(&siftsPreset, "preset", "p", "", "named filter from the config file")
	siftsListCmd.MarkFlagsMutuallyExclusive("filter", "preset")

	siftsGetCmd.Flags().BoolVar(&siftsIncludeEml, "include-eml", false, "include the raw email")

	siftsCmd.AddCommand(siftsListCmd)
	siftsCmd.AddCommand(siftsGetCmd)
	siftsCmd.AddCommand(siftsSummaryCmd)
	rootCmd.AddCommand(siftsCmd)
}

func runSiftsList(cmd *cobra.Command, args []string) error {
	f, err := selectFilter()
	if err != nil {
		return err
	}

	since, err := parseSince(siftsSince, time.Now())
	if err != nil {
		return err
	}

	limit := siftsLimit
	if limit <= 0 {
		limit = cfg.Defaults.Limit
	}

	opts := sift.SiftsOptions{
		Limit:          limit,
		Offset:         siftsOffset,
		LastUpdateTime: since,
		Domains:        siftsDomains,
	}

	envelope, err := client.GetSifts(commandContext(cmd), args[0], opts)
	if err != nil {
		return fmt.Errorf("failed to get sifts for %s: %w", args[0], err)
	}

	if f == nil && outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}

	var sifts []sift.Sift
	if err := envelope.DecodeResult(&sifts); err != nil {
		return fmt.Errorf("unexpected sifts result: %w", err)
	}

	total := len(sifts)
	sifts, err = filter.NewEvaluator().Evaluate(commandContext(cmd), f, sifts)
	if err != nil {
		return err
	}

	logger.Info().
		Str("username", args[0]).
		Int("returned", total).
		Int("matched", len(sifts)).
		Msg("Sifts retrieved")

	if outputMode == "json" {
		return printJSON(cmd.OutOrStdout(), sifts)
	}
	printSifts(cmd.OutOrStdout(), sifts)
	return nil
}

func runSiftsGet(cmd *cobra.Command, args []string) error {
	envelope, err := client.GetSift(commandContext(cmd), args[0], args[1], siftsIncludeEml)
	if err != nil {
		return fmt.Errorf("failed to get sift %s: %w", args[1], err)
	}

	if outputMode == "json" {
		return printEnvelope(cmd.OutOrStdout(), envelope)
	}

	var s sift.Sift
	if err := envelope.DecodeResult(&s); err != nil {
		return fmt.Errorf("unexpected sift result: %w", err)
	}

	out := cmd.OutOrStdout()
	printSifts(out, []sift.Sift{s})
	if s.Payload != nil {
		fmt.Fprintln(out)
		if err := printJSON(out, s.Payload); err != nil {
			return err
		}
	}
	if s.Eml != "" {
		fmt.Fprintf(out, "\n%s\n", s.Eml)
	}
	return nil
}

func runSiftsSummary(cmd *cobra.Command, args []string) error {
	presets := filters.Filters()
	if len(presets) == 0 {
		return fmt.Errorf("no filter presets configured")
	}

	envelope, err := client.GetSifts(commandContext(cmd), args[0], sift.SiftsOptions{Limit: cfg.Defaults.Limit})
	if err != nil {
		return fmt.Errorf("failed to get sifts for %s: %w", args[0], err)
	}

	var sifts []sift.Sift
	if err := envelope.DecodeResult(&sifts); err != nil {
		return fmt.Errorf("unexpected sifts result: %w", err)
	}

	results, err := filter.NewEvaluator().EvaluateAll(commandContext(cmd), presets, sifts)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(results))
	for name, matches := range results {
		counts[name] = len(matches)
	}

	if outputMode == "json" {
		return printJSON(cmd.OutOrStdout(), counts)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %-8s %s\n", "PRESET", "MATCHES", "EXPRESSION")
	for _, name := range filters.ListFilters() {
		fmt.Fprintf(out, "%-20s %-8d %s\n", name, counts[name], presets[name].Expression())
	}
	fmt.Fprintf(out, "\n%d sift(s) checked\n", len(sifts))
	return nil
}

// selectFilter returns the filter chosen by --filter or --preset, or nil
func selectFilter() (filter.Filter, error) {
	switch {
	case siftsFilter != "":
		f, err := filters.Compile(siftsFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		return f, nil
	case siftsPreset != "":
		f, err := filters.GetFilter(siftsPreset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(filters.ListFilters(), ", "))
		}
		return f, nil
	}
	return nil, nil
}

// parseSince converts a --since value to a unix timestamp. Durations are
// subtracted from now.
func parseSince(value string, now time.Time) (int64, error) {
	if value == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d).Unix(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("invalid --since value %q", value)
}

func printSifts(w io.Writer, sifts []sift.Sift) {
	if len(sifts) == 0 {
		fmt.Fprintln(w, "No sifts found.")
		return
	}

	fmt.Fprintf(w, "%-12s %-12s %-28s %-20s\n", "SIFT ID", "DOMAIN", "TYPE", "EMAIL TIME")
	for _, s := range sifts {
		emailTime := "-"
		if t := s.Time(); !t.IsZero() {
			emailTime = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-12d %-12s %-28s %-20s\n", s.SiftID, s.Domain, truncate(s.Type(), 28), emailTime)
	}
	fmt.Fprintf(w, "\n%d sift(s)\n", len(sifts))
}

// truncate shortens s to n characters, ending in "..." when cut
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
