package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/w93163red/LivCap-Translate/pkg/cli"
	"github.com/w93163red/LivCap-Translate/pkg/config"
	"github.com/w93163red/LivCap-Translate/pkg/usage"
	usagestorage "github.com/w93163red/LivCap-Translate/pkg/usage/storage"
)

var usageFlags struct {
	database string
	since    string
	until    string
	model    string
	status   string
	limit    int
	offset   int
	format   string
	output   string
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Query recorded usage",
	Long: `Query and summarize recorded chat completion usage.

The usage command reads the usage database written by a running gateway.
Records carry request metadata only (model, status, latency, chunk count);
no conversation content is ever stored.

Subcommands:
  query   - List usage records with filters
  report  - Summarize usage by model and status

Examples:
  # List the last 24 hours
  livcap-translate usage query --since 24h

  # Failures for one model
  livcap-translate usage query --model gemini-3.0-pro --status error

  # Export to JSON
  livcap-translate usage query --format json --output usage.json`,
}

var usageQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List usage records",
	Long: `List usage records with various filters.

Time Flags:
  --since and --until accept either a duration relative to now ("24h",
  "30m") or an absolute RFC3339 timestamp ("2026-08-23T00:00:00Z").

Examples:
  # Records from the last hour
  livcap-translate usage query --since 1h

  # A fixed window
  livcap-translate usage query --since 2026-08-22T00:00:00Z --until 2026-08-23T00:00:00Z

  # Failed streaming requests
  livcap-translate usage query --status error

  # Export to JSON
  livcap-translate usage query --format json --output usage.json`,
	RunE: queryUsage,
}

var usageReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize usage by model and status",
	Long:  `Generate a usage report with per-model and per-status breakdowns.`,
	RunE:  reportUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageQueryCmd, usageReportCmd)

	usageCmd.PersistentFlags().StringVar(&usageFlags.database, "database", "", "usage database path (uses config if not specified)")
	usageCmd.PersistentFlags().StringVar(&usageFlags.since, "since", "", "lower time bound (duration or RFC3339)")
	usageCmd.PersistentFlags().StringVar(&usageFlags.until, "until", "", "upper time bound (duration or RFC3339)")
	usageCmd.PersistentFlags().StringVar(&usageFlags.format, "format", "text", "output format: text, json")
	usageCmd.PersistentFlags().StringVarP(&usageFlags.output, "output", "o", "", "output file (default: stdout)")

	usageQueryCmd.Flags().StringVar(&usageFlags.model, "model", "", "filter by native model name")
	usageQueryCmd.Flags().StringVar(&usageFlags.status, "status", "", "filter by status (ok, error)")
	usageQueryCmd.Flags().IntVar(&usageFlags.limit, "limit", 100, "max results")
	usageQueryCmd.Flags().IntVar(&usageFlags.offset, "offset", 0, "pagination offset")
}

// openUsageStorage opens the usage database named by the --database flag or
// the configuration. It refuses to open a database that does not exist so a
// query never leaves an empty file behind.
func openUsageStorage() (usage.Storage, error) {
	path := usageFlags.database
	if path == "" {
		cfg, err := config.LoadWithEnv(cfgFile)
		if err != nil {
			return nil, cli.NewConfigError("", fmt.Errorf("failed to load config: %w", err))
		}
		path = cfg.Usage.Database
	}
	if path == "" {
		return nil, fmt.Errorf("no usage database configured (set usage.database or pass --database)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("usage database %q not found", path)
	}

	store, err := usagestorage.OpenSQLite(usagestorage.SQLiteConfig{Path: path})
	if err != nil {
		return nil, cli.NewCommandError("usage", fmt.Errorf("failed to open usage database: %w", err))
	}
	return store, nil
}

// buildUsageQuery assembles the storage query from the shared flags.
func buildUsageQuery() (*usage.Query, error) {
	query := &usage.Query{
		Model:  usageFlags.model,
		Status: usageFlags.status,
		Limit:  usageFlags.limit,
		Offset: usageFlags.offset,
	}

	if usageFlags.since != "" {
		t, err := parseTimeFlag(usageFlags.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		query.Since = t
	}
	if usageFlags.until != "" {
		t, err := parseTimeFlag(usageFlags.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		query.Until = t
	}

	return query, nil
}

// parseTimeFlag accepts either a duration relative to now ("24h", "30m") or
// an absolute RFC3339 timestamp.
func parseTimeFlag(value string) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither a duration nor an RFC3339 timestamp", value)
	}
	return t, nil
}

// openOutput returns the output destination for the --output flag.
func openOutput() (*os.File, func(), error) {
	if usageFlags.output == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(usageFlags.output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func queryUsage(cmd *cobra.Command, args []string) error {
	store, err := openUsageStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildUsageQuery()
	if err != nil {
		return err
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("usage", fmt.Errorf("query failed: %w", err))
	}

	output, closeOutput, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOutput()

	if cli.ParseFormat(usageFlags.format) == cli.FormatJSON {
		result := map[string]interface{}{
			"total_records": len(records),
			"records":       records,
		}
		return cli.Write(output, cli.FormatJSON, result)
	}
	return outputUsageText(output, records)
}

func outputUsageText(output *os.File, records []*usage.Record) error {
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Timestamp: %s\n", record.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(output, "Model: %s", record.Model)
		if record.RequestedModel != record.Model {
			fmt.Fprintf(output, " (requested: %s)", record.RequestedModel)
		}
		fmt.Fprintln(output)
		fmt.Fprintf(output, "Status: %s", record.Status)
		if record.ErrorType != "" {
			fmt.Fprintf(output, " (%s)", record.ErrorType)
		}
		fmt.Fprintln(output)
		if record.Stream {
			fmt.Fprintf(output, "Stream: %d chunks\n", record.Chunks)
		}
		fmt.Fprintf(output, "Latency: %s\n", record.Latency)
		if verbose {
			fmt.Fprintf(output, "Request ID: %s\n", record.RequestID)
			fmt.Fprintf(output, "Messages: %d\n", record.Messages)
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

// usageReport is the machine-readable shape of a usage report.
type usageReport struct {
	Generated      time.Time      `json:"generated"`
	TotalRequests  int            `json:"total_requests"`
	Errors         int            `json:"errors"`
	Streamed       int            `json:"streamed"`
	AverageLatency time.Duration  `json:"average_latency"`
	ByModel        map[string]int `json:"by_model"`
	ByStatus       map[string]int `json:"by_status"`
	ByErrorType    map[string]int `json:"by_error_type,omitempty"`
}

func reportUsage(cmd *cobra.Command, args []string) error {
	store, err := openUsageStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildUsageQuery()
	if err != nil {
		return err
	}
	// A report always covers every matching record
	query.Limit = 0
	query.Offset = 0

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("usage", fmt.Errorf("query failed: %w", err))
	}

	report := buildUsageReport(records)

	output, closeOutput, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOutput()

	if cli.ParseFormat(usageFlags.format) == cli.FormatJSON {
		return cli.Write(output, cli.FormatJSON, report)
	}
	return outputUsageReportText(output, report)
}

func buildUsageReport(records []*usage.Record) *usageReport {
	report := &usageReport{
		Generated:     time.Now(),
		TotalRequests: len(records),
		ByModel:       make(map[string]int),
		ByStatus:      make(map[string]int),
		ByErrorType:   make(map[string]int),
	}

	var totalLatency time.Duration
	for _, record := range records {
		report.ByModel[record.Model]++
		report.ByStatus[record.Status]++
		if record.Status == usage.StatusError {
			report.Errors++
			if record.ErrorType != "" {
				report.ByErrorType[record.ErrorType]++
			}
		}
		if record.Stream {
			report.Streamed++
		}
		totalLatency += record.Latency
	}

	if len(records) > 0 {
		report.AverageLatency = totalLatency / time.Duration(len(records))
	}
	return report
}

func outputUsageReportText(output *os.File, report *usageReport) error {
	fmt.Fprintln(output, "Usage Report")
	fmt.Fprintln(output, "============")
	fmt.Fprintf(output, "Generated: %s\n", report.Generated.Format(time.RFC3339))
	fmt.Fprintln(output)

	fmt.Fprintln(output, "Summary:")
	fmt.Fprintln(output, "--------")
	fmt.Fprintf(output, "Total Requests: %d\n", report.TotalRequests)
	fmt.Fprintf(output, "Errors: %d\n", report.Errors)
	fmt.Fprintf(output, "Streamed: %d\n", report.Streamed)
	fmt.Fprintf(output, "Average Latency: %s\n", report.AverageLatency)
	fmt.Fprintln(output)

	if report.TotalRequests == 0 {
		return nil
	}

	fmt.Fprintln(output, "By Model:")
	for _, model := range sortedKeys(report.ByModel) {
		count := report.ByModel[model]
		pct := float64(count) / float64(report.TotalRequests) * 100
		fmt.Fprintf(output, "  %s: %d requests (%.0f%%)\n", model, count, pct)
	}
	fmt.Fprintln(output)

	fmt.Fprintln(output, "By Status:")
	for _, status := range sortedKeys(report.ByStatus) {
		count := report.ByStatus[status]
		pct := float64(count) / float64(report.TotalRequests) * 100
		fmt.Fprintf(output, "  %s: %d requests (%.0f%%)\n", status, count, pct)
	}

	if len(report.ByErrorType) > 0 {
		fmt.Fprintln(output)
		fmt.Fprintln(output, "By Error Type:")
		for _, errorType := range sortedKeys(report.ByErrorType) {
			fmt.Fprintf(output, "  %s: %d\n", errorType, report.ByErrorType[errorType])
		}
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
