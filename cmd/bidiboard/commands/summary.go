package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/terminal"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// Output formats of the summary command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const yamlIndent = 2

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

func newSummaryCommand(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the latest run of each browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runQuery(cmd, func(cfg *config.Config, store *timeseries.Store, logger *slog.Logger) error {
				rows := summaryRows(cfg, store)
				logger.Debug("summary", "browsers", len(rows), "format", format)

				return writeSummary(cmd.OutOrStdout(), format, rows, time.Now())
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "output format: table, json or yaml")

	return cmd
}

// summaryRows returns the enabled-suite counters of each configured
// browser's latest run. Browsers without runs are left out.
func summaryRows(cfg *config.Config, store *timeseries.Store) []terminal.SummaryRow {
	rows := make([]terminal.SummaryRow, 0, len(cfg.Browsers))

	for _, browser := range cfg.Browsers {
		day, ok := store.LastDay(browser)
		if !ok {
			continue
		}

		counts, _ := store.Counts(browser, day)
		c := counts.Filtered(cfg.SuiteEnabled)

		rows = append(rows, terminal.SummaryRow{
			Browser:  browser,
			Date:     store.DayDate(day),
			Passing:  c.Passing,
			Failing:  c.Failing,
			Skipping: c.Skipping,
			Total:    c.Total(),
		})
	}

	return rows
}

func writeSummary(w io.Writer, format string, rows []terminal.SummaryRow, now time.Time) error {
	switch format {
	case FormatTable:
		return terminal.WriteSummary(w, rows, now)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(rows)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(rows)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
