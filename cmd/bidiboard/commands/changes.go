package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bidiboard/pkg/changes"
	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/dashboard"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/terminal"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// Sentinel errors of the changes command.
var (
	ErrUnknownBrowser = errors.New("browser is not configured")
	ErrInvalidDate    = errors.New("invalid date (want YYYY-MM-DD)")
	ErrInvalidWindow  = errors.New("window starts after it ends")
	ErrNoRuns         = errors.New("history has no day runs")
)

type changesOptions struct {
	browser    string
	from       string
	to         string
	minChanges int
}

func newChangesCommand(g *globals) *cobra.Command {
	var opts changesOptions

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "List specs whose status changed",
		Long: `List the specs whose normalized status flipped at least --min-changes
times within a window of days. The window defaults to the last
dashboard.changes_days days of the history.

Examples:
  bidiboard changes
  bidiboard changes --browser firefox --from 2024-05-01 --to 2024-05-14`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			minChangesSet := cmd.Flags().Changed("min-changes")

			return g.runQuery(cmd, func(cfg *config.Config, store *timeseries.Store, logger *slog.Logger) error {
				if !minChangesSet {
					opts.minChanges = cfg.Dashboard.MinChanges
				}

				return runChanges(cmd, cfg, store, logger, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.browser, "browser", "b", "", "only this browser (default: all configured)")
	cmd.Flags().StringVar(&opts.from, "from", "", "first day of the window, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "last day of the window, YYYY-MM-DD (default: latest run)")
	cmd.Flags().IntVar(&opts.minChanges, "min-changes", 0, "minimum number of status changes (default: dashboard.min_changes)")

	return cmd
}

func runChanges(cmd *cobra.Command, cfg *config.Config, store *timeseries.Store, logger *slog.Logger,
	opts changesOptions,
) error {
	browsers := cfg.Browsers

	if opts.browser != "" {
		if !cfg.BrowserEnabled(opts.browser) {
			return fmt.Errorf("%w: %s", ErrUnknownBrowser, opts.browser)
		}

		browsers = []string{opts.browser}
	}

	window, err := queryWindow(store, cfg.Dashboard.ChangesDays, opts.from, opts.to)
	if err != nil {
		return err
	}

	logger.Debug("selecting changes", "first", window.First, "last", window.Last, "min_changes", opts.minChanges)

	var rows []terminal.ChangeRow

	for _, browser := range browsers {
		for _, change := range dashboard.ChangedSpecs(store, browser, window, opts.minChanges) {
			history := store.History(change.Path, browser)

			codes := make([]results.Code, 0, window.Len())
			for _, day := range window.Days() {
				codes = append(codes, history.At(day))
			}

			rows = append(rows, terminal.ChangeRow{
				Browser:      browser,
				Path:         change.Path,
				Changes:      change.Changes,
				Intermittent: changes.IsIntermittentAt(history, window.Last),
				Results:      codes,
			})
		}
	}

	return terminal.WriteChanges(cmd.OutOrStdout(), store.DayLabel(window.First), store.DayLabel(window.Last), rows)
}

// queryWindow resolves the --from and --to flags to day indices. Without
// --from, the window spans days days ending at --to.
func queryWindow(store *timeseries.Store, days int, from, to string) (changes.Window, error) {
	window := dashboard.ChangesWindow(store, days)
	if window.Len() == 0 {
		return window, ErrNoRuns
	}

	if to != "" {
		last, err := parseDay(store, to)
		if err != nil {
			return window, err
		}

		window = changes.TrailingWindow(last, days)
		window.First = max(0, window.First)
	}

	if from != "" {
		first, err := parseDay(store, from)
		if err != nil {
			return window, err
		}

		window.First = max(0, first)
	}

	if window.First > window.Last {
		return window, fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
			store.DayLabel(window.First), store.DayLabel(window.Last))
	}

	return window, nil
}

func parseDay(store *timeseries.Store, value string) (int, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	return store.DayIndex(t), nil
}
