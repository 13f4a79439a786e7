package commands

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/observability"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

type queryFunc func(cfg *config.Config, store *timeseries.Store, logger *slog.Logger) error

// runQuery loads the configuration and the history, then runs fn under
// query-mode telemetry.
func (g *globals) runQuery(cmd *cobra.Command, fn queryFunc) error {
	ctx := cmd.Context()

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	providers, err := g.observe(ctx, cfg, observability.ModeQuery, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer shutdown(providers)

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return err
	}

	start := time.Now()

	store, err := g.loadHistory(cfg)
	if err == nil {
		err = fn(cfg, store, providers.Logger)
	}

	metrics.RecordRun(ctx, observability.ModeQuery, time.Since(start), err)

	return err
}
