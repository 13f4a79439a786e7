// Package commands implements the bidiboard subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/observability"
	"github.com/Sumatoshi-tech/bidiboard/pkg/pipeline"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
	"github.com/Sumatoshi-tech/bidiboard/pkg/version"
)

// ErrNoHistory is returned by commands that query a history that was never
// written.
var ErrNoHistory = errors.New("no history found (run process first)")

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	fs         afero.Fs
	configPath string
	verbose    bool
	quiet      bool
}

// NewRootCommand builds the bidiboard command tree. Artifacts and outputs
// are read and written on fs.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	g := &globals{fs: fs}

	rootCmd := &cobra.Command{
		Use:   "bidiboard",
		Short: "Playwright CI results dashboard",
		Long: `bidiboard merges Playwright JSON report artifacts into a result history
and renders it as a static dashboard.

Commands:
  process   Merge new report artifacts into the history
  render    Write the HTML dashboard
  changes   List specs whose status changed
  summary   Show the latest run of each browser
  validate  Check a history document against its schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default .bidiboard.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(
		newProcessCommand(g),
		newRenderCommand(g),
		newChangesCommand(g),
		newSummaryCommand(g),
		newValidateCommand(g),
		versionCmd(),
	)

	return rootCmd
}

func (g *globals) loadConfig() (*config.Config, error) {
	return config.LoadConfig(g.configPath)
}

// observe starts telemetry for a command in mode. Logs go to errOut.
func (g *globals) observe(ctx context.Context, cfg *config.Config, mode observability.AppMode,
	errOut io.Writer,
) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = os.Getenv("BIDIBOARD_ENV")
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.MetricsTextfile = cfg.Telemetry.MetricsTextfile
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = errOut

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	switch {
	case g.verbose:
		level = slog.LevelDebug
	case g.quiet:
		level = slog.LevelError
	}

	obsCfg.LogLevel = level

	return observability.Init(ctx, obsCfg)
}

func shutdown(providers observability.Providers) {
	shutdownErr := providers.Shutdown(context.Background())
	if shutdownErr != nil {
		providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}

// loadHistory reads the history document and fails when there is none.
func (g *globals) loadHistory(cfg *config.Config) (*timeseries.Store, error) {
	store, found, err := pipeline.LoadStore(g.fs, cfg)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, pipeline.StorePath(cfg))
	}

	return store, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bidiboard %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
