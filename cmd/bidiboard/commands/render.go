package commands

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/dashboard"
	"github.com/Sumatoshi-tech/bidiboard/pkg/observability"
	"github.com/Sumatoshi-tech/bidiboard/pkg/pipeline"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

func newRenderCommand(g *globals) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the HTML dashboard from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			overrideDirs(cfg, "", outputDir)

			providers, err := g.observe(cmd.Context(), cfg, observability.ModeRender, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			defer shutdown(providers)

			metrics, err := observability.NewRunMetrics(providers.Meter)
			if err != nil {
				return err
			}

			store, _, err := pipeline.LoadStore(g.fs, cfg)
			if err != nil {
				return err
			}

			return g.renderStore(cmd, cfg, store, providers, metrics)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides output_dir)")

	return cmd
}

func (g *globals) renderStore(cmd *cobra.Command, cfg *config.Config, store *timeseries.Store,
	providers observability.Providers, metrics *observability.RunMetrics,
) error {
	renderer, err := dashboard.NewRenderer(g.fs, cfg,
		dashboard.WithLogger(providers.Logger),
		dashboard.WithTracer(providers.Tracer),
		dashboard.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	result, err := renderer.RenderAll(cmd.Context(), store)
	if err != nil {
		return err
	}

	if !g.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s into %s.\n", english.Plural(result.Pages, "page", "pages"), cfg.OutputDir)
	}

	return nil
}
