package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/observability"
	"github.com/Sumatoshi-tech/bidiboard/pkg/pipeline"
)

func newProcessCommand(g *globals) *cobra.Command {
	var (
		artifactsDir string
		outputDir    string
		render       bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Merge new report artifacts into the history",
		Long: `Read <browser>-<YYYY-MM-DD> and <browser>-pr-<number> report artifacts,
merge the ones not seen before into the history document and write the
day-over-day diffs and the failure digests of the latest day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			overrideDirs(cfg, artifactsDir, outputDir)

			return g.runProcess(cmd, cfg, render)
		},
	}

	cmd.Flags().StringVarP(&artifactsDir, "artifacts", "a", "", "directory holding report artifacts (overrides artifacts_dir)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides output_dir)")
	cmd.Flags().BoolVar(&render, "render", false, "render the dashboard after processing")

	return cmd
}

func overrideDirs(cfg *config.Config, artifactsDir, outputDir string) {
	if artifactsDir != "" {
		cfg.ArtifactsDir = artifactsDir
	}

	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
}

func (g *globals) runProcess(cmd *cobra.Command, cfg *config.Config, render bool) error {
	ctx := cmd.Context()

	providers, err := g.observe(ctx, cfg, observability.ModeProcess, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer shutdown(providers)

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return err
	}

	summary, err := pipeline.NewProcessor(g.fs, cfg,
		pipeline.WithLogger(providers.Logger),
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithMetrics(metrics),
	).Run(ctx)
	if err != nil {
		return err
	}

	if !g.quiet {
		printSummary(cmd.OutOrStdout(), summary)
	}

	if !render {
		return nil
	}

	store, _, err := pipeline.LoadStore(g.fs, cfg)
	if err != nil {
		return err
	}

	return g.renderStore(cmd, cfg, store, providers, metrics)
}

func printSummary(w io.Writer, s pipeline.Summary) {
	fmt.Fprintf(w, "Merged %s and %s, skipped %s already processed.\n",
		english.Plural(s.DaysMerged, "day", "days"),
		english.Plural(s.PullRequestsMerged, "pull request run", "pull request runs"),
		english.Plural(s.DaysSkipped+s.PullRequestsSkipped, "artifact", "artifacts"))
	fmt.Fprintf(w, "Wrote %s and %s.\n",
		english.Plural(s.DiffsWritten, "diff", "diffs"),
		english.Plural(s.DigestsWritten, "digest", "digests"))
}
