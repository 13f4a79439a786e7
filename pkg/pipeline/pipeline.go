// Package pipeline runs one batch ingestion: scan the artifact directory,
// aggregate new reports into the history, write diff files and failure
// digests, and persist the history document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/bidiboard/pkg/artifact"
	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/diff"
	"github.com/Sumatoshi-tech/bidiboard/pkg/observability"
	"github.com/Sumatoshi-tech/bidiboard/pkg/persist"
	"github.com/Sumatoshi-tech/bidiboard/pkg/report"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// DiffDir is the output subdirectory holding day-over-day diff files.
const DiffDir = "diff"

// digestSuffix is appended to the browser name of failure digest files.
const digestSuffix = "-failing"

const (
	kindDay         = "day"
	kindPullRequest = "pr"
)

// Summary reports what a run did.
type Summary struct {
	DaysMerged          int `json:"daysMerged"          yaml:"daysMerged"`
	DaysSkipped         int `json:"daysSkipped"         yaml:"daysSkipped"`
	PullRequestsMerged  int `json:"pullRequestsMerged"  yaml:"pullRequestsMerged"`
	PullRequestsSkipped int `json:"pullRequestsSkipped" yaml:"pullRequestsSkipped"`
	Ignored             int `json:"ignored"             yaml:"ignored"`
	DiffsWritten        int `json:"diffsWritten"        yaml:"diffsWritten"`
	DigestsWritten      int `json:"digestsWritten"      yaml:"digestsWritten"`
}

// Changed reports whether the run merged anything into the history.
func (s Summary) Changed() bool {
	return s.DaysMerged > 0 || s.PullRequestsMerged > 0
}

// Processor runs the ingestion. It is single-use per run and not safe for
// concurrent use.
type Processor struct {
	fs      afero.Fs
	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RunMetrics
	clock   func() time.Time
	json    persist.Codec
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithTracer sets the tracer used for run and artifact spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Processor) { p.tracer = tracer }
}

// WithMetrics sets the run instruments.
func WithMetrics(metrics *observability.RunMetrics) Option {
	return func(p *Processor) { p.metrics = metrics }
}

// WithClock sets the time source used for pull-request runs whose report
// carries no start time.
func WithClock(clock func() time.Time) Option {
	return func(p *Processor) { p.clock = clock }
}

// NewProcessor creates a processor reading and writing through fs.
func NewProcessor(fs afero.Fs, cfg *config.Config, opts ...Option) *Processor {
	p := &Processor{
		fs:     fs,
		cfg:    cfg,
		logger: observability.Discard(),
		tracer: nooptrace.NewTracerProvider().Tracer("pipeline"),
		clock:  time.Now,
		json:   persist.NewJSONCodec(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes one ingestion. A malformed report aborts the run before
// anything is written.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	start := time.Now()

	summary, err := p.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if p.metrics != nil {
		p.metrics.RecordRun(ctx, observability.ModeProcess, time.Since(start), err)
	}

	return summary, err
}

func (p *Processor) run(ctx context.Context) (Summary, error) {
	var summary Summary

	store, found, err := LoadStore(p.fs, p.cfg)
	if err != nil {
		return summary, err
	}

	p.logger.InfoContext(ctx, "history loaded",
		"path", StorePath(p.cfg), "found", found, "specs", len(store.SpecPaths()))

	var previous []byte

	if found && p.cfg.Store.Backup {
		previous, err = afero.ReadFile(p.fs, StorePath(p.cfg))
		if err != nil {
			return summary, fmt.Errorf("read history: %w", err)
		}
	}

	artifacts, err := artifact.Scan(p.fs, p.cfg.ArtifactsDir)
	if err != nil {
		return summary, err
	}

	for _, a := range artifacts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, fmt.Errorf("run cancelled: %w", ctxErr)
		}

		if !p.cfg.BrowserEnabled(a.Browser) {
			p.logger.DebugContext(ctx, "browser not configured, ignoring", "artifact", a.Name)

			summary.Ignored++

			continue
		}

		mergeErr := p.processArtifact(ctx, store, a, &summary)
		if mergeErr != nil {
			return summary, mergeErr
		}
	}

	diffs, err := p.writeDiffs(ctx, store)
	if err != nil {
		return summary, err
	}

	summary.DiffsWritten = diffs

	digests, err := p.writeDigests(ctx, store)
	if err != nil {
		return summary, err
	}

	summary.DigestsWritten = digests

	if previous != nil {
		backupErr := BackupStore(p.fs, p.cfg, previous)
		if backupErr != nil {
			return summary, backupErr
		}
	}

	saveErr := SaveStore(p.fs, p.cfg, store)
	if saveErr != nil {
		return summary, saveErr
	}

	if p.metrics != nil {
		p.metrics.RecordTracked(ctx, len(store.SpecPaths()))
	}

	p.logger.InfoContext(ctx, "run complete",
		"days_merged", summary.DaysMerged, "days_skipped", summary.DaysSkipped,
		"prs_merged", summary.PullRequestsMerged, "diffs", summary.DiffsWritten)

	return summary, nil
}

func (p *Processor) processArtifact(ctx context.Context, store *timeseries.Store, a artifact.Artifact, summary *Summary) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.artifact", trace.WithAttributes(
		attribute.String("artifact.name", a.Name),
		attribute.String("artifact.browser", a.Browser),
	))
	defer span.End()

	var (
		merged bool
		err    error
		size   int64
		kind   = kindDay
	)

	if a.Kind == artifact.KindPullRequest {
		kind = kindPullRequest
		merged, size, err = p.mergePullRequest(ctx, store, a)
	} else {
		merged, size, err = p.mergeDay(ctx, store, a)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	switch {
	case kind == kindDay && merged:
		summary.DaysMerged++
	case kind == kindDay:
		summary.DaysSkipped++
	case merged:
		summary.PullRequestsMerged++
	default:
		summary.PullRequestsSkipped++
	}

	if p.metrics != nil {
		p.metrics.RecordArtifact(ctx, kind, a.Browser, merged, size)
	}

	return nil
}

func (p *Processor) mergeDay(ctx context.Context, store *timeseries.Store, a artifact.Artifact) (bool, int64, error) {
	day := store.DayIndex(a.Date)
	if day < 0 {
		p.logger.WarnContext(ctx, "artifact predates start date, skipping",
			"artifact", a.Name, "start_date", p.cfg.StartDate)

		return false, 0, nil
	}

	if store.HasDay(a.Browser, day) {
		p.logger.InfoContext(ctx, "already processed - skipping", "artifact", a.Name)

		return false, 0, nil
	}

	run, size, err := p.aggregate(ctx, a)
	if err != nil {
		return false, 0, err
	}

	merged := store.MergeDay(a.Browser, day, run)

	totals := run.Totals()
	p.logger.InfoContext(ctx, "processed",
		"artifact", a.Name, "day", day, "passing", totals.Passing,
		"failing", totals.Failing, "skipping", totals.Skipping)

	return merged, size, nil
}

func (p *Processor) mergePullRequest(ctx context.Context, store *timeseries.Store, a artifact.Artifact) (bool, int64, error) {
	rep, size, err := p.read(ctx, a)
	if err != nil {
		return false, 0, err
	}

	meta := timeseries.PullRequestMeta{Title: rep.PullRequestTitle(), Date: rep.StartTime()}

	if record, ok := store.PullRequest(a.PullRequest); ok && !meta.Date.IsZero() {
		if previous, ran := record.Runs[a.Browser]; ran && previous.Date.Equal(meta.Date) {
			p.logger.InfoContext(ctx, "already processed - skipping", "artifact", a.Name)

			return false, 0, nil
		}
	}

	if meta.Date.IsZero() {
		meta.Date = p.clock()
	}

	run := results.Aggregate(rep.Suites)
	store.MergePullRequest(a.Browser, a.PullRequest, run, meta)

	p.logger.InfoContext(ctx, "processed pull request",
		"artifact", a.Name, "pr", a.PullRequest, "title", meta.Title, "specs", len(run.Flat))

	return true, size, nil
}

func (p *Processor) aggregate(ctx context.Context, a artifact.Artifact) (*results.Run, int64, error) {
	rep, size, err := p.read(ctx, a)
	if err != nil {
		return nil, 0, err
	}

	return results.Aggregate(rep.Suites), size, nil
}

func (p *Processor) read(ctx context.Context, a artifact.Artifact) (*report.Report, int64, error) {
	var size int64

	if info, statErr := p.fs.Stat(a.Path); statErr == nil {
		size = info.Size()
	}

	p.logger.DebugContext(ctx, "reading report", "artifact", a.Name, "size", humanize.Bytes(uint64(max(size, 0))))

	rep, err := report.ReadFile(p.fs, a.Path, p.cfg.ReportEntry)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", a.Name, err)
	}

	return rep, size, nil
}

// DiffFilename returns the base name of the diff file of browser on date.
func DiffFilename(date, browser string) string {
	return date + "-" + browser
}

func (p *Processor) writeDiffs(ctx context.Context, store *timeseries.Store) (int, error) {
	dir := path.Join(p.cfg.OutputDir, DiffDir)
	written := 0

	for _, browser := range p.cfg.Browsers {
		days := store.Days(browser)

		for i := 1; i < len(days); i++ {
			name := DiffFilename(store.DayLabel(days[i]), browser)

			exists, err := persist.Exists(p.fs, dir, name, p.json)
			if err != nil {
				return written, err
			}

			if exists {
				continue
			}

			entries := diff.Diff(store.Snapshot(browser, days[i-1]), store.Snapshot(browser, days[i]))

			saveErr := persist.SaveState(p.fs, dir, name, p.json, entries)
			if saveErr != nil {
				return written, fmt.Errorf("write diff %s: %w", name, saveErr)
			}

			written++

			if p.metrics != nil {
				p.metrics.RecordDiff(ctx, browser)
			}

			p.logger.DebugContext(ctx, "diff written", "file", name, "changes", len(entries))
		}
	}

	return written, nil
}

func (p *Processor) writeDigests(ctx context.Context, store *timeseries.Store) (int, error) {
	written := 0

	for _, browser := range p.cfg.Browsers {
		day, ok := store.LastDay(browser)
		if !ok {
			continue
		}

		digest := store.Digest(browser, day)

		err := persist.SaveState(p.fs, p.cfg.OutputDir, browser+digestSuffix, p.json, digest)
		if err != nil {
			return written, fmt.Errorf("write %s digest: %w", browser, err)
		}

		written++

		if counts, counted := store.Counts(browser, day); counted && p.metrics != nil {
			p.metrics.RecordLatest(ctx, browser, counts.Passing, counts.Failing, counts.Skipping)
		}

		failing, skipped := digest.Count()
		p.logger.InfoContext(ctx, "digest written",
			"browser", browser, "date", store.DayLabel(day), "failing", failing, "skipped", skipped)
	}

	return written, nil
}

// IsMalformed reports whether err was caused by an unreadable report.
func IsMalformed(err error) bool {
	return errors.Is(err, report.ErrMalformedReport)
}
