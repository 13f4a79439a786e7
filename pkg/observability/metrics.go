package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricArtifactsTotal   = "bidiboard.artifacts.total"
	metricRunDuration      = "bidiboard.run.duration.seconds"
	metricDiffsWritten     = "bidiboard.diffs.written.total"
	metricPagesRendered    = "bidiboard.pages.rendered.total"
	metricLatestSpecs      = "bidiboard.latest.specs"
	metricTrackedSpecs     = "bidiboard.tracked.specs"
	metricArtifactBytes    = "bidiboard.artifact.bytes"
	attrKind               = "kind"
	attrOutcome            = "outcome"
	attrBrowser            = "browser"
	attrStatus             = "status"
	attrPage               = "page"
	statusError            = "error"
	statusOK               = "ok"
	artifactOutcomeMerged  = "merged"
	artifactOutcomeSkipped = "skipped"
)

// durationBucketBoundaries covers 10ms to 10min; a run reads a handful of
// archives and rewrites one document.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// byteBucketBoundaries covers report archives from 1 KiB to 256 MiB.
var byteBucketBoundaries = []float64{1 << 10, 16 << 10, 256 << 10, 1 << 20, 4 << 20, 16 << 20, 64 << 20, 256 << 20}

// metricBuilder accumulates OTel instrument creation errors,
// enabling batch construction with a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) gauge(name, desc, unit string) metric.Int64Gauge {
	g, err := b.meter.Int64Gauge(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return g
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// RunMetrics holds the OTel instruments of one batch run.
type RunMetrics struct {
	artifactsTotal metric.Int64Counter
	runDuration    metric.Float64Histogram
	diffsWritten   metric.Int64Counter
	pagesRendered  metric.Int64Counter
	latestSpecs    metric.Int64Gauge
	trackedSpecs   metric.Int64Gauge
	artifactBytes  metric.Float64Histogram
}

// NewRunMetrics creates run instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	b := &metricBuilder{meter: mt}

	rm := &RunMetrics{
		artifactsTotal: b.counter(metricArtifactsTotal, "Artifacts seen by outcome", "{artifact}"),
		runDuration: b.histogram(metricRunDuration, "Command duration in seconds", "s",
			durationBucketBoundaries...),
		diffsWritten:  b.counter(metricDiffsWritten, "Diff files written", "{file}"),
		pagesRendered: b.counter(metricPagesRendered, "HTML pages written", "{page}"),
		latestSpecs:   b.gauge(metricLatestSpecs, "Specs on the latest day by status", "{spec}"),
		trackedSpecs:  b.gauge(metricTrackedSpecs, "Spec paths tracked in the history", "{spec}"),
		artifactBytes: b.histogram(metricArtifactBytes, "Size of read report artifacts", "By",
			byteBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordArtifact counts an artifact of kind ("day" or "pr") that was merged
// or skipped.
func (rm *RunMetrics) RecordArtifact(ctx context.Context, kind, browser string, merged bool, size int64) {
	outcome := artifactOutcomeSkipped
	if merged {
		outcome = artifactOutcomeMerged
	}

	rm.artifactsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrBrowser, browser),
		attribute.String(attrOutcome, outcome),
	))

	if merged && size > 0 {
		rm.artifactBytes.Record(ctx, float64(size), metric.WithAttributes(attribute.String(attrKind, kind)))
	}
}

// RecordRun records the duration of a command and whether it failed.
func (rm *RunMetrics) RecordRun(ctx context.Context, mode AppMode, duration time.Duration, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}

	rm.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrMode, string(mode)),
		attribute.String(attrStatus, status),
	))
}

// RecordDiff counts a written diff file.
func (rm *RunMetrics) RecordDiff(ctx context.Context, browser string) {
	rm.diffsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String(attrBrowser, browser)))
}

// RecordPage counts a written HTML page of the given kind.
func (rm *RunMetrics) RecordPage(ctx context.Context, page string) {
	rm.pagesRendered.Add(ctx, 1, metric.WithAttributes(attribute.String(attrPage, page)))
}

// RecordLatest sets the latest-day spec counts of browser.
func (rm *RunMetrics) RecordLatest(ctx context.Context, browser string, passing, failing, skipping int) {
	for status, value := range map[string]int{"passing": passing, "failing": failing, "skipping": skipping} {
		rm.latestSpecs.Record(ctx, int64(value), metric.WithAttributes(
			attribute.String(attrBrowser, browser),
			attribute.String(attrStatus, status),
		))
	}
}

// RecordTracked sets the number of spec paths in the history.
func (rm *RunMetrics) RecordTracked(ctx context.Context, specs int) {
	rm.trackedSpecs.Record(ctx, int64(specs))
}
