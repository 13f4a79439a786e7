// Package dashboard renders the static HTML views of the result history:
// the overview, per-day test runs, day-over-day diffs, status changes and
// pull requests.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/observability"
	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// Page locations relative to the output directory.
const (
	IndexPage        = "index.html"
	ChangesPage      = "changes.html"
	PullRequestsPage = "pull-requests.html"
	TestRunDir       = "testrun"
	DiffDir          = "diff"
)

// Page kinds, used as the metrics attribute.
const (
	kindIndex        = "index"
	kindTestRun      = "testrun"
	kindDiff         = "diff"
	kindChanges      = "changes"
	kindPullRequests = "pull-requests"
	kindPullRequest  = "pull-request"
)

// TestRunPath returns the page of browser's run on date.
func TestRunPath(browser, date string) string {
	return path.Join(TestRunDir, browser+"-"+date+".html")
}

// PullRequestPath returns the page of a pull request's run on browser.
func PullRequestPath(browser string, number int) string {
	return path.Join(TestRunDir, browser+"-pr-"+strconv.Itoa(number)+".html")
}

// DiffPath returns the page of browser's changes on date.
func DiffPath(date, browser string) string {
	return path.Join(DiffDir, date+"-"+browser+".html")
}

// Result reports what RenderAll wrote.
type Result struct {
	Pages int
}

// Renderer writes the dashboard pages of a store.
type Renderer struct {
	cfg     *config.Config
	site    *plotpage.Site
	theme   plotpage.Theme
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RunMetrics
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// WithTracer sets the tracer used for the render span.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Renderer) { r.tracer = tracer }
}

// WithMetrics sets the instruments counting written pages.
func WithMetrics(metrics *observability.RunMetrics) Option {
	return func(r *Renderer) { r.metrics = metrics }
}

// NewRenderer creates a renderer writing below cfg.OutputDir on fs.
func NewRenderer(fs afero.Fs, cfg *config.Config, opts ...Option) (*Renderer, error) {
	theme, err := plotpage.ParseTheme(cfg.Dashboard.Theme)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	r := &Renderer{
		cfg: cfg,
		site: &plotpage.Site{
			FS:          fs,
			Dir:         cfg.OutputDir,
			ProjectName: cfg.Dashboard.Title,
			Theme:       theme,
		},
		theme:  theme,
		logger: observability.Discard(),
		tracer: nooptrace.NewTracerProvider().Tracer("dashboard"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// RenderAll writes every page of store.
func (r *Renderer) RenderAll(ctx context.Context, store *timeseries.Store) (Result, error) {
	ctx, span := r.tracer.Start(ctx, "dashboard.render")
	defer span.End()

	start := time.Now()

	result, err := r.renderAll(ctx, store)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(attribute.Int("dashboard.pages", result.Pages))

	if r.metrics != nil {
		r.metrics.RecordRun(ctx, observability.ModeRender, time.Since(start), err)
	}

	return result, err
}

func (r *Renderer) renderAll(ctx context.Context, store *timeseries.Store) (Result, error) {
	var result Result

	write := func(kind, rel string, page *plotpage.Page) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("render cancelled: %w", ctxErr)
		}

		err := r.site.Write(rel, page)
		if err != nil {
			return err
		}

		result.Pages++

		if r.metrics != nil {
			r.metrics.RecordPage(ctx, kind)
		}

		r.logger.DebugContext(ctx, "page written", "page", rel)

		return nil
	}

	err := write(kindIndex, IndexPage, r.indexPage(store))
	if err != nil {
		return result, err
	}

	for _, browser := range r.cfg.Browsers {
		days := store.Days(browser)

		for i, day := range days {
			date := store.DayLabel(day)

			err = write(kindTestRun, TestRunPath(browser, date), r.testRunPage(store, browser, days, i))
			if err != nil {
				return result, err
			}

			if i == 0 {
				continue
			}

			err = write(kindDiff, DiffPath(date, browser), r.diffPage(store, browser, days[i-1], day))
			if err != nil {
				return result, err
			}
		}
	}

	err = write(kindChanges, ChangesPage, r.changesPage(store))
	if err != nil {
		return result, err
	}

	err = write(kindPullRequests, PullRequestsPage, r.pullRequestsPage(store))
	if err != nil {
		return result, err
	}

	for _, number := range store.PullRequestNumbers() {
		record, _ := store.PullRequest(number)

		for _, browser := range record.Browsers() {
			if !r.cfg.BrowserEnabled(browser) {
				continue
			}

			err = write(kindPullRequest, PullRequestPath(browser, number), r.pullRequestPage(store, browser, number))
			if err != nil {
				return result, err
			}
		}
	}

	r.logger.InfoContext(ctx, "dashboard rendered", "dir", r.cfg.OutputDir, "pages", result.Pages)

	return result, nil
}

// newPage creates a page located at rel with links to the top-level views.
func (r *Renderer) newPage(rel, title, description string, extra ...plotpage.NavLink) *plotpage.Page {
	links := []plotpage.NavLink{
		{Label: "Dashboard", Href: plotpage.Rel(rel, IndexPage)},
		{Label: "Changes", Href: plotpage.Rel(rel, ChangesPage)},
		{Label: "Pull requests", Href: plotpage.Rel(rel, PullRequestsPage)},
	}

	return plotpage.NewPage(title, description).WithNav(append(links, extra...)...)
}
