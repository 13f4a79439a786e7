package timeseries

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// PullRequestsKey is the reserved key under which a spec history stores its
// pull-request results. No browser may use this name.
const PullRequestsKey = "pullRequests"

// titleKey is the reserved key of a pull-request record holding its title.
const titleKey = "title"

// Document is the persisted data.json layout.
type Document struct {
	Days         []DayEntry                         `json:"days"`
	Results      map[string]map[string]*SpecHistory `json:"results"`
	PullRequests map[int]*PullRequest               `json:"pullRequests"`
}

// DayEntry holds the counters recorded for one calendar day.
type DayEntry struct {
	// Date is the calendar date (YYYY-MM-DD).
	Date string `json:"date"`
	// Day is the day index relative to the store epoch.
	Day    int                      `json:"day"`
	Counts map[string]BrowserCounts `json:"counts"`
}

// BrowserCounts holds one browser's counters for one day.
type BrowserCounts struct {
	Passing  int                         `json:"passing"`
	Failing  int                         `json:"failing"`
	Skipping int                         `json:"skipping"`
	Total    int                         `json:"total"`
	BySuite  map[string]results.Counters `json:"bySuite"`
}

// Counters returns the totals as results.Counters.
func (b BrowserCounts) Counters() results.Counters {
	return results.Counters{Passing: b.Passing, Failing: b.Failing, Skipping: b.Skipping}
}

// Filtered sums the suites for which keep returns true.
func (b BrowserCounts) Filtered(keep func(suite string) bool) results.Counters {
	var total results.Counters

	for suite, c := range b.BySuite {
		if keep(suite) {
			total = total.Add(c)
		}
	}

	return total
}

func newBrowserCounts(run *results.Run) BrowserCounts {
	totals := run.Totals()
	bySuite := make(map[string]results.Counters, len(run.Suites))

	for suite, c := range run.Suites {
		bySuite[suite] = c
	}

	return BrowserCounts{
		Passing:  totals.Passing,
		Failing:  totals.Failing,
		Skipping: totals.Skipping,
		Total:    totals.Total(),
		BySuite:  bySuite,
	}
}

// SpecHistory is the result history of one spec: a day-indexed series per
// browser plus the latest code per browser per pull request.
type SpecHistory struct {
	Browsers     map[string]results.Series
	PullRequests map[string]map[int]results.Code
}

func newSpecHistory() *SpecHistory {
	return &SpecHistory{Browsers: make(map[string]results.Series)}
}

// MarshalJSON flattens browsers next to the pullRequests key.
func (h *SpecHistory) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Browsers)+1)

	for browser, series := range h.Browsers {
		out[browser] = series
	}

	if len(h.PullRequests) > 0 {
		out[PullRequestsKey] = h.PullRequests
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal spec history: %w", err)
	}

	return data, nil
}

// UnmarshalJSON reads the flattened layout written by MarshalJSON.
func (h *SpecHistory) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshal spec history: %w", err)
	}

	h.Browsers = make(map[string]results.Series, len(raw))
	h.PullRequests = nil

	for key, value := range raw {
		if key == PullRequestsKey {
			unmarshalErr := json.Unmarshal(value, &h.PullRequests)
			if unmarshalErr != nil {
				return fmt.Errorf("unmarshal pull request results: %w", unmarshalErr)
			}

			continue
		}

		var series results.Series

		unmarshalErr := json.Unmarshal(value, &series)
		if unmarshalErr != nil {
			return fmt.Errorf("unmarshal %s series: %w", key, unmarshalErr)
		}

		h.Browsers[key] = series
	}

	return nil
}

// PullRequest is the record of one pull request.
type PullRequest struct {
	Title string
	Runs  map[string]PullRequestRun
}

// PullRequestRun describes the latest run of a pull request on one browser.
type PullRequestRun struct {
	Date time.Time `json:"date"`
}

// Browsers returns the browsers with a run, sorted.
func (p *PullRequest) Browsers() []string {
	browsers := make([]string, 0, len(p.Runs))

	for browser := range p.Runs {
		browsers = append(browsers, browser)
	}

	sort.Strings(browsers)

	return browsers
}

// MarshalJSON writes {"title": ..., "<browser>": {"date": ...}}.
func (p *PullRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Runs)+1)

	for browser, run := range p.Runs {
		out[browser] = run
	}

	out[titleKey] = p.Title

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal pull request: %w", err)
	}

	return data, nil
}

// UnmarshalJSON reads the layout written by MarshalJSON.
func (p *PullRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshal pull request: %w", err)
	}

	p.Title = ""
	p.Runs = make(map[string]PullRequestRun, len(raw))

	for key, value := range raw {
		if key == titleKey {
			unmarshalErr := json.Unmarshal(value, &p.Title)
			if unmarshalErr != nil {
				return fmt.Errorf("unmarshal pull request title: %w", unmarshalErr)
			}

			continue
		}

		var run PullRequestRun

		unmarshalErr := json.Unmarshal(value, &run)
		if unmarshalErr != nil {
			return fmt.Errorf("unmarshal pull request run %s: %w", key, unmarshalErr)
		}

		p.Runs[key] = run
	}

	return nil
}

// DigestEntry lists the failing and skipped specs of one suite. Paths are
// relative to the suite.
type DigestEntry struct {
	Failing []string `json:"failing,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

// Digest maps suite titles to their failing and skipped specs.
type Digest map[string]DigestEntry

// Count returns the number of listed specs.
func (d Digest) Count() (failing, skipped int) {
	for _, entry := range d {
		failing += len(entry.Failing)
		skipped += len(entry.Skipped)
	}

	return failing, skipped
}
