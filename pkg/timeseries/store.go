// Package timeseries holds the cumulative result history: per spec, per
// browser, a day-indexed series of result codes, plus per-day counters and
// pull-request results kept in their own namespace.
package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// DateLayout is the calendar date layout of day entries.
const DateLayout = "2006-01-02"

const hoursPerDay = 24

// PullRequestMeta describes one pull-request run.
type PullRequestMeta struct {
	Title string
	Date  time.Time
}

// Store is the in-memory time-series store. It is not safe for concurrent use.
type Store struct {
	epoch        time.Time
	days         map[int]*DayEntry
	results      map[string]map[string]*SpecHistory
	pullRequests map[int]*PullRequest
}

// NewStore creates an empty store whose day 0 is the calendar date of epoch.
func NewStore(epoch time.Time) *Store {
	return &Store{
		epoch:        truncateDay(epoch),
		days:         make(map[int]*DayEntry),
		results:      make(map[string]map[string]*SpecHistory),
		pullRequests: make(map[int]*PullRequest),
	}
}

// FromDocument builds a store from a decoded document. The document's maps
// are adopted, not copied.
func FromDocument(doc *Document, epoch time.Time) *Store {
	s := NewStore(epoch)
	if doc == nil {
		return s
	}

	for i := range doc.Days {
		entry := doc.Days[i]
		if entry.Counts == nil {
			entry.Counts = make(map[string]BrowserCounts)
		}

		s.days[entry.Day] = &entry
	}

	for suite, specs := range doc.Results {
		if specs == nil {
			continue
		}

		for spec, history := range specs {
			if history == nil {
				delete(specs, spec)

				continue
			}

			if history.Browsers == nil {
				history.Browsers = make(map[string]results.Series)
			}
		}

		s.results[suite] = specs
	}

	for number, pr := range doc.PullRequests {
		if pr == nil {
			continue
		}

		if pr.Runs == nil {
			pr.Runs = make(map[string]PullRequestRun)
		}

		s.pullRequests[number] = pr
	}

	return s
}

// Document returns the persisted form of the store. It shares storage with
// the store.
func (s *Store) Document() *Document {
	doc := &Document{
		Days:         make([]DayEntry, 0, len(s.days)),
		Results:      s.results,
		PullRequests: s.pullRequests,
	}

	for _, day := range s.dayIndices() {
		doc.Days = append(doc.Days, *s.days[day])
	}

	return doc
}

// Epoch returns the date of day index 0.
func (s *Store) Epoch() time.Time {
	return s.epoch
}

// DayIndex returns the number of whole days between the epoch and the UTC
// calendar date of t. Dates before the epoch give negative indices.
func (s *Store) DayIndex(t time.Time) int {
	days := truncateDay(t).Sub(s.epoch).Hours() / hoursPerDay

	return int(math.Floor(days))
}

// DayDate returns the calendar date of day index i.
func (s *Store) DayDate(i int) time.Time {
	return s.epoch.AddDate(0, 0, i)
}

// DayLabel formats the calendar date of day index i.
func (s *Store) DayLabel(i int) string {
	return s.DayDate(i).Format(DateLayout)
}

// HasDay reports whether the (browser, day) slot already holds counters or
// any spec result.
func (s *Store) HasDay(browser string, day int) bool {
	if entry, ok := s.days[day]; ok {
		if _, counted := entry.Counts[browser]; counted {
			return true
		}
	}

	for _, specs := range s.results {
		for _, history := range specs {
			if history.Browsers[browser].At(day) != results.None {
				return true
			}
		}
	}

	return false
}

// MergeDay records one day's run for browser. It returns false without
// touching the store when the slot was already processed, when day is
// negative, or when browser is the reserved pull-request key.
func (s *Store) MergeDay(browser string, day int, run *results.Run) bool {
	if day < 0 || browser == PullRequestsKey || s.HasDay(browser, day) {
		return false
	}

	entry, ok := s.days[day]
	if !ok {
		entry = &DayEntry{
			Date:   s.DayLabel(day),
			Day:    day,
			Counts: make(map[string]BrowserCounts),
		}
		s.days[day] = entry
	}

	entry.Counts[browser] = newBrowserCounts(run)

	for path, code := range run.Flat {
		history := s.history(path)
		history.Browsers[browser] = history.Browsers[browser].Set(day, code)
	}

	return true
}

// MergePullRequest replaces the results of pull request number on browser.
// Every previous occurrence of the pull request for that browser is cleared
// first, so specs missing from run are no longer tracked. The record's run
// date is overwritten; its title only when meta carries one.
func (s *Store) MergePullRequest(browser string, number int, run *results.Run, meta PullRequestMeta) {
	s.clearPullRequest(browser, number)

	for path, code := range run.Flat {
		history := s.history(path)
		if history.PullRequests == nil {
			history.PullRequests = make(map[string]map[int]results.Code)
		}

		byNumber := history.PullRequests[browser]
		if byNumber == nil {
			byNumber = make(map[int]results.Code)
			history.PullRequests[browser] = byNumber
		}

		byNumber[number] = code
	}

	record, ok := s.pullRequests[number]
	if !ok {
		record = &PullRequest{Runs: make(map[string]PullRequestRun)}
		s.pullRequests[number] = record
	}

	if meta.Title != "" {
		record.Title = meta.Title
	}

	record.Runs[browser] = PullRequestRun{Date: meta.Date.UTC()}
}

func (s *Store) clearPullRequest(browser string, number int) {
	for _, specs := range s.results {
		for _, history := range specs {
			byNumber, ok := history.PullRequests[browser]
			if !ok {
				continue
			}

			delete(byNumber, number)

			if len(byNumber) == 0 {
				delete(history.PullRequests, browser)
			}

			if len(history.PullRequests) == 0 {
				history.PullRequests = nil
			}
		}
	}
}

func (s *Store) history(path string) *SpecHistory {
	suite, spec := results.SplitPath(path)

	specs, ok := s.results[suite]
	if !ok {
		specs = make(map[string]*SpecHistory)
		s.results[suite] = specs
	}

	history, ok := specs[spec]
	if !ok {
		history = newSpecHistory()
		specs[spec] = history
	}

	return history
}

func (s *Store) lookup(path string) (*SpecHistory, bool) {
	suite, spec := results.SplitPath(path)

	history, ok := s.results[suite][spec]

	return history, ok
}

func (s *Store) dayIndices() []int {
	indices := make([]int, 0, len(s.days))

	for day := range s.days {
		indices = append(indices, day)
	}

	sort.Ints(indices)

	return indices
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
