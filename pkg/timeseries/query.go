package timeseries

import (
	"sort"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// LastDayIndex returns the highest day index holding counters or a result on
// any browser, or -1 for an empty store.
func (s *Store) LastDayIndex() int {
	last := -1

	for day := range s.days {
		last = max(last, day)
	}

	for _, specs := range s.results {
		for _, history := range specs {
			for _, series := range history.Browsers {
				last = max(last, series.LastIndex())
			}
		}
	}

	return last
}

// LastDay returns the latest day with counters for browser.
func (s *Store) LastDay(browser string) (int, bool) {
	days := s.Days(browser)
	if len(days) == 0 {
		return 0, false
	}

	return days[len(days)-1], true
}

// ResultAt returns the code of a spec on browser at day, or results.None.
func (s *Store) ResultAt(path, browser string, day int) results.Code {
	history, ok := s.lookup(path)
	if !ok {
		return results.None
	}

	return history.Browsers[browser].At(day)
}

// PullRequestResult returns the code of a spec on browser for a pull request.
func (s *Store) PullRequestResult(path, browser string, number int) results.Code {
	history, ok := s.lookup(path)
	if !ok {
		return results.None
	}

	code, ok := history.PullRequests[browser][number]
	if !ok {
		return results.None
	}

	return code
}

// History returns a copy of a spec's series on browser.
func (s *Store) History(path, browser string) results.Series {
	history, ok := s.lookup(path)
	if !ok {
		return nil
	}

	series := history.Browsers[browser]

	return append(results.Series(nil), series...)
}

// Snapshot returns the flat results of browser at day.
func (s *Store) Snapshot(browser string, day int) results.Flat {
	flat := make(results.Flat)

	s.each(func(path string, history *SpecHistory) {
		if code := history.Browsers[browser].At(day); code != results.None {
			flat[path] = code
		}
	})

	return flat
}

// PullRequestSnapshot returns the flat results of a pull request on browser.
func (s *Store) PullRequestSnapshot(browser string, number int) results.Flat {
	flat := make(results.Flat)

	s.each(func(path string, history *SpecHistory) {
		if code, ok := history.PullRequests[browser][number]; ok {
			flat[path] = code
		}
	})

	return flat
}

// Days returns the sorted day indices holding counters for browser.
func (s *Store) Days(browser string) []int {
	var days []int

	for _, day := range s.dayIndices() {
		if _, ok := s.days[day].Counts[browser]; ok {
			days = append(days, day)
		}
	}

	return days
}

// AllDays returns every day entry in chronological order.
func (s *Store) AllDays() []DayEntry {
	indices := s.dayIndices()
	entries := make([]DayEntry, 0, len(indices))

	for _, day := range indices {
		entries = append(entries, *s.days[day])
	}

	return entries
}

// DayEntry returns the counters recorded for day.
func (s *Store) DayEntry(day int) (DayEntry, bool) {
	entry, ok := s.days[day]
	if !ok {
		return DayEntry{}, false
	}

	return *entry, true
}

// Counts returns the counters of browser on day.
func (s *Store) Counts(browser string, day int) (BrowserCounts, bool) {
	entry, ok := s.days[day]
	if !ok {
		return BrowserCounts{}, false
	}

	counts, ok := entry.Counts[browser]

	return counts, ok
}

// SpecPaths returns every known spec path, sorted.
func (s *Store) SpecPaths() []string {
	var paths []string

	s.each(func(path string, _ *SpecHistory) {
		paths = append(paths, path)
	})

	sort.Strings(paths)

	return paths
}

// Suites returns every known top-level suite title, sorted.
func (s *Store) Suites() []string {
	seen := make(map[string]bool)

	for suite := range s.results {
		seen[suite] = true
	}

	for _, entry := range s.days {
		for _, counts := range entry.Counts {
			for suite := range counts.BySuite {
				seen[suite] = true
			}
		}
	}

	return sortedKeys(seen)
}

// Browsers returns every browser with counters, results or pull-request runs.
func (s *Store) Browsers() []string {
	seen := make(map[string]bool)

	for _, entry := range s.days {
		for browser := range entry.Counts {
			seen[browser] = true
		}
	}

	for _, pr := range s.pullRequests {
		for browser := range pr.Runs {
			seen[browser] = true
		}
	}

	return sortedKeys(seen)
}

// PullRequestNumbers returns the known pull-request numbers, highest first.
func (s *Store) PullRequestNumbers() []int {
	numbers := make([]int, 0, len(s.pullRequests))

	for number := range s.pullRequests {
		numbers = append(numbers, number)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(numbers)))

	return numbers
}

// PullRequest returns the record of a pull request.
func (s *Store) PullRequest(number int) (*PullRequest, bool) {
	pr, ok := s.pullRequests[number]

	return pr, ok
}

// Digest lists, per suite, the specs failing or skipped on browser at day.
// Suites with neither are omitted.
func (s *Store) Digest(browser string, day int) Digest {
	digest := make(Digest)

	for suite, specs := range s.results {
		var entry DigestEntry

		for spec, history := range specs {
			switch code := history.Browsers[browser].At(day); code {
			case results.Failed, results.TimedOut:
				entry.Failing = append(entry.Failing, spec)
			case results.Skipped:
				entry.Skipped = append(entry.Skipped, spec)
			case results.None, results.Passed:
			}
		}

		if len(entry.Failing) == 0 && len(entry.Skipped) == 0 {
			continue
		}

		sort.Strings(entry.Failing)
		sort.Strings(entry.Skipped)

		digest[suite] = entry
	}

	return digest
}

func (s *Store) each(fn func(path string, history *SpecHistory)) {
	for suite, specs := range s.results {
		for spec, history := range specs {
			fn(specPath(suite, spec), history)
		}
	}
}

func specPath(suite, spec string) string {
	if spec == "" {
		return suite
	}

	return results.JoinPath(suite, spec)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))

	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
