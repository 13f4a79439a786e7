package results

import (
	"sort"

	"github.com/Sumatoshi-tech/bidiboard/pkg/report"
)

// Counters holds per-suite outcome counts for one run.
type Counters struct {
	Passing  int `json:"passing"`
	Failing  int `json:"failing"`
	Skipping int `json:"skipping"`
}

// Total returns passing + failing + skipping.
func (c Counters) Total() int {
	return c.Passing + c.Failing + c.Skipping
}

// Add returns the element-wise sum of c and other.
func (c Counters) Add(other Counters) Counters {
	return Counters{
		Passing:  c.Passing + other.Passing,
		Failing:  c.Failing + other.Failing,
		Skipping: c.Skipping + other.Skipping,
	}
}

// PassingShare returns Passing / Total, or 0 for an empty suite.
func (c Counters) PassingShare() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}

	return float64(c.Passing) / float64(total)
}

func (c *Counters) count(code Code) {
	switch Normalize(code) {
	case OutcomePassing:
		c.Passing++
	case OutcomeFailing:
		c.Failing++
	case OutcomeNone:
		c.Skipping++
	}
}

// Run is the result of aggregating one report: counters per top-level suite
// and the flat spec path to code mapping.
type Run struct {
	Suites map[string]Counters
	Flat   Flat
}

// Totals sums the counters of every suite.
func (r *Run) Totals() Counters {
	var total Counters

	for _, c := range r.Suites {
		total = total.Add(c)
	}

	return total
}

// SuiteNames returns the top-level suite titles sorted alphabetically.
func (r *Run) SuiteNames() []string {
	names := make([]string, 0, len(r.Suites))

	for name := range r.Suites {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Aggregate walks the suite tree of a report. Each top-level suite gets a
// counters bucket (suites with equal titles share one); every spec with a
// known first status is counted on its top-level suite and recorded in Flat
// under its full title path. Specs without a result are skipped.
func Aggregate(suites []*report.Suite) *Run {
	run := &Run{
		Suites: make(map[string]Counters, len(suites)),
		Flat:   make(Flat),
	}

	for _, suite := range suites {
		if suite == nil {
			continue
		}

		counters := run.Suites[suite.Title]
		walkSuite(suite, []string{suite.Title}, &counters, run.Flat)
		run.Suites[suite.Title] = counters
	}

	return run
}

func walkSuite(suite *report.Suite, path []string, counters *Counters, flat Flat) {
	for _, spec := range suite.Specs {
		status, ok := spec.FirstStatus()
		if !ok {
			continue
		}

		code, known := ParseStatus(status)
		if !known {
			continue
		}

		counters.count(code)
		flat[JoinPath(append(path, spec.Title)...)] = code
	}

	for _, child := range suite.Suites {
		if child == nil {
			continue
		}

		walkSuite(child, append(path[:len(path):len(path)], child.Title), counters, flat)
	}
}

// Counters tallies f the way Aggregate tallies a suite. Entries without a
// stored outcome are ignored.
func (f Flat) Counters() Counters {
	var c Counters

	for _, code := range f {
		if code.Valid() {
			c.count(code)
		}
	}

	return c
}
