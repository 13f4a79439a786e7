package terminal

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

const percentScale = 100

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

func writeTable(w io.Writer, tbl table.Writer) error {
	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

// ChangeRow is one spec of the changes table.
type ChangeRow struct {
	Browser      string
	Path         string
	Changes      int
	Intermittent bool
	Results      []results.Code
}

// WriteChanges prints rows as a table with one result symbol per day from
// the first to the last date of the window.
func WriteChanges(w io.Writer, from, to string, rows []ChangeRow) error {
	_, err := headColor.Fprintf(w, "Status changes from %s to %s\n", from, to)
	if err != nil {
		return fmt.Errorf("write heading: %w", err)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Browser", "Spec", "Changes", "Results"})
	tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})

	for _, row := range rows {
		spec := row.Path
		if row.Intermittent {
			spec += " " + skipColor.Sprint("(intermittent)")
		}

		tbl.AppendRow(table.Row{row.Browser, spec, row.Changes, Strip(row.Results)})
	}

	tbl.AppendFooter(table.Row{"", english.Plural(len(rows), "spec", "specs")})

	return writeTable(w, tbl)
}

// SummaryRow holds the counters of a browser's latest run.
type SummaryRow struct {
	Browser  string    `json:"browser"  yaml:"browser"`
	Date     time.Time `json:"date"     yaml:"date"`
	Passing  int       `json:"passing"  yaml:"passing"`
	Failing  int       `json:"failing"  yaml:"failing"`
	Skipping int       `json:"skipping" yaml:"skipping"`
	Total    int       `json:"total"    yaml:"total"`
}

// PassingShare is the share of passing specs, zero for an empty run.
func (r SummaryRow) PassingShare() float64 {
	if r.Total == 0 {
		return 0
	}

	return float64(r.Passing) / float64(r.Total)
}

// WriteSummary prints rows as a table. Dates are shown relative to now.
func WriteSummary(w io.Writer, rows []SummaryRow, now time.Time) error {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Browser", "Latest run", "Passing", "Failing", "Skipping", "Total", "Passed"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	for _, row := range rows {
		latest := row.Date.Format(time.DateOnly) + " (" + humanize.RelTime(row.Date, now, "ago", "from now") + ")"

		failing := humanize.Comma(int64(row.Failing))
		if row.Failing > 0 {
			failing = failColor.Sprint(failing)
		}

		tbl.AppendRow(table.Row{
			row.Browser,
			latest,
			passColor.Sprint(humanize.Comma(int64(row.Passing))),
			failing,
			humanize.Comma(int64(row.Skipping)),
			humanize.Comma(int64(row.Total)),
			strconv.FormatFloat(row.PassingShare()*percentScale, 'f', 1, 64) + "%",
		})
	}

	return writeTable(w, tbl)
}

// WriteValidation prints the outcome of validating the document at label.
// It reports whether the document was valid.
func WriteValidation(w io.Writer, label string, errs []string) (bool, error) {
	if len(errs) == 0 {
		_, err := passColor.Fprintf(w, "%s is valid\n", label)
		if err != nil {
			return true, fmt.Errorf("write validation: %w", err)
		}

		return true, nil
	}

	_, err := failColor.Fprintf(w, "%s is invalid: %s\n", label, english.Plural(len(errs), "error", "errors"))
	if err != nil {
		return false, fmt.Errorf("write validation: %w", err)
	}

	for _, msg := range errs {
		_, err = failColor.Fprintf(w, "  - %s\n", msg)
		if err != nil {
			return false, fmt.Errorf("write validation: %w", err)
		}
	}

	return false, nil
}
