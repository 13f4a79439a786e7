package dashboard

import (
	"strconv"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/bidiboard/pkg/diff"
	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// diffPage shows the specs whose result on browser changed between two
// consecutive run days.
func (r *Renderer) diffPage(store *timeseries.Store, browser string, prevDay, day int) *plotpage.Page {
	prev, date := store.DayLabel(prevDay), store.DayLabel(day)
	rel := DiffPath(date, browser)

	page := r.newPage(rel, capitalize(browser)+" test result changes on "+date, "Compared to "+prev,
		plotpage.NavLink{Label: "Run on " + prev, Href: plotpage.Rel(rel, TestRunPath(browser, prev))},
		plotpage.NavLink{Label: "Run on " + date, Href: plotpage.Rel(rel, TestRunPath(browser, date))},
	)

	entries := diff.Diff(store.Snapshot(browser, prevDay), store.Snapshot(browser, day))

	page.Add(summarySection(entries.Summarize()), r.diffSection("Changed specs", entries, false))

	if renames := diff.RenameCandidates(entries, r.cfg.Dashboard.RenameDistance); len(renames) > 0 {
		page.Add(renameSection(renames))
	}

	return page
}

func summarySection(s diff.Summary) plotpage.Section {
	return plotpage.Section{
		Content: plotpage.NewGrid(4, //nolint:mnd // one column per kind.
			plotpage.NewStat("Fixed", strconv.Itoa(s.Fixed)).WithTrend("failing before, passing now", plotpage.BadgeSuccess),
			plotpage.NewStat("Regressed", strconv.Itoa(s.Regressed)).WithTrend("passing before, failing now", plotpage.BadgeError),
			plotpage.NewStat("Added", strconv.Itoa(s.Added)),
			plotpage.NewStat("Removed", strconv.Itoa(s.Removed)),
		),
	}
}

// diffSection tabulates entries. With hideRemoved, specs missing from the
// current side are counted instead of listed.
func (r *Renderer) diffSection(title string, entries diff.Entries, hideRemoved bool) plotpage.Section {
	table := plotpage.NewTable("Spec", "Previous", "Current")
	hidden := 0

	for _, path := range entries.Paths() {
		entry := entries[path]
		if hideRemoved && entry.Removed() {
			hidden++

			continue
		}

		table.AddRow(r.specCell(path, false), badge(entry.Previous), badge(entry.Current))
	}

	section := plotpage.Section{
		ID:       "changes",
		Title:    title,
		Subtitle: strconv.Itoa(table.Len()) + " specs changed",
		Content:  table,
	}

	if hidden > 0 {
		section.Subtitle += ", " + strconv.Itoa(hidden) + " specs not run"
	}

	if table.Len() == 0 {
		section.Content = plotpage.NewAlert("", "No result changed.", plotpage.BadgeSuccess)
	}

	return section
}

// renameSection lists removed specs that were probably renamed, with a
// character diff of the two paths.
func renameSection(renames []diff.Rename) plotpage.Section {
	dmp := diffmatchpatch.New()
	table := plotpage.NewTable("Removed", "Added", "Difference")

	for _, rename := range renames {
		table.AddRow(plotpage.Escape(rename.From), plotpage.Escape(rename.To), dmp.DiffPrettyHtml(rename.Diffs()))
	}

	return plotpage.Section{
		ID:       "renames",
		Title:    "Possible renames",
		Subtitle: "Removed and added specs of the same suite with similar names",
		Content:  table,
	}
}
