package dashboard

import (
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/bidiboard/pkg/changes"
	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// ChangesWindow returns the trailing window of days days ending at the
// store's last day, clipped to the epoch. It is empty for an empty store.
func ChangesWindow(store *timeseries.Store, days int) changes.Window {
	last := store.LastDayIndex()
	if last < 0 {
		return changes.Window{First: 0, Last: -1}
	}

	window := changes.TrailingWindow(last, days)
	window.First = max(0, window.First)

	return window
}

// ChangedSpecs returns the specs whose status on browser flipped at least
// minChanges times within window.
func ChangedSpecs(store *timeseries.Store, browser string, window changes.Window, minChanges int) []changes.Change {
	return changes.Select(store.SpecPaths(), func(path string) results.Series {
		return store.History(path, browser)
	}, window, minChanges)
}

// changesPage shows, per browser, the specs whose status changed in the
// configured trailing window, with one result cell per day.
func (r *Renderer) changesPage(store *timeseries.Store) *plotpage.Page {
	window := ChangesWindow(store, r.cfg.Dashboard.ChangesDays)
	if window.Len() == 0 {
		page := r.newPage(ChangesPage, "Test result changes", "")
		page.Add(plotpage.Section{Content: plotpage.NewAlert("No test runs yet", "", plotpage.BadgeInfo)})

		return page
	}

	from, to := store.DayLabel(window.First), store.DayLabel(window.Last)
	page := r.newPage(ChangesPage, "Test result changes from "+from+" to "+to,
		fmt.Sprintf("Specs whose status changed at least %d times", r.cfg.Dashboard.MinChanges))

	for _, browser := range r.cfg.Browsers {
		page.Add(r.browserChangesSection(store, browser, window))
	}

	return page
}

func (r *Renderer) browserChangesSection(store *timeseries.Store, browser string, window changes.Window) plotpage.Section {
	selected := ChangedSpecs(store, browser, window, r.cfg.Dashboard.MinChanges)
	table := plotpage.NewTable("Results", "Spec", "Changes")

	for _, change := range selected {
		history := store.History(change.Path, browser)
		strip := plotpage.NewResultStrip(r.theme)

		for _, day := range window.Days() {
			strip.Add(store.DayLabel(day), history.At(day))
		}

		intermittent := changes.IsIntermittentAt(history, window.Last)
		table.AddRow(mustString(strip), r.specCell(change.Path, intermittent), strconv.Itoa(change.Changes))
	}

	section := plotpage.Section{
		ID:       "changes-" + browser,
		Title:    capitalize(browser),
		Subtitle: strconv.Itoa(len(selected)) + " specs changed",
		Content:  table,
		Hint: plotpage.Hint{
			Title: "Counting changes",
			Items: []string{
				"Timed out counts as failed.",
				"Skipped and not run days are ignored.",
			},
		},
	}

	if len(selected) == 0 {
		section.Content = plotpage.NewAlert("", "No status changes.", plotpage.BadgeSuccess)
	}

	return section
}
