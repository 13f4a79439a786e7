package dashboard

import (
	"strconv"

	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

// pullRequestsPage lists pull requests, newest number first, with a link to
// each browser's run.
func (r *Renderer) pullRequestsPage(store *timeseries.Store) *plotpage.Page {
	page := r.newPage(PullRequestsPage, "Pull requests", "Test runs of open pull requests")

	numbers := store.PullRequestNumbers()
	if len(numbers) == 0 {
		page.Add(plotpage.Section{Content: plotpage.NewAlert("", "No pull request runs.", plotpage.BadgeInfo)})

		return page
	}

	headers := []string{"Pull request", "Title"}
	for _, browser := range r.cfg.Browsers {
		headers = append(headers, capitalize(browser))
	}

	table := plotpage.NewTable(headers...)

	for _, number := range numbers {
		record, _ := store.PullRequest(number)

		label := "#" + strconv.Itoa(number)
		numberCell := plotpage.Escape(label)

		if href := r.pullRequestURL(number); href != "" {
			numberCell = plotpage.Link(href, label)
		}

		row := []string{numberCell, plotpage.Escape(record.Title)}

		for _, browser := range r.cfg.Browsers {
			run, ok := record.Runs[browser]
			if !ok {
				row = append(row, "-")

				continue
			}

			row = append(row, plotpage.Link(PullRequestPath(browser, number), run.Date.UTC().Format(timeLayout)))
		}

		table.AddRow(row...)
	}

	page.Add(plotpage.Section{
		Title:    "Pull requests",
		Subtitle: strconv.Itoa(len(numbers)) + " with results",
		Content:  table,
	})

	return page
}
