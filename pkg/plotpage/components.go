package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

const maxGridColumns = 4

// BadgeColor defines badge colors.
type BadgeColor string

// Badge color constants.
const (
	BadgeDefault BadgeColor = "default"
	BadgeSuccess BadgeColor = "success"
	BadgeWarning BadgeColor = "warning"
	BadgeError   BadgeColor = "error"
	BadgeInfo    BadgeColor = "info"
)

// writeHTML writes rendered component markup.
func writeHTML(w io.Writer, html template.HTML, what string) error {
	_, err := w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}

	return nil
}

// HTML is a Renderable that writes pre-rendered, trusted HTML.
type HTML template.HTML

// Render writes the raw HTML content.
func (h HTML) Render(w io.Writer) error {
	return writeHTML(w, template.HTML(h), "raw html")
}

// Link returns an escaped anchor element.
func Link(href, text string) string {
	return fmt.Sprintf(`<a class="hover:underline" href="%s">%s</a>`,
		template.HTMLEscapeString(href), template.HTMLEscapeString(text))
}

// Escape returns text escaped for use as a table cell.
func Escape(text string) string {
	return template.HTMLEscapeString(text)
}

// RenderString renders r into a string, for use inside table cells.
func RenderString(r Renderable) (string, error) {
	var buf bytes.Buffer

	err := r.Render(&buf)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Badge renders an inline tag. A badge with a custom color ignores Color.
type Badge struct {
	Text        string
	Color       BadgeColor
	CustomColor string
}

// NewBadge creates a new badge.
func NewBadge(text string) *Badge {
	return &Badge{Text: text, Color: BadgeDefault}
}

// WithColor sets the badge color.
func (b *Badge) WithColor(c BadgeColor) *Badge {
	b.Color = c

	return b
}

// WithCustomColor sets a CSS background color, used for configured labels.
// Colors the template's CSS filter rejects render as ZgotmplZ.
func (b *Badge) WithCustomColor(color string) *Badge {
	b.CustomColor = color

	return b
}

// Render writes the badge HTML.
func (b *Badge) Render(w io.Writer) error {
	data := badgeData{Text: b.Text, Classes: b.classes()}

	if b.CustomColor != "" {
		data.Classes = "text-white"
		data.Color = b.CustomColor
	}

	return writeHTML(w, mustRenderTemplate("badge.html", data), "badge")
}

func (b *Badge) classes() string {
	switch b.Color {
	case BadgeSuccess:
		return "bg-green-100 text-green-800 dark:bg-green-900 dark:text-green-200"
	case BadgeWarning:
		return "bg-yellow-100 text-yellow-800 dark:bg-yellow-900 dark:text-yellow-200"
	case BadgeError:
		return "bg-red-100 text-red-800 dark:bg-red-900 dark:text-red-200"
	case BadgeInfo:
		return "bg-blue-100 text-blue-800 dark:bg-blue-900 dark:text-blue-200"
	case BadgeDefault:
		return "bg-stone-100 text-stone-800 dark:bg-stone-800 dark:text-stone-200"
	default:
		return "bg-stone-100 text-stone-800 dark:bg-stone-800 dark:text-stone-200"
	}
}

// ResultBadge returns a badge colored by the outcome of code.
func ResultBadge(code results.Code) *Badge {
	badge := NewBadge(code.Label())

	switch code {
	case results.Passed:
		return badge.WithColor(BadgeSuccess)
	case results.Failed, results.TimedOut:
		return badge.WithColor(BadgeError)
	case results.Skipped:
		return badge.WithColor(BadgeWarning)
	default:
		return badge
	}
}

// Grid renders a responsive grid layout.
type Grid struct {
	Columns int
	Gap     string
	Items   []Renderable
}

// NewGrid creates a new grid layout.
func NewGrid(columns int, items ...Renderable) *Grid {
	columns = max(1, min(columns, maxGridColumns))

	return &Grid{Columns: columns, Gap: "gap-4", Items: items}
}

// Render writes the grid HTML.
func (g *Grid) Render(w io.Writer) error {
	colClass := map[int]string{
		1: "grid-cols-1",
		2: "grid-cols-1 md:grid-cols-2",
		3: "grid-cols-1 md:grid-cols-2 lg:grid-cols-3",
		4: "grid-cols-1 md:grid-cols-2 lg:grid-cols-4",
	}[g.Columns]

	items := make([]template.HTML, len(g.Items))

	for i, item := range g.Items {
		content, err := renderContent(item)
		if err != nil {
			return fmt.Errorf("rendering grid item %d: %w", i, err)
		}

		items[i] = content
	}

	return writeHTML(w, mustRenderTemplate("grid.html", gridData{
		ColClass: colClass,
		Gap:      g.Gap,
		Items:    items,
	}), "grid")
}

// Stat renders a statistic display.
type Stat struct {
	Label string
	Value string
	Href  string
	Trend string
	Color BadgeColor
}

// NewStat creates a new stat display.
func NewStat(label, value string) *Stat {
	return &Stat{Label: label, Value: value}
}

// WithTrend sets the trend line under the value.
func (s *Stat) WithTrend(trend string, color BadgeColor) *Stat {
	s.Trend = trend
	s.Color = color

	return s
}

// WithHref makes the value a link.
func (s *Stat) WithHref(href string) *Stat {
	s.Href = href

	return s
}

// Render writes the stat HTML.
func (s *Stat) Render(w io.Writer) error {
	trendClass := "text-stone-500"

	switch s.Color {
	case BadgeSuccess:
		trendClass = "text-green-600 dark:text-green-400"
	case BadgeError:
		trendClass = "text-red-600 dark:text-red-400"
	case BadgeWarning:
		trendClass = "text-yellow-600 dark:text-yellow-400"
	case BadgeDefault, BadgeInfo:
	}

	return writeHTML(w, mustRenderTemplate("stat.html", statData{
		Label:      s.Label,
		Value:      s.Value,
		Href:       s.Href,
		Trend:      s.Trend,
		TrendClass: trendClass,
	}), "stat")
}

// Alert renders a notification box.
type Alert struct {
	Title   string
	Message string
	Color   BadgeColor
}

// NewAlert creates a new alert.
func NewAlert(title, message string, color BadgeColor) *Alert {
	return &Alert{Title: title, Message: message, Color: color}
}

// Render writes the alert HTML.
func (a *Alert) Render(w io.Writer) error {
	data := alertData{Title: a.Title, Message: a.Message}

	switch a.Color {
	case BadgeSuccess:
		data.BgClass, data.BorderClass = "bg-green-50 dark:bg-green-950", "border-green-500"
		data.TextClass, data.TitleClass = "text-green-700 dark:text-green-300", "text-green-800 dark:text-green-200"
	case BadgeWarning:
		data.BgClass, data.BorderClass = "bg-yellow-50 dark:bg-yellow-950", "border-yellow-500"
		data.TextClass, data.TitleClass = "text-yellow-700 dark:text-yellow-300", "text-yellow-800 dark:text-yellow-200"
	case BadgeError:
		data.BgClass, data.BorderClass = "bg-red-50 dark:bg-red-950", "border-red-500"
		data.TextClass, data.TitleClass = "text-red-700 dark:text-red-300", "text-red-800 dark:text-red-200"
	case BadgeInfo:
		data.BgClass, data.BorderClass = "bg-blue-50 dark:bg-blue-950", "border-blue-500"
		data.TextClass, data.TitleClass = "text-blue-700 dark:text-blue-300", "text-blue-800 dark:text-blue-200"
	default:
		data.BgClass, data.BorderClass = "bg-stone-50 dark:bg-stone-900", "border-stone-500"
		data.TextClass, data.TitleClass = "text-stone-700 dark:text-stone-300", "text-stone-800 dark:text-stone-200"
	}

	return writeHTML(w, mustRenderTemplate("alert.html", data), "alert")
}

// Table renders an HTML table. Cells hold trusted HTML; escape text with
// Escape before adding it.
type Table struct {
	Headers []string
	Rows    [][]string
	Striped bool
}

// NewTable creates a new table.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, Striped: true}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)

	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Render writes the table HTML.
func (t *Table) Render(w io.Writer) error {
	htmlRows := make([][]template.HTML, len(t.Rows))
	for i, row := range t.Rows {
		htmlRows[i] = make([]template.HTML, len(row))
		for j, cell := range row {
			htmlRows[i][j] = template.HTML(cell)
		}
	}

	return writeHTML(w, mustRenderTemplate("table.html", tableData{
		Headers: t.Headers,
		Rows:    htmlRows,
		Striped: t.Striped,
	}), "table")
}

// ResultStrip renders one colored cell per day of a result series.
type ResultStrip struct {
	Theme Theme
	Cells []StripCell
}

// StripCell is one day of a ResultStrip.
type StripCell struct {
	Label string
	Code  results.Code
}

// NewResultStrip creates an empty strip.
func NewResultStrip(theme Theme) *ResultStrip {
	return &ResultStrip{Theme: theme}
}

// Add appends a day to the strip.
func (s *ResultStrip) Add(label string, code results.Code) *ResultStrip {
	s.Cells = append(s.Cells, StripCell{Label: label, Code: code})

	return s
}

// Render writes the strip HTML.
func (s *ResultStrip) Render(w io.Writer) error {
	theme := GetThemeConfig(s.Theme)
	cells := make([]stripCell, len(s.Cells))

	for i, cell := range s.Cells {
		cells[i] = stripCell{
			Title: cell.Label + ": " + cell.Code.Label(),
			Color: template.CSS(theme.ResultColor(cell.Code)),
		}
	}

	return writeHTML(w, mustRenderTemplate("strip.html", stripData{Cells: cells}), "strip")
}
