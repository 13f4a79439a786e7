// Package plotpage renders static HTML pages made of sections, components
// and go-echarts charts.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const (
	styleTagLen        = 8 // len("</style>").
	defaultProjectName = "bidiboard"
)

// Style defines chart dimensions.
type Style struct {
	Width  string
	Height string
}

// DefaultStyle returns the default chart style.
func DefaultStyle() Style {
	return Style{
		Width:  "100%",
		Height: "420px",
	}
}

// Hint contains interpretive guidance for a section.
type Hint struct {
	Title string
	Items []string
}

// Section is one block of a page.
type Section struct {
	ID       string
	Title    string
	Subtitle string
	Hint     Hint
	Content  Renderable
}

// NavLink is an entry of the page header navigation. A link without Href is
// shown as disabled text.
type NavLink struct {
	Label string
	Href  string
}

// Page represents a complete HTML page.
type Page struct {
	Title           string
	Description     string
	ProjectName     string
	ProjectSubtitle string
	Theme           Theme
	Nav             []NavLink
	Sections        []Section
}

// NewPage creates a new page.
func NewPage(title, description string) *Page {
	return &Page{
		Title:       title,
		Description: description,
		ProjectName: defaultProjectName,
		Theme:       ThemeLight,
	}
}

// WithNav sets the header navigation links.
func (p *Page) WithNav(links ...NavLink) *Page {
	p.Nav = links

	return p
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, p)
}

// Renderable is the interface for page components.
type Renderable interface {
	Render(w io.Writer) error
}

// HTMLRenderer renders pages as HTML.
type HTMLRenderer struct{}

// Render writes the page as HTML to the writer.
func (r HTMLRenderer) Render(w io.Writer, page *Page) error {
	header, err := renderTemplate("header.html", headerData{
		ProjectName: page.ProjectName,
		Subtitle:    page.ProjectSubtitle,
		Title:       page.Title,
		Description: page.Description,
		Nav:         page.Nav,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	var sectionsHTML bytes.Buffer

	for _, section := range page.Sections {
		sectionHTML, sectionErr := r.renderSection(section)
		if sectionErr != nil {
			return fmt.Errorf("render section %q: %w", section.Title, sectionErr)
		}

		sectionsHTML.WriteString(string(sectionHTML))
	}

	darkClass := ""
	if page.Theme == ThemeDark {
		darkClass = "dark"
	}

	html, err := renderTemplate("page.html", pageData{
		Title:       page.Title,
		Description: page.Description,
		ProjectName: page.ProjectName,
		DarkClass:   darkClass,
		Theme:       GetThemeConfig(page.Theme),
		Header:      header,
		Content:     template.HTML(sectionsHTML.String()),
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = w.Write([]byte(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func (r HTMLRenderer) renderSection(section Section) (template.HTML, error) {
	content, err := renderContent(section.Content)
	if err != nil {
		return "", err
	}

	var hint *hintData

	if len(section.Hint.Items) > 0 {
		items := make([]template.HTML, len(section.Hint.Items))

		for i, item := range section.Hint.Items {
			items[i] = template.HTML(template.HTMLEscapeString(item))
		}

		hint = &hintData{
			Title: section.Hint.Title,
			Items: items,
		}
	}

	return renderTemplate("section.html", sectionData{
		ID:       section.ID,
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Content:  content,
		Hint:     hint,
	})
}

func renderContent(content Renderable) (template.HTML, error) {
	if content == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := content.Render(&buf)
	if err != nil {
		return "", err
	}

	return template.HTML(extractChartContent(buf.String())), nil
}

// ChartWrapper wraps an echarts chart and renders only the chart content.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps an echarts chart to render only the div and script (no full HTML page).
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	if cw.chart == nil {
		return nil
	}

	var buf bytes.Buffer

	err := cw.chart.Render(&buf)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	_, err = w.Write([]byte(extractChartContent(buf.String())))
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

// extractChartContent strips the page around go-echarts output, keeping the
// chart container and its init script. Component fragments pass through.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			break
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			break
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}

	return content
}
