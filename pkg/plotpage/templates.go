package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// funcMap provides template function helpers.
var funcMap = template.FuncMap{
	"odd": func(i int) bool {
		return i%2 == 1
	},
}

var loadTemplates = sync.OnceValues(func() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return tmpl, nil
})

// renderTemplate renders a named template with the given data.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return "", fmt.Errorf("loading templates: %w", err)
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil
}

// mustRenderTemplate renders a template, panicking on error.
// Use only when errors are not expected (e.g., embedded templates).
func mustRenderTemplate(name string, data any) template.HTML {
	html, err := renderTemplate(name, data)
	if err != nil {
		panic("plotpage: template error: " + err.Error())
	}

	return html
}

type pageData struct {
	Title       string
	Description string
	ProjectName string
	DarkClass   string
	Theme       ThemeConfig
	Header      template.HTML
	Content     template.HTML
}

type headerData struct {
	ProjectName string
	Subtitle    string
	Title       string
	Description string
	Nav         []NavLink
}

type sectionData struct {
	ID       string
	Title    string
	Subtitle string
	Content  template.HTML
	Hint     *hintData
}

type hintData struct {
	Title string
	Items []template.HTML
}

type badgeData struct {
	Text    string
	Classes string
	Color   string
}

type gridData struct {
	ColClass string
	Gap      string
	Items    []template.HTML
}

type statData struct {
	Label      string
	Value      string
	Href       string
	Trend      string
	TrendClass string
}

type alertData struct {
	Title       string
	Message     string
	BgClass     string
	BorderClass string
	TitleClass  string
	TextClass   string
}

type tableData struct {
	Headers []string
	Rows    [][]template.HTML
	Striped bool
}

type stripData struct {
	Cells []stripCell
}

type stripCell struct {
	Title string
	Color template.CSS
}
