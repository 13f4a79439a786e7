package dashboard

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

const percentScale = 100

// capitalize upper-cases the first letter of a browser name.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// percent returns share as a percentage rounded to two decimals.
func percent(share float64) float64 {
	return math.Round(share*percentScale*percentScale) / percentScale
}

func formatShare(c results.Counters) string {
	if c.Total() == 0 {
		return "-"
	}

	return fmt.Sprintf("%d/%d (%.1f%%)", c.Passing, c.Total(), c.PassingShare()*percentScale)
}

// mustString renders a component that only fails on a broken template.
func mustString(r plotpage.Renderable) string {
	out, err := plotpage.RenderString(r)
	if err != nil {
		panic("dashboard: " + err.Error())
	}

	return out
}

func badge(code results.Code) string {
	return mustString(plotpage.ResultBadge(code))
}

func intermittentBadge() string {
	return mustString(plotpage.NewBadge("intermittent").WithColor(plotpage.BadgeWarning))
}

// specCell renders a spec path with the configured labels of its suite.
func (r *Renderer) specCell(path string, intermittent bool) string {
	var b strings.Builder

	b.WriteString(plotpage.Escape(path))

	if intermittent {
		b.WriteString(" ")
		b.WriteString(intermittentBadge())
	}

	suite, _ := results.SplitPath(path)

	for _, label := range r.cfg.LabelsFor(suite) {
		b.WriteString(" ")
		b.WriteString(mustString(plotpage.NewBadge(label.Name).WithCustomColor(label.Color)))
	}

	return b.String()
}
