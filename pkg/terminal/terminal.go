// Package terminal formats result data for the command line: colored
// statuses, go-pretty tables and humanized counts and dates.
package terminal

import (
	"strings"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// Per-day symbols of a result strip.
const (
	symbolPassed   = "✓"
	symbolFailed   = "✗"
	symbolTimedOut = "⌛"
	symbolSkipped  = "-"
	symbolNone     = "·"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	timeColor = color.New(color.FgMagenta)
	skipColor = color.New(color.FgYellow)
	noneColor = color.New(color.Faint)
	headColor = color.New(color.Bold)
)

// SetColor forces colored output on or off.
func SetColor(enabled bool) {
	color.NoColor = !enabled //nolint:reassign // the library exposes its switch as a global.
}

func colorFor(code results.Code) *color.Color {
	switch code {
	case results.Passed:
		return passColor
	case results.Failed:
		return failColor
	case results.TimedOut:
		return timeColor
	case results.Skipped:
		return skipColor
	default:
		return noneColor
	}
}

// Status returns the colored label of code.
func Status(code results.Code) string {
	return colorFor(code).Sprint(code.Label())
}

// Symbol returns the colored one-character symbol of code.
func Symbol(code results.Code) string {
	var sym string

	switch code {
	case results.Passed:
		sym = symbolPassed
	case results.Failed:
		sym = symbolFailed
	case results.TimedOut:
		sym = symbolTimedOut
	case results.Skipped:
		sym = symbolSkipped
	default:
		sym = symbolNone
	}

	return colorFor(code).Sprint(sym)
}

// Strip joins the symbols of series.
func Strip(series []results.Code) string {
	var b strings.Builder

	for _, code := range series {
		b.WriteString(Symbol(code))
	}

	return b.String()
}
