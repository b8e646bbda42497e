// Package renderer renders the daily report as markdown, and markdown for
// the terminal or as HTML.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"iter"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/etfwatch"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"usd":          usd,
	"signedUSD":    signedUSD,
	"pct":          pct,
	"change":       change,
	"distribution": distribution,
	"narrative":    narrative,
	"breach":       breach,
}).ParseFS(templatesFS, "templates/*.md"))

// fund is the data of a fund section.
type fund struct {
	*etfwatch.FundResult
	Count      int // number of holdings
	Highlights []etfwatch.Highlight
}

// renderTemplate executes a template to a string. Rendering errors are
// reported inline, the report is still useful without one section.
func renderTemplate(name string, data any) string {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v\n", name, err)
	}
	return b.String()
}

// Sections renders the report one section at a time, in order: totals,
// structural changes, triggers, then one section per fund. Callers can
// write each section as soon as it is produced.
func Sections(r *etfwatch.Report) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(renderTemplate("totals.md", r)) {
			return
		}
		if !yield(renderTemplate("changes.md", r)) {
			return
		}
		if !yield(renderTemplate("triggers.md", r.Thresholds)) {
			return
		}
		for _, f := range r.Funds {
			if !yield(FundSection(f, r.Thresholds)) {
				return
			}
		}
	}
}

// FundSection renders the section of a single fund: its total, its
// distribution, and its flagged holdings.
func FundSection(f *etfwatch.FundResult, t etfwatch.Thresholds) string {
	data := fund{FundResult: f, Count: len(f.Deltas)}
	if f.OK() {
		data.Highlights = f.Highlights(t)
	}
	return renderTemplate("fund.md", data)
}

// Markdown renders the whole report.
func Markdown(r *etfwatch.Report) string {
	var b strings.Builder
	for section := range Sections(r) {
		b.WriteString(section)
		b.WriteString("\n")
	}
	return b.String()
}

// Terminal renders markdown for display in a terminal.
func Terminal(md string) (string, error) {
	tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return "", fmt.Errorf("cannot create terminal renderer: %w", err)
	}
	return tr.Render(md)
}

// HTML converts markdown to an HTML fragment.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
