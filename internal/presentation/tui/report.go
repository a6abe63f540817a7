// Package tui renders assertion results for the terminal: a colored pass/fail
// list for interactive runs and a glamour-rendered markdown summary for the
// --markdown flag.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Result is one evaluated assertion.
type Result struct {
	Name    string
	Matcher string
	Err     error // nil when every criterion passed
}

// Passed reports whether the assertion held.
func (r Result) Passed() bool { return r.Err == nil }

// Summary counts passes and failures.
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Report renders a colored pass/fail listing. Colors degrade automatically on
// dumb terminals via termenv's profile detection.
func Report(results []Result) string {
	p := termenv.ColorProfile()
	ok := func(s string) string { return termenv.String(s).Foreground(p.Color("#22c55e")).String() }
	bad := func(s string) string { return termenv.String(s).Foreground(p.Color("#ef4444")).String() }
	dim := func(s string) string { return termenv.String(s).Faint().String() }

	var b strings.Builder
	for _, r := range results {
		if r.Passed() {
			fmt.Fprintf(&b, "%s %s %s\n", ok("✔"), r.Name, dim(r.Matcher))
		} else {
			fmt.Fprintf(&b, "%s %s %s\n    %s\n", bad("✘"), r.Name, dim(r.Matcher), bad(r.Err.Error()))
		}
	}

	passed, failed := Summary(results)
	if failed == 0 {
		fmt.Fprintf(&b, "\n%s\n", ok(fmt.Sprintf("%d passed", passed)))
	} else {
		fmt.Fprintf(&b, "\n%s, %s\n", fmt.Sprintf("%d passed", passed), bad(fmt.Sprintf("%d failed", failed)))
	}
	return b.String()
}

// MarkdownReport renders the results as a markdown document through glamour.
func MarkdownReport(results []Result) (string, error) {
	var md strings.Builder
	md.WriteString("# Span assertion report\n\n")
	md.WriteString("| | Assertion | Matcher | Detail |\n")
	md.WriteString("|---|---|---|---|\n")
	for _, r := range results {
		status, detail := "✔", ""
		if !r.Passed() {
			status, detail = "✘", r.Err.Error()
		}
		fmt.Fprintf(&md, "| %s | %s | `%s` | %s |\n", status, r.Name, r.Matcher, detail)
	}
	passed, failed := Summary(results)
	fmt.Fprintf(&md, "\n**%d passed, %d failed**\n", passed, failed)

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("init renderer: %w", err)
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}
