package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/plutolang/pluto/internal/ast"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	phaseLabel = color.New(color.FgCyan).SprintFunc()
	codeLabel  = color.New(color.FgYellow).SprintFunc()
	spanLabel  = color.New(color.Faint).SprintFunc()
	fixLabel   = color.New(color.FgGreen).SprintFunc()
)

// RenderText writes one human-readable, colorized line per report to
// w, in the style of a compiler's terminal diagnostic output: a bold
// red "error" label, the phase and code, the source span, the
// message, and — when present — a suggested fix on a trailing line.
// Color is emitted unconditionally; callers that write to a
// non-terminal (a log file, a CI pipe) should toggle
// color.NoColor = true beforehand, the same switch fatih/color itself
// exposes.
func RenderText(w io.Writer, reports []*Report) {
	for _, r := range reports {
		fmt.Fprintf(w, "%s[%s:%s] %s", errorLabel("error"), phaseLabel(r.Phase), codeLabel(r.Code), r.Message)
		if r.Span != nil {
			fmt.Fprintf(w, " %s", spanLabel(formatSpan(r.Span)))
		}
		fmt.Fprintln(w)
		if r.SecondarySpan != nil {
			fmt.Fprintf(w, "  %s %s\n", spanLabel("previously at"), spanLabel(formatSpan(r.SecondarySpan)))
		}
		if r.Fix != nil {
			fmt.Fprintf(w, "  %s %s (%.0f%% confidence)\n", fixLabel("fix:"), r.Fix.Suggestion, r.Fix.Confidence*100)
		}
	}
}

func formatSpan(s *ast.Span) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", s.Start.File, s.Start.Line, s.Start.Column)
}

// RenderSummary writes a one-line count, colorized red when non-zero,
// matching the teacher's own pass/fail summary line convention.
func RenderSummary(w io.Writer, reports []*Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, color.New(color.FgGreen).Sprint("ok"))
		return
	}
	plural := "s"
	if len(reports) == 1 {
		plural = ""
	}
	fmt.Fprintln(w, errorLabel(fmt.Sprintf("%d error%s", len(reports), plural)))
}
