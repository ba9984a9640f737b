// Package report renders relocation outcomes, rules and history for people.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"filesorter/internal/analysis"
	"filesorter/internal/history"
	"filesorter/internal/patterns/learning"
	"filesorter/pkg/types"

	"github.com/mattn/go-isatty"
)

// Summary tallies the outcomes of a run.
type Summary struct {
	Moved     int
	Unmatched int
	Failed    int
}

// Total returns the number of outcomes counted.
func (s Summary) Total() int {
	return s.Moved + s.Unmatched + s.Failed
}

// Add counts one outcome.
func (s *Summary) Add(o types.Outcome) {
	switch o.Kind {
	case types.OutcomeMoved:
		s.Moved++
	case types.OutcomeUnmatched:
		s.Unmatched++
	case types.OutcomeFailed:
		s.Failed++
	}
}

// Summarize counts outcomes by kind.
func Summarize(outcomes []types.Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		s.Add(o)
	}
	return s
}

// Printer writes report lines to w.
type Printer struct {
	w     io.Writer
	theme Theme
}

// NewPrinter styles its output only when w is a terminal and NO_COLOR is
// unset.
func NewPrinter(w io.Writer) *Printer {
	theme := PlainTheme
	if IsTerminal(w) && os.Getenv("NO_COLOR") == "" {
		theme = DefaultTheme
	}
	return &Printer{w: w, theme: theme}
}

// NewPlainPrinter never styles its output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, theme: PlainTheme}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Outcome prints one line for a relocation outcome.
func (p *Printer) Outcome(o types.Outcome) {
	t := p.theme
	switch o.Kind {
	case types.OutcomeMoved:
		fmt.Fprintf(p.w, "%s %s -> %s\n", t.Moved.Render("moved    "), o.Source, t.Path.Render(o.Destination))
	case types.OutcomeUnmatched:
		fmt.Fprintf(p.w, "%s %s\n", t.Unmatched.Render("skipped  "), t.Dim.Render(o.Source+" (no matching rule)"))
	case types.OutcomeFailed:
		cause := "unknown error"
		if o.Cause != nil {
			cause = o.Cause.Error()
		}
		fmt.Fprintf(p.w, "%s %s: %s\n", t.Failed.Render("failed   "), o.Source, cause)
	}
}

// Summary prints the tally line for a run.
func (p *Printer) Summary(s Summary) {
	fmt.Fprintf(p.w, "%s %d moved, %d skipped, %d failed\n",
		p.theme.Title.Render("Done:"), s.Moved, s.Unmatched, s.Failed)
}

// Fatal prints the diagnostic for a run aborted by a fatal error.
func (p *Printer) Fatal(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.theme.Failed.Render("Aborted:"), err)
}

// Planned prints one line of a dry run.
func (p *Printer) Planned(pl analysis.Planned) {
	t := p.theme
	switch pl.Verdict {
	case analysis.WouldMove:
		fmt.Fprintf(p.w, "%s %s -> %s\n", t.Moved.Render("would move"), pl.Source, t.Path.Render(pl.Destination))
	case analysis.WouldSkip:
		fmt.Fprintf(p.w, "%s %s\n", t.Unmatched.Render("would skip"), t.Dim.Render(pl.Source+" (no matching rule)"))
	default:
		cause := pl.Verdict.String()
		if pl.Cause != nil {
			cause = pl.Cause.Error()
		}
		fmt.Fprintf(p.w, "%s %s: %s\n", t.Failed.Render("would fail"), pl.Source, cause)
	}
}

// PlanSummary prints the tally line for a dry run.
func (p *Printer) PlanSummary(plan []analysis.Planned) {
	counts := analysis.Counts(plan)
	failing := len(plan) - counts[analysis.WouldMove] - counts[analysis.WouldSkip]
	fmt.Fprintf(p.w, "%s %d to move, %d to skip, %d would fail. Nothing was moved.\n",
		p.theme.Title.Render("Dry run:"), counts[analysis.WouldMove], counts[analysis.WouldSkip], failing)
}

// Rules prints rules in match order.
func (p *Printer) Rules(rules []types.SortRule) {
	if len(rules) == 0 {
		fmt.Fprintln(p.w, p.theme.Dim.Render("No rules configured; every file is left in place."))
		return
	}
	fmt.Fprintln(p.w, p.theme.Title.Render("Rules (first match wins):"))
	for i, r := range rules {
		line := fmt.Sprintf("%2d. %s", i+1, p.theme.Path.Render(r.Destination))
		if len(r.Extensions) > 0 {
			line += " <- " + strings.Join(r.Extensions, ", ")
		}
		if len(r.MimeTypes) > 0 {
			line += " " + p.theme.Dim.Render("["+strings.Join(r.MimeTypes, ", ")+"]")
		}
		fmt.Fprintln(p.w, line)
	}
}

// Runs prints journaled runs, newest first.
func (p *Printer) Runs(runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.w, p.theme.Dim.Render("No runs recorded."))
		return
	}
	for _, r := range runs {
		status := "finished"
		switch {
		case r.Aborted:
			status = p.theme.Failed.Render("aborted")
		case !r.Finished():
			status = p.theme.Dim.Render("incomplete")
		}
		fmt.Fprintf(p.w, "%s  %s  %d moved, %d skipped, %d failed  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			p.theme.Dim.Render(r.ID),
			r.Moved, r.Unmatched, r.Failed, status)
	}
}

// Entries prints the journaled outcomes of one run.
func (p *Printer) Entries(entries []history.Entry) {
	for _, e := range entries {
		switch e.Kind {
		case types.OutcomeMoved.String():
			fmt.Fprintf(p.w, "  %s %s -> %s\n", p.theme.Moved.Render("moved    "), e.Source, e.Destination)
		case types.OutcomeUnmatched.String():
			fmt.Fprintf(p.w, "  %s %s\n", p.theme.Unmatched.Render("skipped  "), e.Source)
		default:
			fmt.Fprintf(p.w, "  %s %s: %s\n", p.theme.Failed.Render("failed   "), e.Source, e.Cause)
		}
	}
}

// Suggestions prints proposed rules with the files that prompted them.
func (p *Printer) Suggestions(suggestions []learning.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(p.w, p.theme.Dim.Render("No suggestions; recent runs left no recurring unmatched files."))
		return
	}
	fmt.Fprintln(p.w, p.theme.Title.Render("Suggested rules:"))
	for _, sg := range suggestions {
		pat := sg.Pattern
		fmt.Fprintf(p.w, "  %s  %s\n",
			p.theme.Path.Render(sg.Rule.String()),
			p.theme.Dim.Render(fmt.Sprintf("%d files by %s, %.0f%% of unmatched", pat.Occurrences, pat.Type, pat.Confidence*100)))
		for _, ex := range pat.Examples {
			fmt.Fprintf(p.w, "      %s\n", p.theme.Dim.Render(ex))
		}
	}
}
