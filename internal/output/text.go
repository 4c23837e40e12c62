package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/skillscan/internal/review"
	"github.com/dshills/skillscan/internal/skill"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	counts := report.Summary.Counts
	total := counts.Total()

	ew.printf("skillscan: %s mode\n", report.Inputs.Mode)
	if report.Inputs.Range != "" {
		ew.printf("Range: %s\n", report.Inputs.Range)
	}
	if report.Repo.Root != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	d := report.Summary.Diff
	ew.printf("Diff: %d file(s), +%d -%d\n", d.Files, d.Additions, d.Deletions)
	if report.Inputs.Truncated {
		ew.printf("Warning: diff truncated, %d file(s) omitted\n", report.Inputs.Omitted)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Skills: %d run, %d triggered, %d passed\n",
		report.Summary.SkillsRun, report.Summary.SkillsTriggered, report.Summary.SkillsPassed)
	ew.printf("Findings: %d total", total)
	if total > 0 {
		ew.printf(" (%d critical, %d warning, %d info)", counts.Critical, counts.Warning, counts.Info)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if total == 0 {
		ew.println("\nNo issues found.")
		return ew.err
	}

	grouped := groupBySeverity(report.Findings)
	for _, sev := range severityOrder {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		ew.printf("\n%s %s\n", severityIcon(sev), strings.ToUpper(string(sev)))
		ew.println(strings.Repeat("─", 40))

		for _, f := range findings {
			ew.printf("\n  %s  %s/%s\n", location(f), f.Skill, f.RuleID)
			for _, line := range wrapText(f.Message, 70) {
				ew.printf("    %s\n", line)
			}
			if f.Snippet != "" {
				ew.printf("    > %s\n", f.Snippet)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	cached := ""
	if report.Cached {
		cached = ", cached"
	}
	ew.printf("Completed in %dms (parse: %dms, load: %dms, engine: %dms%s)\n",
		report.Timing.TotalMs, report.Timing.ParseMs, report.Timing.LoadMs, report.Timing.EngineMs, cached)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func severityIcon(s skill.Severity) string {
	switch s {
	case skill.SeverityCritical:
		return "[!!]"
	case skill.SeverityWarning:
		return "[!]"
	case skill.SeverityInfo:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
