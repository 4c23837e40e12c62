package output

import (
	"io"
	"strings"

	"github.com/dshills/skillscan/internal/diff"
	"github.com/dshills/skillscan/internal/review"
	"github.com/dshills/skillscan/internal/skill"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	counts := report.Summary.Counts
	total := counts.Total()

	ew.printf("## skillscan\n\n")

	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	ew.printf("| Critical | %d    |\n", counts.Critical)
	ew.printf("| Warning  | %d    |\n", counts.Warning)
	ew.printf("| Info     | %d    |\n", counts.Info)
	ew.printf("| **Total** | **%d** |\n\n", total)

	if len(report.Results) > 0 {
		ew.printf("| Skill | Result | Findings |\n")
		ew.printf("|-------|--------|----------|\n")
		for _, r := range report.Results {
			status := ":white_check_mark: passed"
			switch {
			case !r.Triggered:
				status = ":heavy_minus_sign: not applicable"
			case !r.Passed:
				status = ":x: failed"
			}
			ew.printf("| %s | %s | %d |\n", r.SkillName, status, len(r.Findings))
		}
		ew.printf("\n")
	}

	if total == 0 {
		ew.println("No issues found. :white_check_mark:")
		return ew.err
	}

	grouped := groupBySeverity(report.Findings)
	for _, sev := range severityOrder {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		ew.printf("<details>\n<summary>%s %s (%d)</summary>\n\n",
			mdSeverityIcon(sev), strings.ToUpper(string(sev)), len(findings))

		for _, f := range findings {
			ew.printf("### `%s/%s`\n\n", f.Skill, f.RuleID)
			ew.printf("**`%s`**\n\n", location(f))
			ew.printf("%s\n\n", f.Message)
			if f.Snippet != "" {
				ew.printf("```%s\n%s\n```\n\n", fenceLang(f.Path), f.Snippet)
			}
			ew.printf("---\n\n")
		}

		ew.printf("</details>\n\n")
	}

	ew.printf("*Scanned in %dms*\n", report.Timing.TotalMs)
	return ew.err
}

func mdSeverityIcon(s skill.Severity) string {
	switch s {
	case skill.SeverityCritical:
		return ":red_circle:"
	case skill.SeverityWarning:
		return ":orange_circle:"
	case skill.SeverityInfo:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

// fenceLang returns the code fence info string for path, or "" when the
// language is unknown.
func fenceLang(path string) string {
	lang := diff.DetectLanguage(path)
	switch lang {
	case "":
		return ""
	case "C++":
		return "cpp"
	case "C#":
		return "csharp"
	case "Shell":
		return "bash"
	case "Terraform":
		return "hcl"
	}
	return strings.ToLower(lang)
}
