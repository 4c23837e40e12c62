package review

import (
	"fmt"
	"strings"

	"github.com/dshills/skillscan/internal/engine"
	"github.com/dshills/skillscan/internal/skill"
)

// BuildPromptHints renders the context a model-based reviewer should see
// for this diff: each triggered skill's additional context, its
// natural-language checks, and the pattern findings it produced. Skills
// that did not trigger are left out. Returns "" when nothing triggered.
func BuildPromptHints(skills []skill.Loaded, results []engine.Result) string {
	byName := make(map[string]skill.Definition, len(skills))
	for _, s := range skills {
		byName[s.Name()] = s.Definition
	}

	var b strings.Builder
	for _, r := range results {
		if !r.Triggered {
			continue
		}
		def, ok := byName[r.SkillName]
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "\n## Skill: %s\n", def.Name)
		if def.Description != "" {
			fmt.Fprintf(&b, "%s\n", def.Description)
		}
		if def.Prompts != nil && strings.TrimSpace(def.Prompts.AdditionalContext) != "" {
			fmt.Fprintf(&b, "\nContext: %s\n", strings.TrimSpace(def.Prompts.AdditionalContext))
		}

		if checks := checkRules(def); len(checks) > 0 {
			b.WriteString("\nChecks (evaluate these against the diff):\n")
			for _, rule := range checks {
				fmt.Fprintf(&b, "- [%s, %s] %s\n", rule.ID, rule.Severity, strings.TrimSpace(rule.Check))
			}
		}

		if len(r.Findings) > 0 {
			b.WriteString("\nPattern findings:\n")
			for _, f := range r.Findings {
				fmt.Fprintf(&b, "- %s:%d [%s] %s: %s\n", f.File, f.Line, f.Severity, f.RuleID, f.Message)
			}
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return "# Review hints" + b.String()
}

func checkRules(def skill.Definition) []skill.Rule {
	var out []skill.Rule
	for _, r := range def.Rules {
		if strings.TrimSpace(r.Check) != "" {
			out = append(out, r)
		}
	}
	return out
}
