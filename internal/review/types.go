package review

import (
	"github.com/dshills/skillscan/internal/engine"
	"github.com/dshills/skillscan/internal/skill"
)

// Finding is an engine finding attributed to the skill that produced it.
type Finding struct {
	ID       string         `json:"id"`
	Skill    string         `json:"skill"`
	RuleID   string         `json:"ruleId"`
	Severity skill.Severity `json:"severity"`
	Message  string         `json:"message"`
	Path     string         `json:"path,omitempty"`
	Line     int            `json:"line,omitempty"`
	Snippet  string         `json:"snippet,omitempty"`
}

// RepoInfo contains repository metadata.
type RepoInfo struct {
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// InputInfo describes what was scanned.
type InputInfo struct {
	Mode      string   `json:"mode"`
	Range     string   `json:"range,omitempty"`
	Files     []string `json:"files"`
	Skills    []string `json:"skills"`
	Truncated bool     `json:"truncated,omitempty"`
	Omitted   int      `json:"omitted,omitempty"`
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// DiffStats summarizes the parsed diff.
type DiffStats struct {
	Files     int `json:"files"`
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Summary provides an overview of findings.
type Summary struct {
	Counts          SeverityCounts `json:"counts"`
	HighestSeverity skill.Severity `json:"highestSeverity,omitempty"`
	SkillsRun       int            `json:"skillsRun"`
	SkillsTriggered int            `json:"skillsTriggered"`
	SkillsPassed    int            `json:"skillsPassed"`
	Diff            DiffStats      `json:"diff"`
}

// Timing contains performance metrics.
type Timing struct {
	ParseMs  int64 `json:"parseMs"`
	LoadMs   int64 `json:"loadMs"`
	EngineMs int64 `json:"engineMs"`
	TotalMs  int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string          `json:"tool"`
	Version  string          `json:"version"`
	RunID    string          `json:"runId"`
	Repo     RepoInfo        `json:"repo"`
	Inputs   InputInfo       `json:"inputs"`
	Summary  Summary         `json:"summary"`
	Results  []engine.Result `json:"results"`
	Findings []Finding       `json:"findings"`
	Hints    string          `json:"hints,omitempty"`
	Cached   bool            `json:"cached,omitempty"`
	Timing   Timing          `json:"timing"`
}

// ComputeSummary calculates severity counts and skill tallies from results.
// Diff stats are filled in by the caller.
func ComputeSummary(results []engine.Result) Summary {
	var s Summary
	for _, r := range results {
		s.SkillsRun++
		if r.Triggered {
			s.SkillsTriggered++
		}
		if r.Passed {
			s.SkillsPassed++
		}
		for _, f := range r.Findings {
			switch f.Severity {
			case skill.SeverityCritical:
				s.Counts.Critical++
			case skill.SeverityWarning:
				s.Counts.Warning++
			case skill.SeverityInfo:
				s.Counts.Info++
			}
			if skill.SeverityRank(f.Severity) > skill.SeverityRank(s.HighestSeverity) {
				s.HighestSeverity = f.Severity
			}
		}
	}
	return s
}

// Total returns the number of findings across all severities.
func (c SeverityCounts) Total() int {
	return c.Critical + c.Warning + c.Info
}

// FailsThreshold reports whether any finding is at or above failOn.
func (r *Report) FailsThreshold(failOn string) bool {
	for _, f := range r.Findings {
		if skill.MeetsThreshold(f.Severity, failOn) {
			return true
		}
	}
	return false
}
