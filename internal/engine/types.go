package engine

import (
	"time"

	"github.com/dshills/skillscan/internal/skill"
)

// Finding is a single rule match at a location in the new side of a diff.
type Finding struct {
	RuleID   string         `json:"ruleId"`
	Message  string         `json:"message"`
	File     string         `json:"file,omitempty"`
	Line     int            `json:"line,omitempty"`
	Severity skill.Severity `json:"severity"`
	Snippet  string         `json:"snippet,omitempty"`
}

// Result is the outcome of running one skill against one diff.
type Result struct {
	SkillName     string        `json:"skillName"`
	Passed        bool          `json:"passed"`
	Findings      []Finding     `json:"findings"`
	ExecutionTime time.Duration `json:"executionTime"`
	// Triggered is false when no trigger matched and no rule ran.
	Triggered bool `json:"triggered"`
}
