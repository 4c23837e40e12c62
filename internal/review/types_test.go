package review

import (
	"testing"

	"github.com/dshills/skillscan/internal/engine"
	"github.com/dshills/skillscan/internal/skill"
)

func TestComputeSummary(t *testing.T) {
	results := []engine.Result{
		{SkillName: "a", Triggered: true, Findings: []engine.Finding{
			{Severity: skill.SeverityInfo},
			{Severity: skill.SeverityWarning},
		}},
		{SkillName: "b", Triggered: true, Findings: []engine.Finding{
			{Severity: skill.SeverityCritical},
			{Severity: skill.SeverityInfo},
		}},
		{SkillName: "c", Passed: true},
	}
	s := ComputeSummary(results)
	if s.Counts.Info != 2 || s.Counts.Warning != 1 || s.Counts.Critical != 1 {
		t.Errorf("Counts = %+v", s.Counts)
	}
	if s.Counts.Total() != 4 {
		t.Errorf("Total = %d, want 4", s.Counts.Total())
	}
	if s.HighestSeverity != skill.SeverityCritical {
		t.Errorf("HighestSeverity = %q, want critical", s.HighestSeverity)
	}
	if s.SkillsRun != 3 || s.SkillsTriggered != 2 || s.SkillsPassed != 1 {
		t.Errorf("skill tallies = %d/%d/%d", s.SkillsRun, s.SkillsTriggered, s.SkillsPassed)
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(nil)
	if s.Counts.Total() != 0 || s.HighestSeverity != "" {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestFailsThreshold(t *testing.T) {
	r := &Report{Findings: []Finding{{Severity: skill.SeverityWarning}}}
	tests := []struct {
		failOn string
		want   bool
	}{
		{"none", false},
		{"critical", false},
		{"warning", true},
		{"info", true},
	}
	for _, tt := range tests {
		if got := r.FailsThreshold(tt.failOn); got != tt.want {
			t.Errorf("FailsThreshold(%q) = %v, want %v", tt.failOn, got, tt.want)
		}
	}
}
