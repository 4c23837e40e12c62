package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/skillscan/internal/engine"
	"github.com/dshills/skillscan/internal/review"
	"github.com/dshills/skillscan/internal/skill"
)

func sampleReport() *review.Report {
	findings := []review.Finding{
		{ID: "f1", Skill: "best-practices", RuleID: "no-todo", Severity: skill.SeverityInfo, Message: "Found a TODO.", Path: "b.go", Line: 9, Snippet: "// TODO: later"},
		{ID: "f2", Skill: "security-patterns", RuleID: "hardcoded-secret", Severity: skill.SeverityCritical, Message: "Hardcoded secret.", Path: "a.go", Line: 3, Snippet: "[REDACTED]"},
		{ID: "f3", Skill: "best-practices", RuleID: "no-todo", Severity: skill.SeverityInfo, Message: "Found a TODO.", Path: "a.go", Line: 12},
	}
	results := []engine.Result{
		{SkillName: "security-patterns", Triggered: true, Findings: []engine.Finding{{RuleID: "hardcoded-secret", Severity: skill.SeverityCritical}}},
		{SkillName: "best-practices", Triggered: true, Findings: []engine.Finding{{RuleID: "no-todo", Severity: skill.SeverityInfo}, {RuleID: "no-todo", Severity: skill.SeverityInfo}}},
		{SkillName: "python", Passed: true, Findings: []engine.Finding{}},
	}
	return &review.Report{
		Tool:     "skillscan",
		Version:  "test",
		Inputs:   review.InputInfo{Mode: "staged"},
		Summary:  review.ComputeSummary(results),
		Results:  results,
		Findings: findings,
		Hints:    "# Review hints\n## Skill: security-patterns\n",
	}
}

func emptyReport() *review.Report {
	return &review.Report{
		Tool:     "skillscan",
		Version:  "test",
		Inputs:   review.InputInfo{Mode: "unstaged"},
		Results:  []engine.Result{},
		Findings: []review.Finding{},
	}
}

func TestGetWriter(t *testing.T) {
	for _, f := range Formats {
		_, err := GetWriter(f)
		assert.NoError(t, err, f)
	}
	_, err := GetWriter("xml")
	assert.Error(t, err)
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "skillscan: staged mode")
	assert.Contains(t, out, "Findings: 3 total (1 critical, 0 warning, 2 info)")
	assert.Contains(t, out, "Skills: 3 run, 2 triggered, 1 passed")
	assert.Contains(t, out, "a.go:3  security-patterns/hardcoded-secret")
	assert.Contains(t, out, "> // TODO: later")

	// Critical section comes first; info findings are sorted by path.
	crit := strings.Index(out, "CRITICAL")
	info := strings.Index(out, "INFO")
	require.True(t, crit >= 0 && info >= 0)
	assert.Less(t, crit, info)
	assert.Less(t, strings.Index(out, "a.go:12"), strings.Index(out, "b.go:9"))
}

func TestTextWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, emptyReport()))
	assert.Contains(t, buf.String(), "No issues found.")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, sampleReport()))

	var decoded review.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "skillscan", decoded.Tool)
	assert.Len(t, decoded.Findings, 3)
	assert.Len(t, decoded.Results, 3)
	assert.Equal(t, 1, decoded.Summary.Counts.Critical)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	results := raw["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "security-patterns", first["skillName"])
	assert.Contains(t, first, "executionTime")
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "| Critical | 1    |")
	assert.Contains(t, out, "| python | :heavy_minus_sign: not applicable | 0 |")
	assert.Contains(t, out, "| best-practices | :x: failed | 2 |")
	assert.Contains(t, out, "<summary>:red_circle: CRITICAL (1)</summary>")
	assert.Contains(t, out, "### `security-patterns/hardcoded-secret`")
	assert.Contains(t, out, "```go\n// TODO: later\n```")
}

func TestMarkdownWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, emptyReport()))
	assert.Contains(t, buf.String(), "No issues found.")
}

func TestSARIFWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&SARIFWriter{}).Write(&buf, sampleReport()))

	var sarif sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &sarif))
	assert.Equal(t, "2.1.0", sarif.Version)
	require.Len(t, sarif.Runs, 1)
	run := sarif.Runs[0]
	assert.Equal(t, "skillscan", run.Tool.Driver.Name)

	// Rules are deduplicated by skill/rule id in first-seen order.
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "best-practices/no-todo", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "security-patterns/hardcoded-secret", run.Tool.Driver.Rules[1].ID)

	require.Len(t, run.Results, 3)
	crit := run.Results[1]
	assert.Equal(t, "error", crit.Level)
	require.Len(t, crit.Locations, 1)
	assert.Equal(t, "a.go", crit.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 3, crit.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "note", run.Results[0].Level)
}

func TestSARIFWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&SARIFWriter{}).Write(&buf, emptyReport()))
	var sarif sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &sarif))
	assert.Empty(t, sarif.Runs[0].Results)
}

func TestHintsWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&HintsWriter{}).Write(&buf, sampleReport()))
	assert.Equal(t, "# Review hints\n## Skill: security-patterns\n", buf.String())

	buf.Reset()
	require.NoError(t, (&HintsWriter{}).Write(&buf, emptyReport()))
	assert.Empty(t, buf.String())
}

func TestWriteReport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(sampleReport(), "json", path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestWriteReport_Stdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(emptyReport(), "text", "", &buf))
	assert.NotEmpty(t, buf.String())
	assert.Error(t, WriteReport(emptyReport(), "bogus", "", &buf))
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 20)
	}
	assert.Equal(t, []string{"short"}, wrapText("short", 20))
}
