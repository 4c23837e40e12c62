package skill

import (
	"errors"
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() Definition {
	return Definition{
		Name:        "test-skill",
		Version:     "1.0.0",
		Description: "test",
		Triggers:    []Trigger{{FileExtension: []string{".go"}}},
		Rules: []Rule{
			{ID: "no-todo", Severity: SeverityInfo, Pattern: `TODO:`, Message: "todo"},
			{ID: "judge", Severity: SeverityWarning, Check: "Is this readable?", Message: "readability"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validDefinition()))
}

func TestValidate_MissingTriggers(t *testing.T) {
	def := validDefinition()
	def.Triggers = nil
	err := Validate(def)
	assert.ErrorIs(t, err, ErrMissingTriggers)
}

func TestValidate_DuplicateRuleID(t *testing.T) {
	def := validDefinition()
	def.Rules = append(def.Rules,
		Rule{ID: "other", Severity: SeverityInfo, Message: "x"},
		Rule{ID: "no-todo", Severity: SeverityInfo, Pattern: `FIXME`, Message: "dup"},
		Rule{ID: "other", Severity: SeverityInfo, Message: "dup2"},
	)
	err := Validate(def)

	var dupErr *DuplicateRuleIDError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "no-todo", dupErr.ID)
}

func TestValidate_InvalidRegex(t *testing.T) {
	def := validDefinition()
	def.Rules[0].Pattern = `([unclosed`
	err := Validate(def)

	var reErr *InvalidRegexError
	require.ErrorAs(t, err, &reErr)
	assert.Equal(t, `([unclosed`, reErr.Pattern)

	var synErr *syntax.Error
	assert.True(t, errors.As(err, &synErr), "should unwrap to regexp/syntax error")
}

func TestValidate_RejectsBacktrackingOnlySyntax(t *testing.T) {
	def := validDefinition()
	def.Rules[0].Pattern = `foo(?=bar)`
	var reErr *InvalidRegexError
	assert.ErrorAs(t, Validate(def), &reErr)
}

func TestValidate_CheckOrder(t *testing.T) {
	// Missing triggers wins over a duplicate id and a bad pattern.
	def := validDefinition()
	def.Triggers = nil
	def.Rules = []Rule{
		{ID: "a", Severity: SeverityInfo, Pattern: "(", Message: "x"},
		{ID: "a", Severity: SeverityInfo, Message: "x"},
	}
	assert.ErrorIs(t, Validate(def), ErrMissingTriggers)

	// Duplicate id wins over a bad pattern.
	def.Triggers = []Trigger{{PathContains: []string{"src/"}}}
	var dupErr *DuplicateRuleIDError
	assert.ErrorAs(t, Validate(def), &dupErr)
}

func TestValidate_MissingName(t *testing.T) {
	def := validDefinition()
	def.Name = ""
	assert.ErrorIs(t, Validate(def), ErrMissingName)
}

func TestValidate_InvalidSeverity(t *testing.T) {
	def := validDefinition()
	def.Rules[1].Severity = "high"
	var sevErr *InvalidSeverityError
	require.ErrorAs(t, Validate(def), &sevErr)
	assert.Equal(t, "judge", sevErr.RuleID)
}

func TestValidate_NoRules(t *testing.T) {
	def := validDefinition()
	def.Rules = nil
	assert.NoError(t, Validate(def))
}
