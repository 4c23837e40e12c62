package skill

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMissingTriggers is returned for a skill with no triggers.
var ErrMissingTriggers = errors.New("skill has no triggers")

// ErrMissingName is returned for a skill with an empty name.
var ErrMissingName = errors.New("skill has no name")

// DuplicateRuleIDError names the first rule id that appears twice.
type DuplicateRuleIDError struct {
	ID string
}

func (e *DuplicateRuleIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.ID)
}

// InvalidRegexError reports a rule pattern that does not compile.
type InvalidRegexError struct {
	Pattern string
	Err     error
}

func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidRegexError) Unwrap() error {
	return e.Err
}

// InvalidSeverityError reports a rule whose severity is not critical,
// warning or info.
type InvalidSeverityError struct {
	RuleID   string
	Severity Severity
}

func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("rule %q: unknown severity %q", e.RuleID, e.Severity)
}

// Validate checks a definition before it is trusted. Checks run in a fixed
// order and the first failure is returned: triggers, rule id uniqueness,
// pattern syntax, then name and severities.
func Validate(def Definition) error {
	if len(def.Triggers) == 0 {
		return ErrMissingTriggers
	}

	seen := make(map[string]bool, len(def.Rules))
	for _, r := range def.Rules {
		if seen[r.ID] {
			return &DuplicateRuleIDError{ID: r.ID}
		}
		seen[r.ID] = true
	}

	for _, r := range def.Rules {
		if !r.HasPattern() {
			continue
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return &InvalidRegexError{Pattern: r.Pattern, Err: err}
		}
	}

	if def.Name == "" {
		return ErrMissingName
	}
	for _, r := range def.Rules {
		if !r.Severity.Valid() {
			return &InvalidSeverityError{RuleID: r.ID, Severity: r.Severity}
		}
	}
	return nil
}
