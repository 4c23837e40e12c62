package skill

// Severity is the level attached to a rule and to every finding it emits.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return SeverityRank(s) > 0
}

// Definition is a named rule-set as written in a skill YAML file.
type Definition struct {
	Name        string    `yaml:"name" json:"name"`
	Version     string    `yaml:"version" json:"version"`
	Description string    `yaml:"description" json:"description"`
	Triggers    []Trigger `yaml:"triggers" json:"triggers"`
	Rules       []Rule    `yaml:"rules" json:"rules"`
	Prompts     *Prompts  `yaml:"prompts,omitempty" json:"prompts,omitempty"`
}

// Trigger decides whether a skill applies to a diff. A trigger matches when
// any configured extension or path substring matches any file.
type Trigger struct {
	FileExtension []string `yaml:"file_extension,omitempty" json:"fileExtension,omitempty"`
	PathContains  []string `yaml:"path_contains,omitempty" json:"pathContains,omitempty"`
}

// Rule is one check within a skill. Pattern rules run locally; Check holds
// natural-language guidance for a model-based reviewer and is never
// evaluated here.
type Rule struct {
	ID       string   `yaml:"id" json:"id"`
	Severity Severity `yaml:"severity" json:"severity"`
	Pattern  string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Check    string   `yaml:"check,omitempty" json:"check,omitempty"`
	Message  string   `yaml:"message" json:"message"`
}

// HasPattern reports whether the rule carries a regular expression.
func (r Rule) HasPattern() bool {
	return r.Pattern != ""
}

// Prompts holds free-text context passed along to the downstream reviewer.
type Prompts struct {
	AdditionalContext string `yaml:"additional_context,omitempty" json:"additionalContext,omitempty"`
}

// Loaded pairs a validated definition with the file it came from.
type Loaded struct {
	Definition Definition `json:"definition"`
	Path       string     `json:"path"`
}

// Name returns the skill identifier used for selection.
func (l Loaded) Name() string {
	return l.Definition.Name
}
