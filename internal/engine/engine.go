package engine

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/skillscan/internal/diff"
	"github.com/dshills/skillscan/internal/skill"
)

// defaultConcurrency limits the number of skills executed in parallel.
const defaultConcurrency = 4

// SkillSource supplies the skills an Engine can select from.
type SkillSource interface {
	LoadSkills() []skill.Loaded
}

// StaticSource serves a fixed set of skills.
type StaticSource []skill.Loaded

// LoadSkills returns the skills in s.
func (s StaticSource) LoadSkills() []skill.Loaded {
	return s
}

// Options controls how an Engine executes skills.
type Options struct {
	// Concurrency is the maximum number of skills run at once. Zero means
	// the default.
	Concurrency int
}

// Engine runs skills against parsed diffs. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	source      SkillSource
	concurrency int
}

// New creates an Engine that selects skills from source.
func New(source SkillSource, opts Options) *Engine {
	c := opts.Concurrency
	if c <= 0 {
		c = defaultConcurrency
	}
	return &Engine{source: source, concurrency: c}
}

// ExecuteSkills runs the skills named in skillIDs against d. Unknown ids are
// ignored. Results follow the order of skillIDs with duplicates removed. An
// empty skillIDs returns immediately without loading anything. The only
// error returned is the context's.
func (e *Engine) ExecuteSkills(ctx context.Context, d *diff.ParsedDiff, skillIDs []string) ([]Result, error) {
	if len(skillIDs) == 0 {
		return nil, nil
	}

	byName := make(map[string]skill.Loaded)
	for _, s := range e.source.LoadSkills() {
		byName[s.Name()] = s
	}

	selected := make([]skill.Loaded, 0, len(skillIDs))
	seen := make(map[string]bool, len(skillIDs))
	for _, id := range skillIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		s, ok := byName[id]
		if !ok {
			log.Debug().Str("skill", id).Msg("unknown skill id, ignoring")
			continue
		}
		selected = append(selected, s)
	}

	return e.Execute(ctx, d, selected)
}

// Execute runs each skill against d and returns one Result per skill in the
// same order.
func (e *Engine) Execute(ctx context.Context, d *diff.ParsedDiff, skills []skill.Loaded) ([]Result, error) {
	if d == nil {
		d = &diff.ParsedDiff{}
	}
	results := make([]Result, len(skills))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, s := range skills {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := Run(s.Definition, d)
			if !r.Triggered {
				log.Debug().Str("skill", r.SkillName).Msg("no trigger matched, skipping")
			} else {
				log.Debug().
					Str("skill", r.SkillName).
					Int("findings", len(r.Findings)).
					Dur("duration", r.ExecutionTime).
					Msg("skill executed")
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run executes a single skill against d. A skill whose triggers match no
// file passes with no findings and zero execution time.
func Run(def skill.Definition, d *diff.ParsedDiff) Result {
	if d == nil {
		d = &diff.ParsedDiff{}
	}
	if !ShouldRun(def, d) {
		return Result{SkillName: def.Name, Passed: true, Findings: []Finding{}}
	}

	start := time.Now()
	findings := []Finding{}
	for _, rule := range def.Rules {
		if !rule.HasPattern() {
			continue
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			// Validated skills always compile; a hand-built definition may not.
			log.Warn().Err(err).Str("skill", def.Name).Str("rule", rule.ID).Msg("skipping rule with invalid pattern")
			continue
		}
		findings = append(findings, scan(rule, re, d)...)
	}

	return Result{
		SkillName:     def.Name,
		Passed:        len(findings) == 0,
		Findings:      findings,
		ExecutionTime: time.Since(start),
		Triggered:     true,
	}
}

// scan matches re against every added line in d, tracking new-file line
// numbers. Context and added lines advance the counter; deleted lines
// do not.
func scan(rule skill.Rule, re *regexp.Regexp, d *diff.ParsedDiff) []Finding {
	var out []Finding
	for _, f := range d.Files {
		for _, h := range f.Hunks {
			line := h.NewStart
			for _, l := range h.Lines {
				switch l.Type {
				case diff.LineAddition:
					if re.MatchString(l.Content) {
						out = append(out, Finding{
							RuleID:   rule.ID,
							Message:  rule.Message,
							File:     f.Path,
							Line:     line,
							Severity: rule.Severity,
							Snippet:  strings.TrimSpace(l.Content),
						})
					}
					line++
				case diff.LineContext:
					line++
				}
			}
		}
	}
	return out
}

// ShouldRun reports whether any of def's triggers matches a file in d.
func ShouldRun(def skill.Definition, d *diff.ParsedDiff) bool {
	if d == nil {
		return false
	}
	for _, t := range def.Triggers {
		if triggerMatches(t, d) {
			return true
		}
	}
	return false
}

func triggerMatches(t skill.Trigger, d *diff.ParsedDiff) bool {
	for _, f := range d.Files {
		if slices.ContainsFunc(t.FileExtension, func(ext string) bool { return hasExtension(f.Path, ext) }) {
			return true
		}
		if slices.ContainsFunc(t.PathContains, func(sub string) bool { return sub != "" && strings.Contains(f.Path, sub) }) {
			return true
		}
	}
	return false
}

// hasExtension reports whether path ends with ext, ignoring case. ext may
// be given with or without its leading dot, and may be compound (".d.ts").
func hasExtension(path, ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.HasSuffix(strings.ToLower(path), ext)
}
