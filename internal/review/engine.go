package review

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/dshills/skillscan/internal/cache"
	"github.com/dshills/skillscan/internal/config"
	"github.com/dshills/skillscan/internal/diff"
	"github.com/dshills/skillscan/internal/engine"
	"github.com/dshills/skillscan/internal/gitctx"
	"github.com/dshills/skillscan/internal/redact"
	"github.com/dshills/skillscan/internal/skill"
)

// Version is stamped into every report.
var Version = "dev"

// Run scans the diff with the configured skills and builds a report. When
// cfg.Skills is empty every loaded skill is run, in skill file order.
func Run(ctx context.Context, in gitctx.DiffResult, cfg config.Config) (*Report, error) {
	startTime := time.Now()

	parsed := diff.Parse(in.Diff)
	parseMs := time.Since(startTime).Milliseconds()

	loadStart := time.Now()
	loader := skill.NewLoader(cfg.SkillsDir)
	if cfg.Concurrency > 0 {
		loader.Concurrency = cfg.Concurrency
	}
	loaded := loader.LoadSkills()
	loadMs := time.Since(loadStart).Milliseconds()

	ids := cfg.Skills
	if len(ids) == 0 {
		ids = make([]string, 0, len(loaded))
		for _, s := range loaded {
			ids = append(ids, s.Name())
		}
	}
	selected := selectSkills(loaded, ids)

	// Only redacted results are cached, so a run that keeps raw snippets
	// neither reads nor writes the cache.
	useCache := cfg.Cache.Enabled && cfg.Privacy.RedactSecrets
	if cfg.Cache.Enabled && !useCache {
		log.Debug().Msg("secret redaction disabled, bypassing result cache")
	}
	c, err := cache.New(useCache, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn().Err(err).Msg("result cache unavailable")
		c, _ = cache.New(false, "", 0)
	}
	key := cache.BuildCacheKey(skillsDigest(selected), ids, cfg.Privacy.RedactPaths, in.Diff)

	engineStart := time.Now()
	var results []engine.Result
	cached := c.Get(key, &results)
	if !cached {
		eng := engine.New(engine.StaticSource(loaded), engine.Options{Concurrency: cfg.Concurrency})
		results, err = eng.ExecuteSkills(ctx, parsed, ids)
		if err != nil {
			return nil, fmt.Errorf("executing skills: %w", err)
		}
		if cfg.Privacy.RedactSecrets {
			redactResults(results, cfg.Privacy.RedactPaths)
		}
		if err := c.Put(key, results); err != nil {
			log.Warn().Err(err).Msg("writing result cache")
		}
	}
	engineMs := time.Since(engineStart).Milliseconds()
	if results == nil {
		results = []engine.Result{}
	}

	log.Debug().
		Int("skills", len(results)).
		Bool("cached", cached).
		Int64("engine_ms", engineMs).
		Msg("scan complete")

	summary := ComputeSummary(results)
	summary.Diff = DiffStats{
		Files:     len(parsed.Files),
		Additions: parsed.Additions(),
		Deletions: parsed.Deletions(),
	}

	return &Report{
		Tool:    "skillscan",
		Version: Version,
		RunID:   generateRunID(),
		Repo: RepoInfo{
			Root:   in.Repo.Root,
			Head:   in.Repo.Head,
			Branch: in.Repo.Branch,
		},
		Inputs: InputInfo{
			Mode:      in.Mode,
			Range:     in.Range,
			Files:     parsed.Paths(),
			Skills:    ids,
			Truncated: in.Truncated,
			Omitted:   in.Omitted,
		},
		Summary:  summary,
		Results:  results,
		Findings: flatten(results),
		Hints:    BuildPromptHints(selected, results),
		Cached:   cached,
		Timing: Timing{
			ParseMs:  parseMs,
			LoadMs:   loadMs,
			EngineMs: engineMs,
			TotalMs:  time.Since(startTime).Milliseconds(),
		},
	}, nil
}

// selectSkills returns the loaded skills named in ids, in id order.
func selectSkills(loaded []skill.Loaded, ids []string) []skill.Loaded {
	byName := make(map[string]skill.Loaded, len(loaded))
	for _, s := range loaded {
		byName[s.Name()] = s
	}
	seen := make(map[string]bool, len(ids))
	var out []skill.Loaded
	for _, id := range ids {
		if s, ok := byName[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, s)
		}
	}
	return out
}

// skillsDigest hashes the selected definitions so that editing a skill
// file invalidates cached results.
func skillsDigest(skills []skill.Loaded) string {
	h := sha256.New()
	for _, s := range skills {
		data, err := yaml.Marshal(s.Definition)
		if err != nil {
			// Unreachable for plain structs; fall back to the name so the
			// digest still changes with the selection.
			data = []byte(s.Name())
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func redactResults(results []engine.Result, redactPaths []string) {
	for i := range results {
		for j := range results[i].Findings {
			f := &results[i].Findings[j]
			f.Snippet = redact.Snippet(f.Snippet, f.File, redactPaths)
		}
	}
}

func flatten(results []engine.Result) []Finding {
	findings := []Finding{}
	for _, r := range results {
		for _, f := range r.Findings {
			rf := Finding{
				Skill:    r.SkillName,
				RuleID:   f.RuleID,
				Severity: f.Severity,
				Message:  f.Message,
				Path:     f.File,
				Line:     f.Line,
				Snippet:  f.Snippet,
			}
			rf.ID = generateFindingID(rf)
			findings = append(findings, rf)
		}
	}
	return findings
}

func generateFindingID(f Finding) string {
	data := fmt.Sprintf("%s/%s:%s:%d", f.Skill, f.RuleID, f.Path, f.Line)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}
