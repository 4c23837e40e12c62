// Package review runs a skill scan end to end and assembles the report.
//
// [Run] parses the diff, loads skills from the configured directory, runs
// the selected skills through the engine, masks secrets in finding
// snippets, and caches the results keyed by diff text and skill contents.
// The report carries per-skill results, a flat finding list with stable
// IDs, severity and diff summaries, timing, and the prompt hints built by
// [BuildPromptHints] for a downstream model-based reviewer.
package review
