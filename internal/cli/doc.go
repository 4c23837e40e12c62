// Package cli wires together the Cobra command tree for the skillscan binary.
//
// It defines the root command and its subcommands (scan, skills, config,
// cache, hook, version), binds flags, reads configuration, invokes the scan
// pipeline, and returns deterministic exit codes for CI gating.
package cli
