// Package config loads and merges skillscan configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SKILLSCAN_FAIL_ON, SKILLSCAN_CACHE__ENABLED, etc.)
//  3. Config file ($XDG_CONFIG_HOME/skillscan/config.toml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write one back, and
// [SetField] to update a single key.
package config
