// Package engine executes skills against a parsed diff.
//
// Only pattern rules run here. Each pattern is compiled case-insensitively
// and matched against added lines; context and deleted lines are never
// scanned. Findings carry the new-file line number of the matching line.
// Skills whose triggers match no file in the diff pass without running.
//
// Patterns use RE2 syntax, so matching time is linear in the input and a
// hostile skill file cannot stall a scan.
package engine
