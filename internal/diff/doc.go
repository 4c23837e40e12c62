// Package diff parses unified diff text into files, hunks and lines.
//
// Parsing is total: [Parse] never returns an error, because diffs taken from
// real sources are often truncated or lack trailing newline markers. Lines
// that fall outside a recognized file header or hunk are dropped, and
// unexpected lines inside a hunk are kept as context.
//
// Each [File] records a status (added, modified, deleted, renamed, copied)
// and a language detected from its extension. Addition and deletion counts
// are computed from the stored lines on demand rather than tracked
// separately.
package diff
