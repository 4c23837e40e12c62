// Package cache provides a file-based cache for skill scan results.
//
// Entries are keyed by a SHA-256 hash of the skills digest, the selected
// skill ids and the diff text, so editing a skill file or changing the
// selection invalidates earlier results. Each entry stores the JSON-encoded
// results with a creation timestamp and a TTL in seconds. Expired entries
// are skipped on read and removed.
//
// The default cache directory is $XDG_CACHE_HOME/skillscan (or the
// OS-appropriate equivalent).
package cache
