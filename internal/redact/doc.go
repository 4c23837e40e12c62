// Package redact masks secrets in source lines before they are shown in a
// report or written to the result cache.
//
// Detection uses regex heuristics for common secret shapes: API keys, JWTs,
// private key headers, cloud and SaaS tokens, and database URLs with
// inline credentials. Files whose paths match configured globs are withheld
// entirely instead of being scanned line by line.
package redact
