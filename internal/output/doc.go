// Package output formats scan reports for display or machine consumption.
//
// Supported formats:
//   - text: human-readable terminal output (default)
//   - json: full structured JSON report
//   - markdown: PR-comment-friendly with collapsible sections per severity
//   - sarif: SARIF v2.1.0 for code-scanning upload; rule ids are skill/rule
//   - hints: only the prompt hints for a downstream model-based reviewer
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteReport] to write to a file or stdout.
package output
