// Package gitctx collects the diff to scan.
//
// Diffs come from git (unstaged, staged, a single commit or a revision
// range), from a patch file or stdin, or are synthesized from whole files.
// Every source goes through the same shaping step: file sections matching
// the exclude globs are removed, then whole sections are dropped until the
// diff fits the byte budget.
package gitctx
