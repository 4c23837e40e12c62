// Skillscan scans code changes with declarative YAML review skills.
//
// It reads a unified diff from a file, stdin or git, runs every skill whose
// triggers match a changed file, and reports pattern findings with
// deterministic exit codes suitable for CI gating and git hooks.
//
// Usage:
//
//	skillscan scan                       # scan working tree changes
//	skillscan scan --staged              # scan staged changes
//	skillscan scan --commit <sha>        # scan a specific commit
//	skillscan scan --range origin/main..HEAD
//	git diff | skillscan scan -          # scan a diff from stdin
//	skillscan scan --files a.go,b.go     # scan whole files
//	skillscan skills list                # list loaded skills
//	skillscan skills validate <file>...  # validate skill files
package main
