package gitctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dshills/skillscan/internal/diff"
)

// DiffOptions controls how diffs are gathered.
type DiffOptions struct {
	// Dir is the working directory for git. Empty means the current directory.
	Dir          string
	ContextLines int
	MaxDiffBytes int
	Exclude      []string
}

// DiffResult holds the collected diff and metadata.
type DiffResult struct {
	Diff      string   `json:"-"`
	Files     []string `json:"files"`
	Mode      string   `json:"mode"`
	Range     string   `json:"range,omitempty"`
	Truncated bool     `json:"truncated,omitempty"`
	Omitted   int      `json:"omitted,omitempty"` // file sections dropped by truncation
	Repo      RepoMeta `json:"repo"`
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta(ctx context.Context, dir string) (RepoMeta, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Unstaged returns the diff of working tree vs index.
func Unstaged(ctx context.Context, opts DiffOptions) (DiffResult, error) {
	d, err := gitOutput(ctx, opts.Dir, append([]string{"diff"}, buildDiffArgs(opts)...)...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff: %w", err)
	}
	return buildResult(ctx, d, "unstaged", "", opts), nil
}

// Staged returns the diff of index vs HEAD.
func Staged(ctx context.Context, opts DiffOptions) (DiffResult, error) {
	d, err := gitOutput(ctx, opts.Dir, append([]string{"diff", "--cached"}, buildDiffArgs(opts)...)...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff --cached: %w", err)
	}
	return buildResult(ctx, d, "staged", "", opts), nil
}

// Commit returns the diff for a specific commit vs its first parent. The
// root commit is diffed against the empty tree.
func Commit(ctx context.Context, sha string, opts DiffOptions) (DiffResult, error) {
	args := buildDiffArgs(opts)
	d, err := gitOutput(ctx, opts.Dir, append([]string{"diff", sha + "~1", sha}, args...)...)
	if err != nil {
		// Might be the root commit.
		showArgs := []string{"show", "--format=", sha}
		if opts.ContextLines > 0 {
			showArgs = append(showArgs, fmt.Sprintf("-U%d", opts.ContextLines))
		}
		d, err = gitOutput(ctx, opts.Dir, showArgs...)
		if err != nil {
			return DiffResult{}, fmt.Errorf("git show %s: %w", sha, err)
		}
	}
	return buildResult(ctx, d, "commit", sha, opts), nil
}

// Range returns the combined diff for a revision range. With mergeBase,
// "a..b" is compared from the merge base of a and b.
func Range(ctx context.Context, revRange string, mergeBase bool, opts DiffOptions) (DiffResult, error) {
	diffRange := revRange
	if mergeBase && strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		diffRange = strings.Replace(revRange, "..", "...", 1)
	}
	d, err := gitOutput(ctx, opts.Dir, append([]string{"diff", diffRange}, buildDiffArgs(opts)...)...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff %s: %w", revRange, err)
	}
	return buildResult(ctx, d, "range", revRange, opts), nil
}

// FromFile reads a diff from path, or from stdin when path is "-".
func FromFile(ctx context.Context, path string, stdin io.Reader, opts DiffOptions) (DiffResult, error) {
	var (
		data []byte
		err  error
		mode = "file"
	)
	if path == "-" {
		mode = "stdin"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return DiffResult{}, fmt.Errorf("reading diff: %w", err)
	}
	return FromText(string(data), mode, opts), nil
}

// FromText applies exclusion and the byte budget to an existing diff
// without consulting git.
func FromText(text, mode string, opts DiffOptions) DiffResult {
	r := shape(text, opts)
	r.Mode = mode
	return r
}

// Synthesize renders whole files as new-file diffs so that every line is
// scanned as an addition.
func Synthesize(paths []string, opts DiffOptions) (DiffResult, error) {
	var b strings.Builder
	for _, path := range paths {
		data, err := os.ReadFile(filepath.Join(opts.Dir, path))
		if err != nil {
			return DiffResult{}, fmt.Errorf("reading %s: %w", path, err)
		}
		content := strings.TrimSuffix(string(data), "\n")
		lines := strings.Split(content, "\n")
		if content == "" {
			lines = nil
		}
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
		fmt.Fprintf(&b, "new file mode 100644\n")
		fmt.Fprintf(&b, "--- /dev/null\n")
		fmt.Fprintf(&b, "+++ b/%s\n", path)
		fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
		for _, line := range lines {
			fmt.Fprintf(&b, "+%s\n", line)
		}
	}
	return FromText(b.String(), "files", opts), nil
}

func buildDiffArgs(opts DiffOptions) []string {
	var args []string
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	return append(args, "--no-color", "--no-ext-diff")
}

func buildResult(ctx context.Context, d, mode, rangeStr string, opts DiffOptions) DiffResult {
	meta, err := GetRepoMeta(ctx, opts.Dir)
	if err != nil {
		meta = RepoMeta{}
	}
	r := shape(d, opts)
	r.Mode = mode
	r.Range = rangeStr
	r.Repo = meta
	return r
}

// shape filters excluded files before truncating, so excluded files don't
// consume the byte budget. Truncation drops whole file sections; a section
// is never cut in half.
func shape(d string, opts DiffOptions) DiffResult {
	sections := splitDiffSections(d)

	var kept []string
	for _, sec := range sections {
		path := extractPathFromSection(sec)
		if path != "" && MatchesAny(path, opts.Exclude) {
			continue
		}
		kept = append(kept, sec)
	}

	var r DiffResult
	var b strings.Builder
	omitted := 0
	for _, sec := range kept {
		if opts.MaxDiffBytes > 0 && b.Len()+len(sec) > opts.MaxDiffBytes {
			omitted++
			continue
		}
		b.WriteString(sec)
	}
	if omitted > 0 {
		r.Truncated = true
		r.Omitted = omitted
		log.Warn().Int("omitted", omitted).Int("max_diff_bytes", opts.MaxDiffBytes).Msg("diff truncated")
	}

	r.Diff = b.String()
	r.Files = diff.Parse(r.Diff).Paths()
	return r
}

func splitDiffSections(d string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(d, "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

func extractPathFromSection(section string) string {
	parsed := diff.Parse(section)
	if len(parsed.Files) == 0 {
		return ""
	}
	return parsed.Files[0].Path
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" also matches at any depth, and a trailing "/**" matches
// everything beneath a directory.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if anyDepth, ok := strings.CutPrefix(dir, "**/"); ok {
				if strings.HasPrefix(path, anyDepth+"/") || strings.Contains(path, "/"+anyDepth+"/") {
					return true
				}
			} else if strings.HasPrefix(path, dir+"/") {
				return true
			}
		}
		if clean, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
				return true
			}
			if matched, err := filepath.Match(clean, path); err == nil && matched {
				return true
			}
		}
	}
	return false
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
