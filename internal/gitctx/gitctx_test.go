package gitctx

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const twoFiles = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
+import "fmt"
diff --git a/vendor/lib.go b/vendor/lib.go
--- a/vendor/lib.go
+++ b/vendor/lib.go
@@ -1,3 +1,4 @@
+package lib
`

func TestFromText_Files(t *testing.T) {
	r := FromText(twoFiles, "file", DiffOptions{})
	if r.Mode != "file" {
		t.Errorf("Mode = %q, want %q", r.Mode, "file")
	}
	if len(r.Files) != 2 || r.Files[0] != "main.go" || r.Files[1] != "vendor/lib.go" {
		t.Errorf("Files = %v, want [main.go vendor/lib.go]", r.Files)
	}
	if r.Diff != twoFiles {
		t.Error("Diff should be unchanged without options")
	}
}

func TestFromText_Exclude(t *testing.T) {
	r := FromText(twoFiles, "file", DiffOptions{Exclude: []string{"vendor/**"}})
	if strings.Contains(r.Diff, "vendor/lib.go") {
		t.Error("vendor/lib.go should be excluded")
	}
	if !strings.Contains(r.Diff, "main.go") {
		t.Error("main.go should be kept")
	}
	if len(r.Files) != 1 {
		t.Errorf("Files = %v, want [main.go]", r.Files)
	}
}

func TestFromText_ExcludeBeforeTruncate(t *testing.T) {
	smallDiff := "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n@@ -1,3 +1,4 @@\n+line\n"
	largeDiff := "diff --git a/vendor/big.go b/vendor/big.go\n--- a/vendor/big.go\n+++ b/vendor/big.go\n@@ -1,3 +1,4 @@\n+" + strings.Repeat("x", 500) + "\n"

	r := FromText(largeDiff+smallDiff, "file", DiffOptions{
		MaxDiffBytes: 100,
		Exclude:      []string{"vendor/**"},
	})
	if r.Truncated {
		t.Error("Diff should not be truncated after excluding vendor/")
	}
	if r.Diff != smallDiff {
		t.Errorf("Diff = %q, want only main.go section", r.Diff)
	}
}

func TestFromText_TruncatesAtFileBoundary(t *testing.T) {
	first := "diff --git a/a.go b/a.go\n@@ -0,0 +1 @@\n+a\n"
	big := "diff --git a/b.go b/b.go\n@@ -0,0 +1 @@\n+" + strings.Repeat("x", 200) + "\n"
	last := "diff --git a/c.go b/c.go\n@@ -0,0 +1 @@\n+c\n"

	r := FromText(first+big+last, "file", DiffOptions{MaxDiffBytes: 100})
	if !r.Truncated || r.Omitted != 1 {
		t.Errorf("Truncated = %v, Omitted = %d, want true, 1", r.Truncated, r.Omitted)
	}
	if r.Diff != first+last {
		t.Errorf("Diff = %q, want whole a.go and c.go sections", r.Diff)
	}
	if strings.Join(r.Files, ",") != "a.go,c.go" {
		t.Errorf("Files = %v", r.Files)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "change.diff")
	if err := os.WriteFile(path, []byte(twoFiles), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := FromFile(context.Background(), path, nil, DiffOptions{})
	if err != nil {
		t.Fatalf("FromFile error: %v", err)
	}
	if r.Mode != "file" || len(r.Files) != 2 {
		t.Errorf("got mode %q files %v", r.Mode, r.Files)
	}

	r, err = FromFile(context.Background(), "-", strings.NewReader(twoFiles), DiffOptions{})
	if err != nil {
		t.Fatalf("FromFile stdin error: %v", err)
	}
	if r.Mode != "stdin" || len(r.Files) != 2 {
		t.Errorf("got mode %q files %v", r.Mode, r.Files)
	}

	if _, err := FromFile(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, DiffOptions{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSynthesize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Synthesize([]string{"main.go"}, DiffOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if r.Mode != "files" {
		t.Errorf("Mode = %q, want %q", r.Mode, "files")
	}
	if !strings.Contains(r.Diff, "+package main\n") {
		t.Error("Diff should contain added lines")
	}
	if !strings.Contains(r.Diff, "@@ -0,0 +1,3 @@") {
		t.Errorf("unexpected hunk header in %q", r.Diff)
	}
	if len(r.Files) != 1 || r.Files[0] != "main.go" {
		t.Errorf("Files = %v, want [main.go]", r.Files)
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"vendor/lib.go", []string{"vendor/**"}, true},
		{"vendor/x/y/lib.go", []string{"vendor/**"}, true},
		{"main.go", []string{"vendor/**"}, false},
		{"foo.gen.go", []string{"**/*.gen.go"}, true},
		{"pkg/foo.gen.go", []string{"**/*.gen.go"}, true},
		{"dist/bundle.js", []string{"**/dist/**"}, true},
		{"web/dist/a/bundle.js", []string{"**/dist/**"}, true},
		{"distro/main.go", []string{"**/dist/**"}, false},
		{"main.go", []string{"*.go"}, true},
		{"main.go", nil, false},
	}
	for _, tt := range tests {
		got := MatchesAny(tt.path, tt.patterns)
		if got != tt.want {
			t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}

func TestSplitDiffSections(t *testing.T) {
	sections := splitDiffSections(twoFiles)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if strings.Join(sections, "") != twoFiles {
		t.Error("sections should reassemble to the original diff")
	}
	if extractPathFromSection(sections[1]) != "vendor/lib.go" {
		t.Errorf("section 1 path = %q", extractPathFromSection(sections[1]))
	}
}

func TestBuildDiffArgs(t *testing.T) {
	args := buildDiffArgs(DiffOptions{ContextLines: 5})
	if args[0] != "-U5" {
		t.Errorf("args[0] = %q, want -U5", args[0])
	}
	if len(buildDiffArgs(DiffOptions{})) != 2 {
		t.Error("no -U flag expected without context lines")
	}
}

// setupTestRepo creates a temp git repo with one commit and returns its path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("command %v failed: %v\n%s", args, err, out)
		}
	}

	run("git", "init", "-q")
	run("git", "checkout", "-q", "-b", "main")
	write(t, dir, "main.go", "package main\n\nfunc main() {}\n")
	write(t, dir, "vendor/lib.go", "package vendor\n")
	run("git", "add", "-A")
	run("git", "commit", "-q", "-m", "init")

	return dir
}

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUnstagedAndStaged(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()
	write(t, dir, "main.go", "package main\n\n// TODO: wire flags\nfunc main() {}\n")

	r, err := Unstaged(ctx, DiffOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Unstaged error: %v", err)
	}
	if r.Mode != "unstaged" || len(r.Files) != 1 || r.Files[0] != "main.go" {
		t.Errorf("unexpected result: mode %q files %v", r.Mode, r.Files)
	}
	if r.Repo.Branch != "main" {
		t.Errorf("Branch = %q, want main", r.Repo.Branch)
	}

	r, err = Staged(ctx, DiffOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Staged error: %v", err)
	}
	if r.Diff != "" {
		t.Errorf("nothing staged, got %q", r.Diff)
	}
}

func TestCommitAndRange(t *testing.T) {
	dir := setupTestRepo(t)
	ctx := context.Background()

	// Root commit falls back to git show.
	r, err := Commit(ctx, "HEAD", DiffOptions{Dir: dir, Exclude: []string{"vendor/**"}})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if len(r.Files) != 1 || r.Files[0] != "main.go" {
		t.Errorf("Files = %v, want [main.go]", r.Files)
	}

	r, err = Range(ctx, "HEAD..HEAD", false, DiffOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if r.Mode != "range" || r.Range != "HEAD..HEAD" || len(r.Files) != 0 {
		t.Errorf("unexpected range result: %+v", r)
	}
}

func TestGetRepoMeta_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
	if _, err := GetRepoMeta(context.Background(), t.TempDir()); err == nil {
		t.Error("expected error outside a repository")
	}
}
