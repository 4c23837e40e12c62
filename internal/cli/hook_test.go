package cli

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateHookScript(t *testing.T) {
	script := generateHookScript("critical", "")

	if !strings.HasPrefix(script, hookMarkerStart+"\n") {
		t.Error("Script missing start marker")
	}
	if !strings.HasSuffix(script, hookMarkerEnd+"\n") {
		t.Error("Script missing end marker")
	}
	if !strings.Contains(script, "skillscan scan --staged --fail-on critical\n") {
		t.Error("Script missing skillscan command with correct flags")
	}
	if !strings.Contains(script, "SKILLSCAN_EXIT=$?") {
		t.Error("Script missing exit code capture")
	}
	if !strings.Contains(script, "exit 1") {
		t.Error("Script missing exit 1 for findings")
	}
	if !strings.Contains(script, "allowing commit") {
		t.Error("Script missing warning for errors")
	}
}

func TestGenerateHookScript_Skills(t *testing.T) {
	script := generateHookScript("warning", "security-patterns,best-practices")

	if !strings.Contains(script, "--fail-on warning --skills security-patterns,best-practices") {
		t.Errorf("Script doesn't pass skills:\n%s", script)
	}
}

func TestReplaceHookSection_NoExisting(t *testing.T) {
	existing := "#!/bin/sh\nsome-other-hook\n"
	section := generateHookScript("critical", "")

	result := replaceHookSection(existing, section)

	if result != existing+section {
		t.Errorf("section should be appended after existing content, got:\n%s", result)
	}
}

func TestReplaceHookSection_ExistingSection(t *testing.T) {
	oldSection := generateHookScript("info", "")
	existing := "#!/bin/sh\nbefore\n" + oldSection + "after\n"
	newSection := generateHookScript("critical", "")

	result := replaceHookSection(existing, newSection)

	want := "#!/bin/sh\nbefore\n" + newSection + "after\n"
	if result != want {
		t.Errorf("replaceHookSection() =\n%s\nwant\n%s", result, want)
	}
}

func TestReplaceHookSection_NoTrailingNewline(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook"
	section := generateHookScript("critical", "")

	result := replaceHookSection(existing, section)

	if result != existing+"\n"+section {
		t.Errorf("unexpected result:\n%s", result)
	}
}

func TestRemoveHookSection(t *testing.T) {
	section := generateHookScript("critical", "")
	existing := "#!/bin/sh\nbefore\n" + section + "after\n"

	result := removeHookSection(existing)

	if result != "#!/bin/sh\nbefore\nafter\n" {
		t.Errorf("removeHookSection() = %q", result)
	}
}

func TestRemoveHookSection_NoSection(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook\n"
	if result := removeHookSection(existing); result != existing {
		t.Error("Content without skillscan section should be unchanged")
	}
}

func TestRemoveHookSection_MarkersOutOfOrder(t *testing.T) {
	existing := "#!/bin/sh\n" + hookMarkerEnd + "\nmiddle\n" + hookMarkerStart + "\n"
	if result := removeHookSection(existing); result != existing {
		t.Error("Out-of-order markers should leave content unchanged")
	}
}

func TestOnlyShebang(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"", true},
		{"#!/bin/sh\n", true},
		{"#!/usr/bin/env bash\n\n", true},
		{"#!/bin/sh\nmake lint\n", false},
	}
	for _, tt := range tests {
		if got := onlyShebang(tt.content); got != tt.want {
			t.Errorf("onlyShebang(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestHookInstallUninstall(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	isolate(t)
	repo := t.TempDir()
	if out, err := exec.Command("git", "init", "-q", repo).CombinedOutput(); err != nil {
		t.Fatalf("git init: %v\n%s", err, out)
	}
	t.Chdir(repo)

	hookFailOn = "warning"
	hookSkills = ""
	if _, stderr, err := execute(t, hookCmd, "", "install"); err != nil || exitCode != ExitSuccess {
		t.Fatalf("hook install: err=%v exit=%d stderr=%q", err, exitCode, stderr)
	}

	hookPath := filepath.Join(repo, ".git", "hooks", "pre-commit")
	data, err := os.ReadFile(hookPath)
	if err != nil {
		t.Fatalf("hook not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh\n"+hookMarkerStart) {
		t.Errorf("hook content:\n%s", data)
	}
	if !strings.Contains(string(data), "--fail-on warning") {
		t.Errorf("hook missing fail-on flag:\n%s", data)
	}

	if _, _, err := execute(t, hookCmd, "", "uninstall"); err != nil {
		t.Fatalf("hook uninstall: %v", err)
	}
	if _, err := os.Stat(hookPath); !os.IsNotExist(err) {
		t.Errorf("hook file should be removed, stat err = %v", err)
	}
}

func TestHookInstall_InvalidFailOn(t *testing.T) {
	isolate(t)
	hookFailOn = "high"
	t.Cleanup(func() { hookFailOn = "critical" })

	_, _, err := execute(t, hookCmd, "", "install")
	if err == nil {
		t.Error("hook install with unknown severity should return error")
	}
}
