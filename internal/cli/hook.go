package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/skillscan/internal/skill"
	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> skillscan pre-commit hook >>>"
	hookMarkerEnd   = "# <<< skillscan pre-commit hook <<<"
)

var (
	hookFailOn string
	hookSkills string
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Run skillscan on staged changes before each commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !skill.Severity(hookFailOn).Valid() {
			return fmt.Errorf("invalid fail-on %q (use info, warning, critical)", hookFailOn)
		}

		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		section := generateHookScript(hookFailOn, hookSkills)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := "#!/bin/sh\n" + section
		if len(existing) > 0 {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error creating hooks directory: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed skillscan pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the skillscan section from the pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(cmd.OutOrStdout(), "No pre-commit hook found.")
			return nil
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeHookSection(string(existing))

		if onlyShebang(content) {
			if err := os.Remove(hookPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed pre-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed skillscan section from %s\n", hookPath)
		return nil
	},
}

// getHookPath asks git for the pre-commit path so core.hooksPath and
// worktrees are respected.
func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-path", "hooks/pre-commit").Output()
	if err != nil {
		return "", errors.New("not a git repository (git rev-parse --git-path failed)")
	}
	return strings.TrimSpace(string(out)), nil
}

func generateHookScript(failOn, skills string) string {
	command := "skillscan scan --staged --fail-on " + failOn
	if skills != "" {
		command += " --skills " + skills
	}

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString(command + "\n")
	b.WriteString("SKILLSCAN_EXIT=$?\n")
	b.WriteString("if [ $SKILLSCAN_EXIT -eq 1 ]; then\n")
	b.WriteString("  echo \"skillscan: findings at or above " + failOn + ", commit blocked\"\n")
	b.WriteString("  exit 1\n")
	b.WriteString("elif [ $SKILLSCAN_EXIT -ge 2 ]; then\n")
	b.WriteString("  echo \"skillscan: scan failed (exit $SKILLSCAN_EXIT), allowing commit\"\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

// replaceHookSection swaps an existing marked section for section, or
// appends section when the hook has none.
func replaceHookSection(existing, section string) string {
	before, after, ok := cutSection(existing)
	if !ok {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}
	return before + section + after
}

func removeHookSection(existing string) string {
	before, after, ok := cutSection(existing)
	if !ok {
		return existing
	}
	return before + after
}

// cutSection splits s around the marked section. The newline following the
// end marker belongs to the section.
func cutSection(s string) (before, after string, ok bool) {
	start := strings.Index(s, hookMarkerStart)
	end := strings.Index(s, hookMarkerEnd)
	if start == -1 || end == -1 || end < start {
		return s, "", false
	}
	after = strings.TrimPrefix(s[end+len(hookMarkerEnd):], "\n")
	return s[:start], after, true
}

func onlyShebang(content string) bool {
	switch strings.TrimSpace(content) {
	case "", "#!/bin/sh", "#!/bin/bash", "#!/usr/bin/env sh", "#!/usr/bin/env bash":
		return true
	}
	return false
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookFailOn, "fail-on", "critical", "Block the commit at this severity (info, warning, critical)")
	hookInstallCmd.Flags().StringVar(&hookSkills, "skills", "", "Skills to run (comma-separated, default all)")
}
