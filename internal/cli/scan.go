package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/skillscan/internal/config"
	"github.com/dshills/skillscan/internal/gitctx"
	"github.com/dshills/skillscan/internal/output"
	"github.com/dshills/skillscan/internal/review"
	"github.com/dshills/skillscan/internal/skill"
	"github.com/spf13/cobra"
)

// Scan flags
var (
	flagStaged       bool
	flagUnstaged     bool
	flagCommit       string
	flagRange        string
	flagMergeBase    bool
	flagFiles        []string
	flagSkills       string
	flagSkillsDir    string
	flagFormat       string
	flagFailOn       string
	flagOut          string
	flagMaxDiffBytes int
	flagContextLines int
	flagExclude      string
	flagConcurrency  int
	flagNoCache      bool
	flagNoRedact     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [diff-file|-]",
	Short: "Scan a diff with the configured skills",
	Long: "Scan a unified diff with the configured skills. The diff is read from a file, " +
		"from stdin when the argument is \"-\", or from git (--staged, --unstaged, --commit, --range). " +
		"With no argument and no source flag the working tree changes are scanned.",
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := checkSources(args); err != nil {
		return err
	}

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return err
	}
	if err := validateScanConfig(cfg); err != nil {
		return err
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: secret redaction is disabled")
	}

	ctx := context.Background()
	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	in, err := acquireDiff(ctx, args, buildDiffOpts(cfg), cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}
	if in.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: diff exceeds %d bytes, %d file(s) omitted\n", cfg.MaxDiffBytes, in.Omitted)
	}

	report, err := review.Run(ctx, in, cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("scan timed out after %ds: %w", cfg.TimeoutSeconds, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	if err := output.WriteReport(report, cfg.Format, flagOut, cmd.OutOrStdout()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	if report.FailsThreshold(cfg.FailOn) {
		exitCode = ExitFindings
	}
	return nil
}

// checkSources rejects more than one diff source on the command line.
func checkSources(args []string) error {
	var sources []string
	if flagStaged {
		sources = append(sources, "--staged")
	}
	if flagUnstaged {
		sources = append(sources, "--unstaged")
	}
	if flagCommit != "" {
		sources = append(sources, "--commit")
	}
	if flagRange != "" {
		sources = append(sources, "--range")
	}
	if len(flagFiles) > 0 {
		sources = append(sources, "--files")
	}
	if len(args) > 0 {
		sources = append(sources, "diff file "+args[0])
	}
	if len(sources) > 1 {
		return fmt.Errorf("conflicting diff sources: %s", strings.Join(sources, ", "))
	}
	if flagMergeBase && flagRange == "" {
		return errors.New("--merge-base requires --range")
	}
	return nil
}

func acquireDiff(ctx context.Context, args []string, opts gitctx.DiffOptions, stdin io.Reader) (gitctx.DiffResult, error) {
	switch {
	case len(args) == 1:
		return gitctx.FromFile(ctx, args[0], stdin, opts)
	case len(flagFiles) > 0:
		return gitctx.Synthesize(flagFiles, opts)
	case flagCommit != "":
		return gitctx.Commit(ctx, flagCommit, opts)
	case flagRange != "":
		return gitctx.Range(ctx, flagRange, flagMergeBase, opts)
	case flagStaged:
		return gitctx.Staged(ctx, opts)
	default:
		return gitctx.Unstaged(ctx, opts)
	}
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagSkills != "" {
		m["skills"] = flagSkills
	}
	if flagSkillsDir != "" {
		m["skills_dir"] = flagSkillsDir
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["fail_on"] = flagFailOn
	}
	if flagMaxDiffBytes > 0 {
		m["max_diff_bytes"] = strconv.Itoa(flagMaxDiffBytes)
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	return m
}

func buildDiffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{
		ContextLines: flagContextLines,
		MaxDiffBytes: cfg.MaxDiffBytes,
		Exclude:      cfg.Exclude,
	}
	if flagExclude != "" {
		opts.Exclude = append(append([]string(nil), opts.Exclude...), splitComma(flagExclude)...)
	}
	return opts
}

func validateScanConfig(cfg config.Config) error {
	if _, err := output.GetWriter(cfg.Format); err != nil {
		return err
	}
	if cfg.FailOn != "none" && cfg.FailOn != "" && !skill.Severity(cfg.FailOn).Valid() {
		return fmt.Errorf("invalid fail-on %q (use none, info, warning, critical)", cfg.FailOn)
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	return nil
}

func splitComma(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func init() {
	f := scanCmd.Flags()
	f.BoolVar(&flagStaged, "staged", false, "Scan staged changes (index vs HEAD)")
	f.BoolVar(&flagUnstaged, "unstaged", false, "Scan unstaged changes (working tree vs index)")
	f.StringVar(&flagCommit, "commit", "", "Scan the changes introduced by a commit")
	f.StringVar(&flagRange, "range", "", "Scan a revision range (e.g., origin/main..HEAD)")
	f.BoolVar(&flagMergeBase, "merge-base", false, "Diff --range against the merge base (a...b)")
	f.StringSliceVar(&flagFiles, "files", nil, "Scan whole files as if newly added (comma-separated)")
	f.StringVar(&flagSkills, "skills", "", "Skills to run (comma-separated names, default all)")
	f.StringVar(&flagSkillsDir, "skills-dir", "", "Directory to load skills from")
	f.StringVar(&flagFormat, "format", "", "Output format ("+strings.Join(output.Formats, ", ")+")")
	f.StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, info, warning, critical)")
	f.StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	f.IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
	f.IntVar(&flagContextLines, "context-lines", 0, "Number of context lines in git diffs")
	f.StringVar(&flagExclude, "exclude", "", "Additional path globs to exclude (comma-separated)")
	f.IntVar(&flagConcurrency, "concurrency", 0, "Maximum skills run in parallel")
	f.BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction in snippets (use with caution)")
}
