package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dshills/skillscan/internal/config"
	"github.com/dshills/skillscan/internal/skill"
	"github.com/spf13/cobra"
)

var flagSkillsForce bool

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect, validate and install skills",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills that load from the skills directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := skillsDir()
		if err != nil {
			return err
		}

		loaded := skill.NewLoader(dir).LoadSkills()
		if len(loaded) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No skills found in %s. Run \"skillscan skills install\" to add the bundled skills.\n", dir)
			return nil
		}
		sort.Slice(loaded, func(i, j int) bool { return loaded[i].Name() < loaded[j].Name() })

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tRULES\tPATH")
		for _, s := range loaded {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name(), s.Definition.Version, len(s.Definition.Rules), s.Path)
		}
		return tw.Flush()
	},
}

var skillsValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate skill files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			s, err := skill.LoadSkill(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %v\n", err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s, %d rules)\n", path, s.Name(), len(s.Definition.Rules))
		}
		if failed > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d skill file(s) invalid\n", failed, len(args))
			exitCode = ExitFindings
		}
		return nil
	},
}

var skillsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the bundled skills into the skills directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := skillsDir()
		if err != nil {
			return err
		}

		written, err := skill.InstallDefaults(dir, flagSkillsForce)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(written) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Bundled skills already present in %s (use --force to overwrite).\n", dir)
			return nil
		}
		for _, p := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s\n", p)
		}
		return nil
	},
}

// skillsDir resolves the skills directory from --skills-dir or config.
func skillsDir() (string, error) {
	if flagSkillsDir != "" {
		return flagSkillsDir, nil
	}
	cfg, err := config.Load(nil)
	if err != nil {
		return "", err
	}
	return cfg.SkillsDir, nil
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsValidateCmd)
	skillsCmd.AddCommand(skillsInstallCmd)
	skillsCmd.PersistentFlags().StringVar(&flagSkillsDir, "skills-dir", "", "Directory to load skills from")
	skillsInstallCmd.Flags().BoolVar(&flagSkillsForce, "force", false, "Overwrite existing skill files")
}
