package cli

import (
	"fmt"

	"cvranker/internal/specs"

	"github.com/spf13/cobra"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Inspect project and role specifications",
}

var specsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the specs directory",
	Long: `Load project.yaml and every roles/*.yaml file from the configured specs
directory, report validation errors, and list the loaded roles.`,
	RunE: runSpecsValidate,
}

func init() {
	specsCmd.AddCommand(specsValidateCmd)
}

func runSpecsValidate(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	loaded, err := specs.NewLoader(cfg.Specs.Dir, logger).Load()
	if err != nil {
		return err
	}

	fmt.Printf("Project: %s (%s)\n", loaded.Project.ProjectID, loaded.Project.Name)
	fmt.Printf("Skill aliases: %d\n", len(loaded.Project.SkillAliases))
	fmt.Printf("Roles: %d\n", len(loaded.Project.Roles))
	for _, role := range loaded.Project.Roles {
		fmt.Printf("  - %s: %s (min %.1f years, %d must-have, %d nice-to-have)\n",
			role.RoleID, role.Title, role.MinYearsExperience,
			len(role.MustHaveSkills), len(role.NiceToHaveSkills))
	}

	if len(loaded.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range loaded.Errors {
			fmt.Printf("  - %v\n", e)
		}
		return fmt.Errorf("%d spec file(s) failed validation", len(loaded.Errors))
	}
	return nil
}
