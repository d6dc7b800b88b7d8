package commands

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/recordgen/generator"
)

// CheckCmd fails when generated files are out of date
var CheckCmd = &cobra.Command{
	Use:   "check [target...]",
	Short: "Check that generated files are up to date",
	Long: `Check that the generated files on disk match what generate would write.

Nothing is written. Differences are shown as line diffs (-disk +generated).

Exit codes:
  0 - Generated files are up to date
  1 - Generated files are out of date (diff shown)
  2 - Error during check

Examples:
  recordgen check                  # All targets
  recordgen check model            # One target`,
	ValidArgsFunction: targetNames,
	RunE:              runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	targets, err := selectTargets(cfg, args)
	if err != nil {
		return err
	}

	result, err := generator.New(cfg).Check(cmd.Context(), targets)
	if err != nil {
		return err
	}

	if result.UpToDate {
		pterm.Success.Println("Generated files are up to date")
		return nil
	}

	pterm.Warning.Println("Generated files are out of date")
	for _, path := range result.Paths() {
		rel, relErr := filepath.Rel(cfg.Dir, path)
		if relErr != nil {
			rel = path
		}
		pterm.Println()
		pterm.DefaultSection.Println(rel)
		pterm.Println(result.Differences[path])
	}
	return result.Err()
}
