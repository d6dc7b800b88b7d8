package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/recordgen/cmd/recordgen/commands"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "recordgen",
	Short: "recordgen - accessors, equality and builders for Go records",
	Long: `recordgen generates the boilerplate methods of plain data records.

Records are described in YAML, TOML or JSON descriptors, OpenAPI component
schemas, or Go structs marked with //recordgen:record. For each record it
generates the members its capabilities ask for: getters, setters, Equal and
Hash, String, a constructor and a fluent builder. Members already declared
by hand are never generated.

Available commands:
  generate - Generate the configured targets
  check    - Fail when generated files are out of date
  inspect  - Show normalized records and their planned members
  init     - Write a starter recordgen.toml
  watch    - Regenerate when inputs change
  version  - Show version information

Examples:
  recordgen init                   # Start a project
  recordgen generate               # Generate every target
  recordgen generate model -v      # One target, with progress logs
  recordgen check                  # CI: generated files up to date?
  recordgen inspect --format json  # Records and members as JSON`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: recordgen.toml found from the working directory up)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger.ShouldOutput(logger.Verbosity, logger.OutputErrors) {
			pterm.Error.WithWriter(os.Stderr).Println(err.Error())
			for _, hint := range errors.GetAllHints(err) {
				pterm.Info.WithWriter(os.Stderr).Println(hint)
			}
		}
		if errors.IsOutOfDateError(err) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
