package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/generator"
	"github.com/teranos/recordgen/logger"
)

var generateStdout bool

// GenerateCmd generates the configured targets
var GenerateCmd = &cobra.Command{
	Use:   "generate [target...]",
	Short: "Generate the configured targets",
	Long: `Generate one Go file per target from its descriptors and marked structs.

Every target is generated in memory first; files are written only when all
targets succeed, so a configuration error never leaves a partial result.
Unchanged files are not rewritten.

Examples:
  recordgen generate               # All targets
  recordgen generate model         # One target
  recordgen generate --stdout      # Print instead of writing`,
	ValidArgsFunction: targetNames,
	RunE:              runGenerate,
}

func init() {
	GenerateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "Print generated files to stdout instead of writing them")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	targets, err := selectTargets(cfg, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printConfig(out, cfg, targets, logger.Verbosity)

	gen := generator.New(cfg)
	if generateStdout {
		outputs, err := gen.Generate(cmd.Context(), targets)
		if err != nil {
			return err
		}
		for _, o := range outputs {
			fmt.Fprintf(out, "// %s\n%s", o.Path, o.Content)
		}
		return nil
	}

	if logger.ShouldOutput(logger.Verbosity, logger.OutputProgress) {
		pterm.Info.Printfln("Generating %d target(s)", len(targets))
	}
	start := time.Now()
	outputs, err := gen.Run(cmd.Context(), targets)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, o := range outputs {
		rel, relErr := filepath.Rel(cfg.Dir, o.Path)
		if relErr != nil {
			rel = o.Path
		}
		if logger.ShouldOutput(logger.Verbosity, logger.OutputResults) {
			pterm.Success.Printfln("%s: %s (%d records, %d members, %d declared by hand)",
				o.Target, rel, len(o.Plans), o.Generated(), o.Skipped())
		}
		if err := printDetails(out, o, logger.Verbosity); err != nil {
			return err
		}
	}
	if logger.ShouldOutput(logger.Verbosity, logger.OutputTiming) {
		fmt.Fprintf(out, "[%s] %d target(s) in %s\n",
			logger.CategoryName(logger.OutputTiming), len(outputs), elapsed.Round(time.Millisecond))
	}
	return nil
}

// printConfig shows the resolved configuration at -vv and above
func printConfig(w io.Writer, cfg *config.Config, targets []config.Target, verbosity int) {
	if !logger.ShouldOutput(verbosity, logger.OutputConfig) {
		return
	}
	tag := logger.CategoryName(logger.OutputConfig)
	fmt.Fprintf(w, "[%s] verbosity %s: %s\n", tag, logger.LevelName(verbosity), logger.VerbosityDescription(verbosity))
	fmt.Fprintf(w, "[%s] project %s\n", tag, cfg.Dir)
	for _, t := range targets {
		fmt.Fprintf(w, "[%s] target %s -> %s\n", tag, t.Name, t.Output)
	}
}

// printDetails lists what went into one output, as -v flags ask:
// skipped members, planned members, normalized records, then the source.
func printDetails(w io.Writer, out *generator.Output, verbosity int) error {
	for _, plan := range out.Plans {
		if logger.ShouldOutput(verbosity, logger.OutputSkipped) {
			for _, s := range plan.Skipped {
				fmt.Fprintf(w, "[%s] %s: %s\n", logger.CategoryName(logger.OutputSkipped), s.Member.Qualified(), s.Reason)
			}
		}
		if logger.ShouldOutput(verbosity, logger.OutputPlan) {
			fmt.Fprintf(w, "[%s] %s: %s\n", logger.CategoryName(logger.OutputPlan), plan.Spec.Name(), strings.Join(plan.Names(), ", "))
		}
		if logger.ShouldOutput(verbosity, logger.OutputSpecs) {
			data, err := yaml.Marshal(plan.Spec.Describe())
			if err != nil {
				return errors.Wrapf(err, "failed to encode record %s", plan.Spec.Name())
			}
			fmt.Fprintf(w, "[%s] %s\n%s", logger.CategoryName(logger.OutputSpecs), plan.Spec.Name(), data)
		}
	}
	if logger.ShouldOutput(verbosity, logger.OutputSourceDump) {
		fmt.Fprintf(w, "[%s] %s\n%s", logger.CategoryName(logger.OutputSourceDump), out.Path, out.Content)
	}
	return nil
}
