package commands

import (
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/generator"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/synth"
)

var inspectFormat string

// InspectCmd prints normalized records and their planned members
var InspectCmd = &cobra.Command{
	Use:   "inspect [target...]",
	Short: "Show normalized records and their planned members",
	Long: `Show what generate would do: every record after normalization, the
members planned for it and the members left out because they are declared
by hand.

Examples:
  recordgen inspect                 # YAML
  recordgen inspect model -f json   # One target as JSON
  recordgen inspect -f toml`,
	ValidArgsFunction: targetNames,
	RunE:              runInspect,
}

func init() {
	InspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "yaml", "Output format: yaml, json, toml")
}

// targetReport is the inspect document of one target
type targetReport struct {
	Target  string         `yaml:"target" json:"target" toml:"target"`
	Output  string         `yaml:"output" json:"output" toml:"output"`
	Package string         `yaml:"package" json:"package" toml:"package"`
	Records []recordReport `yaml:"records" json:"records" toml:"records"`
}

type recordReport struct {
	Record  record.Description `yaml:"record" json:"record" toml:"record"`
	Members []synth.Member     `yaml:"members" json:"members" toml:"members"`
	Skipped []synth.Skipped    `yaml:"skipped,omitempty" json:"skipped,omitempty" toml:"skipped,omitempty"`
}

// inspectReport wraps the targets; TOML documents need a table at the root
type inspectReport struct {
	Targets []targetReport `yaml:"targets" json:"targets" toml:"targets"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	targets, err := selectTargets(cfg, args)
	if err != nil {
		return err
	}

	outputs, err := generator.New(cfg).Generate(cmd.Context(), targets)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), buildReport(outputs), inspectFormat)
}

func buildReport(outputs []*generator.Output) inspectReport {
	var report inspectReport
	for _, out := range outputs {
		tr := targetReport{Target: out.Target, Output: out.Path, Package: out.Package}
		for _, plan := range out.Plans {
			tr.Records = append(tr.Records, recordReport{
				Record:  plan.Spec.Describe(),
				Members: plan.Members,
				Skipped: plan.Skipped,
			})
		}
		report.Targets = append(report.Targets, tr)
	}
	return report
}

func writeReport(w io.Writer, report inspectReport, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "failed to encode YAML")
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "failed to encode JSON")
	case "toml":
		enc := toml.NewEncoder(w)
		return errors.Wrap(enc.Encode(report), "failed to encode TOML")
	}
	return errors.Newf("unknown format %q (want yaml, json or toml)", format)
}
