package commands

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/errors"
)

var initForce bool

// InitCmd writes a starter configuration
var InitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter recordgen.toml",
	Long: `Write recordgen.toml and an example descriptor, records/user.yaml, to dir
(default: the working directory). An existing recordgen.toml is kept unless
--force is given; it is then backed up to recordgen.toml.back1.

Examples:
  recordgen init
  recordgen init ./service --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing recordgen.toml")
}

const exampleDescriptor = `# Records generated into model/records_gen.go
package: model
capabilities: [data, builder]
records:
  - name: User
    doc: User is an account holder.
    fields:
      - name: name
        type: string
      - name: surname
        type: string
      - name: age
        type: int
`

// starterConfig is the configuration init writes
func starterConfig() *config.Config {
	cfg := config.Default()
	cfg.Targets = []config.Target{{
		Name:        "records",
		Descriptors: []string{"records/**/*.yaml"},
		Output:      "model/records_gen.go",
		Package:     "model",
	}}
	return cfg
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, config.ProjectConfigName)

	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"use --force to overwrite it")
	}
	if err := config.WriteFile(path, starterConfig()); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)

	example := filepath.Join(dir, "records", "user.yaml")
	if _, err := os.Stat(example); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(example), config.DefaultDirPermissions); err != nil {
			return errors.Wrapf(err, "failed to create %s", filepath.Dir(example))
		}
		if err := os.WriteFile(example, []byte(exampleDescriptor), 0644); err != nil {
			return errors.Wrapf(err, "failed to write %s", example)
		}
		pterm.Success.Printfln("Wrote %s", example)
	}

	pterm.Info.Println("Run 'recordgen generate' to generate model/records_gen.go")
	return nil
}
