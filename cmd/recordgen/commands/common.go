// Package commands holds the recordgen CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
	"github.com/teranos/recordgen/version"
)

// loadConfig loads the --config file or the discovered configuration,
// validates it and applies its log settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.CheckMinVersion(version.Get()); err != nil {
		return nil, err
	}

	if cfg.Log.JSON && !logger.JSONOutput {
		if err := logger.Initialize(true, logger.Verbosity); err != nil {
			return nil, errors.Wrap(err, "failed to initialize logger")
		}
	}
	return cfg, nil
}

// selectTargets returns the named targets, or every target when names is
// empty.
func selectTargets(cfg *config.Config, names []string) ([]config.Target, error) {
	if len(cfg.Targets) == 0 {
		return nil, errors.WithHint(
			errors.NewConfigurationError("no targets configured"),
			"run 'recordgen init' or add [[targets]] to recordgen.toml")
	}
	if len(names) == 0 {
		return cfg.Targets, nil
	}
	targets := make([]config.Target, 0, len(names))
	for _, name := range names {
		t, ok := cfg.TargetByName(name)
		if !ok {
			return nil, errors.NewConfigurationError("unknown target %q", name)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// targetNames completes target arguments from the configuration
func targetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, t := range cfg.Targets {
		names = append(names, t.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
