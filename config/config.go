// Package config loads recordgen.toml, the project configuration that names
// generation targets and tunes naming, logging and watch behaviour.
package config

// Config represents the recordgen configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate"`
	Naming   NamingConfig   `mapstructure:"naming" toml:"naming"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
	Targets  []Target       `mapstructure:"targets" toml:"targets"`

	// Dir is the directory relative target paths resolve against: the
	// directory of the project config file, or the working directory.
	Dir string `mapstructure:"-" toml:"-"`
}

// GenerateConfig configures a generation pass
type GenerateConfig struct {
	Concurrency  int      `mapstructure:"concurrency" toml:"concurrency"`     // Targets generated in parallel (0 = one per CPU)
	MinVersion   string   `mapstructure:"min_version" toml:"min_version"`     // Oldest recordgen release allowed to regenerate this project
	Capabilities []string `mapstructure:"capabilities" toml:"capabilities"` // Used when neither target nor record names any
}

// NamingConfig configures generated member names
type NamingConfig struct {
	GetterPrefix        string `mapstructure:"getter_prefix" toml:"getter_prefix"`
	SetterPrefix        string `mapstructure:"setter_prefix" toml:"setter_prefix"`
	ConstructorPrefix   string `mapstructure:"constructor_prefix" toml:"constructor_prefix"`
	BuilderSuffix       string `mapstructure:"builder_suffix" toml:"builder_suffix"`
	BuilderSetterPrefix string `mapstructure:"builder_setter_prefix" toml:"builder_setter_prefix"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// WatchConfig configures `recordgen watch`
type WatchConfig struct {
	DebounceMS int    `mapstructure:"debounce_ms" toml:"debounce_ms"`
	Exec       string `mapstructure:"exec" toml:"exec,omitempty"` // Run after each successful regeneration
}

// Target is one generated output file
type Target struct {
	Name         string   `mapstructure:"name" toml:"name"`
	Descriptors  []string `mapstructure:"descriptors" toml:"descriptors,omitempty"` // Descriptor files or doublestar globs
	Source       string   `mapstructure:"source" toml:"source,omitempty"`           // Go package directory scanned for //recordgen:record structs
	Output       string   `mapstructure:"output" toml:"output"`
	Package      string   `mapstructure:"package" toml:"package,omitempty"` // Defaults to the output directory's package
	Capabilities []string `mapstructure:"capabilities" toml:"capabilities,omitempty"`
}

// File names and permissions
const (
	ProjectConfigName     = "recordgen.toml"
	UserConfigDir         = ".recordgen"
	UserConfigName        = "config.toml"
	DefaultDirPermissions = 0750
)

// TargetByName returns the target with the given name
func (c *Config) TargetByName(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}
