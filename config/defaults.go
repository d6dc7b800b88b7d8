package config

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultConstructorPrefix = "New"
	DefaultSetterPrefix      = "Set"
	DefaultBuilderSuffix     = "Builder"
	DefaultDebounceMS        = 200
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Generation defaults
	v.SetDefault("generate.concurrency", 0) // one worker per CPU
	v.SetDefault("generate.min_version", "")
	v.SetDefault("generate.capabilities", []string{"data"})

	// Naming defaults: Go style getters carry no prefix
	v.SetDefault("naming.getter_prefix", "")
	v.SetDefault("naming.setter_prefix", DefaultSetterPrefix)
	v.SetDefault("naming.constructor_prefix", DefaultConstructorPrefix)
	v.SetDefault("naming.builder_suffix", DefaultBuilderSuffix)
	v.SetDefault("naming.builder_setter_prefix", "")

	v.SetDefault("log.json", false)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.exec", "")
}

// Default returns a configuration holding only default values
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode
		panic(err)
	}
	return cfg
}
