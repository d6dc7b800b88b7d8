package config

import (
	"go/token"
	"unicode"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/version"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Concurrency: 0 = one worker per CPU, negative = invalid
	if c.Generate.Concurrency < 0 {
		return errors.NewConfigurationError("generate.concurrency must be >= 0, got %d", c.Generate.Concurrency)
	}

	if c.Generate.MinVersion != "" {
		if _, err := semver.NewVersion(c.Generate.MinVersion); err != nil {
			return errors.Mark(errors.Wrapf(err, "generate.min_version %q is not a semantic version", c.Generate.MinVersion), errors.ErrConfiguration)
		}
	}

	if c.Watch.DebounceMS < 0 {
		return errors.NewConfigurationError("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	if err := c.Naming.validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.Name == "" {
			return errors.NewConfigurationError("targets[%d].name cannot be empty", i)
		}
		if seen[t.Name] {
			return errors.NewConfigurationError("duplicate target name %q", t.Name)
		}
		seen[t.Name] = true
		if t.Output == "" {
			return errors.NewConfigurationError("target %q has no output", t.Name)
		}
		if len(t.Descriptors) == 0 && t.Source == "" {
			return errors.WithHint(
				errors.NewConfigurationError("target %q has no inputs", t.Name),
				"set descriptors, source, or both")
		}
		if t.Package != "" && !token.IsIdentifier(t.Package) {
			return errors.NewConfigurationError("target %q package %q is not a valid identifier", t.Name, t.Package)
		}
	}

	return nil
}

func (n NamingConfig) validate() error {
	prefixes := []struct {
		key, value string
		required   bool
	}{
		{"naming.getter_prefix", n.GetterPrefix, false},
		{"naming.setter_prefix", n.SetterPrefix, true},
		{"naming.constructor_prefix", n.ConstructorPrefix, true},
		{"naming.builder_suffix", n.BuilderSuffix, true},
		{"naming.builder_setter_prefix", n.BuilderSetterPrefix, false},
	}
	for _, p := range prefixes {
		if p.value == "" {
			if p.required {
				return errors.NewConfigurationError("%s cannot be empty", p.key)
			}
			continue
		}
		if !isNamePart(p.value) {
			return errors.NewConfigurationError("%s %q must contain only letters, digits and underscores", p.key, p.value)
		}
	}
	if n.SetterPrefix == n.GetterPrefix {
		return errors.NewConfigurationError("naming.setter_prefix and naming.getter_prefix are both %q", n.SetterPrefix)
	}
	if n.ConstructorPrefix != "" && !unicode.IsUpper([]rune(n.ConstructorPrefix)[0]) {
		return errors.NewConfigurationError("naming.constructor_prefix %q must be exported", n.ConstructorPrefix)
	}
	return nil
}

func isNamePart(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// CheckMinVersion fails when the running binary is older than generate.min_version.
// Development builds always pass.
func (c *Config) CheckMinVersion(info version.Info) error {
	if c.Generate.MinVersion == "" {
		return nil
	}
	current := info.Semver()
	if current == nil {
		return nil
	}
	minimum, err := semver.NewVersion(c.Generate.MinVersion)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "generate.min_version %q is not a semantic version", c.Generate.MinVersion), errors.ErrConfiguration)
	}
	if current.LessThan(minimum) {
		return errors.WithHint(
			errors.NewConfigurationError("recordgen %s is older than the required %s", current, minimum),
			"upgrade with: go install github.com/teranos/recordgen/cmd/recordgen@latest")
	}
	return nil
}
