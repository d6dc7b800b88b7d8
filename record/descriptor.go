package record

import (
	"path"
	"strings"
)

// File is one decoded descriptor source: a descriptor file, an OpenAPI
// document or the marked structs of a Go package.
type File struct {
	Package      string       `yaml:"package" toml:"package" json:"package"`
	Imports      []string     `yaml:"imports" toml:"imports" json:"imports"`
	Capabilities []string     `yaml:"capabilities" toml:"capabilities" json:"capabilities"`
	Constructor  string       `yaml:"constructor" toml:"constructor" json:"constructor" validate:"omitempty,oneof=all required noargs"`
	Records      []Descriptor `yaml:"records" toml:"records" json:"records" validate:"dive"`

	// Source is the path the file was read from, used in diagnostics
	Source string `yaml:"-" toml:"-" json:"-"`
}

// Descriptor describes one record.
type Descriptor struct {
	Name         string            `yaml:"name" toml:"name" json:"name" validate:"required,goident"`
	Doc          string            `yaml:"doc" toml:"doc" json:"doc"`
	Capabilities []string          `yaml:"capabilities" toml:"capabilities" json:"capabilities"`
	Constructor  string            `yaml:"constructor" toml:"constructor" json:"constructor" validate:"omitempty,oneof=all required noargs"`
	Imports      []string          `yaml:"imports" toml:"imports" json:"imports"`
	Defaults     FieldOptions      `yaml:"defaults" toml:"defaults" json:"defaults"`
	Declared     bool              `yaml:"declared" toml:"declared" json:"declared"` // struct type is written by hand
	Existing     []string          `yaml:"existing" toml:"existing" json:"existing" validate:"dive,goident"`
	Fields       []FieldDescriptor `yaml:"fields" toml:"fields" json:"fields" validate:"dive"`
}

// FieldDescriptor describes one field of a record.
type FieldDescriptor struct {
	Name    string `yaml:"name" toml:"name" json:"name" validate:"required"`
	GoName  string `yaml:"go_name" toml:"go_name" json:"go_name" validate:"omitempty,goident"`
	Type    string `yaml:"type" toml:"type" json:"type" validate:"required"`
	Doc     string `yaml:"doc" toml:"doc" json:"doc"`
	Tag     string `yaml:"tag" toml:"tag" json:"tag"`
	Default any    `yaml:"default" toml:"default" json:"default"`

	FieldOptions `yaml:",inline"`
}

// FieldOptions are per-field switches. A nil option inherits the record's
// defaults, then the value implied by the record's capabilities.
type FieldOptions struct {
	Mutable  *bool `yaml:"mutable,omitempty" toml:"mutable,omitempty" json:"mutable,omitempty"`
	Required *bool `yaml:"required,omitempty" toml:"required,omitempty" json:"required,omitempty"`
	Getter   *bool `yaml:"getter,omitempty" toml:"getter,omitempty" json:"getter,omitempty"`
	Setter   *bool `yaml:"setter,omitempty" toml:"setter,omitempty" json:"setter,omitempty"`
	Equality *bool `yaml:"equality,omitempty" toml:"equality,omitempty" json:"equality,omitempty"`
	String   *bool `yaml:"string,omitempty" toml:"string,omitempty" json:"string,omitempty"`
}

// Import is a package referenced by field types.
type Import struct {
	Name string `yaml:"name" toml:"name" json:"name"` // Qualifier used in type expressions
	Path string `yaml:"path" toml:"path" json:"path"`
}

// Aliased reports whether the import needs an explicit name in an import spec
func (i Import) Aliased() bool {
	return i.Name != path.Base(i.Path)
}

// String renders the import as it appears in an import declaration
func (i Import) String() string {
	if i.Aliased() {
		return i.Name + " " + `"` + i.Path + `"`
	}
	return `"` + i.Path + `"`
}

// wellKnownImports resolve without being declared
var wellKnownImports = map[string]string{
	"time":  "time",
	"json":  "encoding/json",
	"sql":   "database/sql",
	"big":   "math/big",
	"url":   "net/url",
	"netip": "net/netip",
}

// WellKnownImport returns the import for a qualifier resolved without declaration
func WellKnownImport(name string) (Import, bool) {
	p, ok := wellKnownImports[name]
	if !ok {
		return Import{}, false
	}
	return Import{Name: name, Path: p}, true
}

// ParseImport parses `path` or `name path`, the form used in descriptor
// imports lists. Quotes around the path are optional.
func ParseImport(s string) (Import, bool) {
	parts := strings.Fields(s)
	unquote := func(p string) string { return strings.Trim(p, "\"`") }
	switch len(parts) {
	case 1:
		p := unquote(parts[0])
		return Import{Name: DefaultImportName(p), Path: p}, p != ""
	case 2:
		p := unquote(parts[1])
		return Import{Name: parts[0], Path: p}, p != "" && parts[0] != ""
	default:
		return Import{}, false
	}
}

// DefaultImportName guesses the package name of an import path: the last
// element without a major version suffix, ".vN" suffix or "go-" prefix.
func DefaultImportName(importPath string) string {
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.ReplaceAll(name, "-", "")
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
