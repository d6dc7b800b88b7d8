// Package record holds the canonical model of a record and the normalizer
// that builds it from descriptors.
//
// A RecordSpec is built once per generation pass by Normalize and is never
// mutated afterwards; accessors hand out copies.
package record

// FieldSpec describes one field of a normalized record.
type FieldSpec struct {
	Name                string   // declared name, used in the string form
	GoName              string   // struct field identifier
	Type                string   // canonical Go type expression
	Kind                Kind     // classification of Type
	Mutable             bool     // a setter may be generated
	Required            bool     // part of the required-args constructor
	Getter              bool     // an accessor may be generated
	Setter              bool     // a mutator may be generated (implies Mutable)
	IncludeInEquality   bool     // compared by Equal and combined by Hash
	IncludeInStringForm bool     // rendered by String
	Default             any      // bool, string, int64, uint64 or float64; nil when none
	DefaultExpr         string   // Default as a Go literal
	Doc                 string   // field comment
	Tag                 string   // struct tag without backquotes
	Imports             []Import // packages referenced by Type
}

// HasDefault reports whether the field declares a default value
func (f FieldSpec) HasDefault() bool {
	return f.DefaultExpr != ""
}

func (f FieldSpec) clone() FieldSpec {
	if f.Imports != nil {
		f.Imports = append([]Import(nil), f.Imports...)
	}
	return f
}

// RecordSpec is the canonical, immutable description of one record.
type RecordSpec struct {
	name     string
	doc      string
	pkg      string
	source   string
	fields   []FieldSpec
	caps     CapabilitySet
	mode     ConstructorMode
	imports  []Import
	existing []string
	declared bool
}

// Name returns the record type name
func (s *RecordSpec) Name() string { return s.name }

// Doc returns the record's doc comment text
func (s *RecordSpec) Doc() string { return s.doc }

// Package returns the package named by the descriptor, "" when unspecified
func (s *RecordSpec) Package() string { return s.pkg }

// Source returns the descriptor path the record came from
func (s *RecordSpec) Source() string { return s.source }

// Capabilities returns the requested capabilities
func (s *RecordSpec) Capabilities() CapabilitySet { return s.caps }

// Has reports whether capability c was requested
func (s *RecordSpec) Has(c Capability) bool { return s.caps.Has(c) }

// ConstructorMode returns the constructor parameter mode
func (s *RecordSpec) ConstructorMode() ConstructorMode { return s.mode }

// Declared reports whether the struct type is written by hand
func (s *RecordSpec) Declared() bool { return s.declared }

// NumFields returns the number of fields
func (s *RecordSpec) NumFields() int { return len(s.fields) }

// Fields returns a copy of the fields in declaration order
func (s *RecordSpec) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.clone()
	}
	return out
}

// Field returns the field with the given declared or Go name
func (s *RecordSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range s.fields {
		if f.Name == name || f.GoName == name {
			return f.clone(), true
		}
	}
	return FieldSpec{}, false
}

// EqualityFields returns the fields compared by Equal and combined by Hash
func (s *RecordSpec) EqualityFields() []FieldSpec {
	return s.filter(func(f FieldSpec) bool { return f.IncludeInEquality })
}

// StringFields returns the fields rendered by String
func (s *RecordSpec) StringFields() []FieldSpec {
	return s.filter(func(f FieldSpec) bool { return f.IncludeInStringForm })
}

// ConstructorFields returns the constructor parameters in declaration order
func (s *RecordSpec) ConstructorFields() []FieldSpec {
	switch s.mode {
	case ConstructorNoArgs:
		return nil
	case ConstructorRequired:
		return s.filter(func(f FieldSpec) bool { return !f.Mutable || f.Required })
	default:
		return s.Fields()
	}
}

// Imports returns the imports declared for the record
func (s *RecordSpec) Imports() []Import {
	return append([]Import(nil), s.imports...)
}

// Existing returns member names the descriptor declares as already present
func (s *RecordSpec) Existing() []string {
	return append([]string(nil), s.existing...)
}

func (s *RecordSpec) filter(keep func(FieldSpec) bool) []FieldSpec {
	var out []FieldSpec
	for _, f := range s.fields {
		if keep(f) {
			out = append(out, f.clone())
		}
	}
	return out
}

// Description is a serializable view of a RecordSpec for inspect output.
type Description struct {
	Name         string             `yaml:"name" json:"name" toml:"name"`
	Doc          string             `yaml:"doc,omitempty" json:"doc,omitempty" toml:"doc,omitempty"`
	Source       string             `yaml:"source,omitempty" json:"source,omitempty" toml:"source,omitempty"`
	Capabilities []string           `yaml:"capabilities" json:"capabilities" toml:"capabilities"`
	Constructor  ConstructorMode    `yaml:"constructor,omitempty" json:"constructor,omitempty" toml:"constructor,omitempty"`
	Declared     bool               `yaml:"declared" json:"declared" toml:"declared"`
	Fields       []FieldDescription `yaml:"fields" json:"fields" toml:"fields"`
}

// FieldDescription is a serializable view of a FieldSpec.
type FieldDescription struct {
	Name     string `yaml:"name" json:"name" toml:"name"`
	GoName   string `yaml:"go_name" json:"go_name" toml:"go_name"`
	Type     string `yaml:"type" json:"type" toml:"type"`
	Kind     string `yaml:"kind" json:"kind" toml:"kind"`
	Mutable  bool   `yaml:"mutable" json:"mutable" toml:"mutable"`
	Required bool   `yaml:"required" json:"required" toml:"required"`
	Equality bool   `yaml:"equality" json:"equality" toml:"equality"`
	String   bool   `yaml:"string" json:"string" toml:"string"`
	Default  string `yaml:"default,omitempty" json:"default,omitempty" toml:"default,omitempty"`
}

// Describe returns a serializable view of the spec
func (s *RecordSpec) Describe() Description {
	d := Description{
		Name:         s.name,
		Doc:          s.doc,
		Source:       s.source,
		Capabilities: s.caps.Names(),
		Declared:     s.declared,
	}
	if s.caps.Has(Constructor) {
		d.Constructor = s.mode
	}
	for _, f := range s.fields {
		d.Fields = append(d.Fields, FieldDescription{
			Name:     f.Name,
			GoName:   f.GoName,
			Type:     f.Type,
			Kind:     f.Kind.String(),
			Mutable:  f.Mutable,
			Required: f.Required,
			Equality: f.IncludeInEquality,
			String:   f.IncludeInStringForm,
			Default:  f.DefaultExpr,
		})
	}
	return d
}
