// Package synth plans and synthesizes the members generated for a record.
//
// Planning decides which members exist: one per requested capability and
// field, minus members the package already declares. Synthesis renders each
// planned member to Go source independently of the others.
package synth

import (
	"fmt"

	"github.com/teranos/recordgen/record"
)

// MemberKind identifies a generated member.
type MemberKind int

const (
	MemberTypeDecl MemberKind = iota
	MemberConstructor
	MemberGetter
	MemberSetter
	MemberEqual
	MemberHash
	MemberString
	MemberBuilderType
	MemberBuilderFunc
	MemberBuilderSetter
	MemberBuild
)

var memberKindNames = map[MemberKind]string{
	MemberTypeDecl:      "type",
	MemberConstructor:   "constructor",
	MemberGetter:        "getter",
	MemberSetter:        "setter",
	MemberEqual:         "equal",
	MemberHash:          "hash",
	MemberString:        "string",
	MemberBuilderType:   "builder-type",
	MemberBuilderFunc:   "builder-constructor",
	MemberBuilderSetter: "builder-setter",
	MemberBuild:         "build",
}

func (k MemberKind) String() string {
	if n, ok := memberKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText renders the kind by name in inspect output
func (k MemberKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Capability returns the capability a member kind belongs to; the type
// declaration belongs to none.
func (k MemberKind) Capability() (record.Capability, bool) {
	switch k {
	case MemberConstructor:
		return record.Constructor, true
	case MemberGetter:
		return record.Getter, true
	case MemberSetter:
		return record.Setter, true
	case MemberEqual, MemberHash:
		return record.Equality, true
	case MemberString:
		return record.StringForm, true
	case MemberBuilderType, MemberBuilderFunc, MemberBuilderSetter, MemberBuild:
		return record.Builder, true
	}
	return 0, false
}

// Member is one planned declaration.
type Member struct {
	Kind     MemberKind `yaml:"kind" json:"kind" toml:"kind"`
	Name     string     `yaml:"name" json:"name" toml:"name"`
	Receiver string     `yaml:"receiver,omitempty" json:"receiver,omitempty" toml:"receiver,omitempty"` // "" for package-level declarations
	Field    string     `yaml:"field,omitempty" json:"field,omitempty" toml:"field,omitempty"`          // GoName of the field a per-field member serves
}

// Qualified returns Receiver.Name, or Name for package-level members
func (m Member) Qualified() string {
	if m.Receiver == "" {
		return m.Name
	}
	return m.Receiver + "." + m.Name
}

// Skipped is a member left out because the package already declares it.
type Skipped struct {
	Member Member `yaml:"member" json:"member" toml:"member"`
	Reason string `yaml:"reason" json:"reason" toml:"reason"`
}

// Existing reports declarations already present in the target package.
type Existing interface {
	HasMethod(typeName, name string) bool
	HasField(typeName, name string) bool
	HasDecl(name string) bool
}

// Plan is the ordered set of members to generate for one record.
type Plan struct {
	Spec    *record.RecordSpec
	Naming  Naming
	Members []Member
	Skipped []Skipped
}

// Lookup returns the planned member serving kind, and field for per-field
// kinds.
func (p *Plan) Lookup(kind MemberKind, field string) (Member, bool) {
	for _, m := range p.Members {
		if m.Kind == kind && m.Field == field {
			return m, true
		}
	}
	return Member{}, false
}

// Has reports whether a member of kind is planned for field
func (p *Plan) Has(kind MemberKind, field string) bool {
	_, ok := p.Lookup(kind, field)
	return ok
}

// Names returns the qualified names of the planned members
func (p *Plan) Names() []string {
	out := make([]string, len(p.Members))
	for i, m := range p.Members {
		out[i] = m.Qualified()
	}
	return out
}

// NewPlan lists the members spec's capabilities call for, in generation
// order, and sets aside those existing already declares. existing may be
// nil. Two generated members sharing a name, or a method sharing a struct
// field's name, is a ConfigurationError.
func NewPlan(spec *record.RecordSpec, naming Naming, existing Existing) (*Plan, error) {
	pl := &planner{
		spec:     spec,
		existing: existing,
		declared: map[string]bool{},
		plan:     &Plan{Spec: spec, Naming: naming},
		claimed:  map[string]Member{},
	}
	for _, name := range spec.Existing() {
		pl.declared[name] = true
	}

	typeName := spec.Name()
	if !spec.Declared() {
		pl.addDecl(Member{Kind: MemberTypeDecl, Name: typeName})
	}
	if spec.Has(record.Constructor) {
		pl.addDecl(Member{Kind: MemberConstructor, Name: naming.Constructor(typeName)})
	}
	for _, f := range spec.Fields() {
		if spec.Has(record.Getter) && f.Getter {
			pl.addMethod(Member{Kind: MemberGetter, Name: naming.Getter(f), Receiver: typeName, Field: f.GoName})
		}
		if spec.Has(record.Setter) && f.Setter {
			pl.addMethod(Member{Kind: MemberSetter, Name: naming.Setter(f), Receiver: typeName, Field: f.GoName})
		}
	}
	if spec.Has(record.Equality) {
		pl.addMethod(Member{Kind: MemberEqual, Name: "Equal", Receiver: typeName})
		pl.addMethod(Member{Kind: MemberHash, Name: "Hash", Receiver: typeName})
	}
	if spec.Has(record.StringForm) {
		pl.addMethod(Member{Kind: MemberString, Name: "String", Receiver: typeName})
	}
	if spec.Has(record.Builder) {
		pl.addBuilder()
	}

	if pl.err != nil {
		return nil, pl.err
	}
	return pl.plan, nil
}

type planner struct {
	spec     *record.RecordSpec
	existing Existing
	declared map[string]bool // names the descriptor lists as existing
	plan     *Plan
	claimed  map[string]Member
	err      error
}

func (pl *planner) hasDecl(name string) bool {
	return pl.declared[name] || (pl.existing != nil && pl.existing.HasDecl(name))
}

func (pl *planner) hasMethod(typeName, name string) bool {
	if typeName == pl.spec.Name() && pl.declared[name] {
		return true
	}
	return pl.existing != nil && pl.existing.HasMethod(typeName, name)
}

// ownField reports whether name is a field of the record being planned
func (pl *planner) ownField(typeName, name string) bool {
	if typeName != pl.spec.Name() {
		return false
	}
	for _, f := range pl.spec.Fields() {
		if f.GoName == name {
			return true
		}
	}
	return false
}

// hasField reports whether the package declares a field name on typeName
// that the record does not describe
func (pl *planner) hasField(typeName, name string) bool {
	return pl.existing != nil && pl.existing.HasField(typeName, name)
}

func (pl *planner) addDecl(m Member) {
	if pl.hasDecl(m.Name) {
		pl.skip(m, fmt.Sprintf("%s is already declared in the package", m.Name))
		return
	}
	pl.claim(m)
}

func (pl *planner) addMethod(m Member) {
	if pl.hasMethod(m.Receiver, m.Name) {
		pl.skip(m, fmt.Sprintf("method %s is already declared", m.Qualified()))
		return
	}
	pl.claim(m)
}

// addBuilder plans the builder as a unit: a hand-written builder type
// leaves every builder member to the user.
func (pl *planner) addBuilder() {
	typeName := pl.spec.Name()
	naming := pl.plan.Naming
	builder := naming.BuilderType(typeName)

	members := []Member{
		{Kind: MemberBuilderType, Name: builder},
		{Kind: MemberBuilderFunc, Name: naming.BuilderFunc(typeName)},
	}
	for _, f := range pl.spec.Fields() {
		members = append(members, Member{Kind: MemberBuilderSetter, Name: naming.BuilderSetter(f), Receiver: builder, Field: f.GoName})
	}
	members = append(members, Member{Kind: MemberBuild, Name: "Build", Receiver: builder})

	if pl.hasDecl(builder) {
		for _, m := range members {
			pl.skip(m, fmt.Sprintf("builder type %s is declared by hand", builder))
		}
		return
	}
	for _, m := range members {
		if m.Receiver == "" {
			pl.addDecl(m)
		} else {
			pl.claim(m)
		}
	}
}

func (pl *planner) skip(m Member, reason string) {
	pl.plan.Skipped = append(pl.plan.Skipped, Skipped{Member: m, Reason: reason})
}

// claim adds m to the plan unless it collides with another generated
// member or a struct field.
func (pl *planner) claim(m Member) {
	if pl.err != nil {
		return
	}
	key := m.Qualified()
	if prev, dup := pl.claimed[key]; dup {
		pl.err = record.NewConfigurationError(pl.spec.Source(), pl.spec.Name(), m.Field,
			"generated %s and %s would both be named %s", describe(prev), describe(m), key)
		return
	}
	if m.Receiver != "" && pl.ownField(m.Receiver, m.Name) {
		pl.err = record.NewConfigurationError(pl.spec.Source(), pl.spec.Name(), m.Field,
			"generated %s %s collides with a field of the same name", describe(m), key)
		return
	}
	if m.Receiver != "" && pl.hasField(m.Receiver, m.Name) {
		pl.skip(m, fmt.Sprintf("%s collides with the hand-written field %s", describe(m), key))
		return
	}
	pl.claimed[key] = m
	pl.plan.Members = append(pl.plan.Members, m)
}

func describe(m Member) string {
	if m.Field != "" {
		return m.Kind.String() + " of field " + m.Field
	}
	return m.Kind.String()
}
