package synth

import (
	"github.com/teranos/recordgen/internal/util"
	"github.com/teranos/recordgen/record"
)

// Naming holds the prefixes and suffixes generated member names are built
// from.
type Naming struct {
	GetterPrefix        string
	SetterPrefix        string
	ConstructorPrefix   string
	BuilderSuffix       string
	BuilderSetterPrefix string
}

// DefaultNaming returns Go-style names: Name(), SetName(), NewUser(),
// UserBuilder.
func DefaultNaming() Naming {
	return Naming{
		SetterPrefix:      "Set",
		ConstructorPrefix: "New",
		BuilderSuffix:     "Builder",
	}
}

// Getter returns the accessor name of f. An accessor never shares its
// field's identifier; "Get" is prepended when it would.
func (n Naming) Getter(f record.FieldSpec) string {
	name := n.GetterPrefix + exported(f.GoName)
	if name == f.GoName {
		name = "Get" + exported(f.GoName)
	}
	return name
}

// Setter returns the mutator name of f
func (n Naming) Setter(f record.FieldSpec) string {
	return n.SetterPrefix + exported(f.GoName)
}

// Constructor returns the constructor function name of a record
func (n Naming) Constructor(typeName string) string {
	return n.ConstructorPrefix + typeName
}

// BuilderType returns the builder type name of a record
func (n Naming) BuilderType(typeName string) string {
	return typeName + n.BuilderSuffix
}

// BuilderFunc returns the function creating a builder
func (n Naming) BuilderFunc(typeName string) string {
	return n.ConstructorPrefix + n.BuilderType(typeName)
}

// BuilderSetter returns the chained builder method name of f
func (n Naming) BuilderSetter(f record.FieldSpec) string {
	return n.BuilderSetterPrefix + exported(f.GoName)
}

// exported turns a field identifier into the exported stem of its member
// names: "name" -> "Name", "id" -> "ID".
func exported(goName string) string {
	return util.ToPascalCase(goName)
}
