// Package scan discovers the members a package already declares, so that
// generation never replaces or duplicates user-authored code.
package scan

import (
	"sort"

	"github.com/teranos/recordgen/record"
)

// MemberSet records the declarations of one package: methods and struct
// fields per type, and package-level names.
type MemberSet struct {
	methods map[string]map[string]bool
	fields  map[string]map[string]bool
	decls   map[string]bool
}

// NewMemberSet returns an empty set
func NewMemberSet() *MemberSet {
	return &MemberSet{
		methods: map[string]map[string]bool{},
		fields:  map[string]map[string]bool{},
		decls:   map[string]bool{},
	}
}

// AddMethod records a method declared on typeName
func (m *MemberSet) AddMethod(typeName, name string) {
	add(m.methods, typeName, name)
}

// AddField records a struct field of typeName
func (m *MemberSet) AddField(typeName, name string) {
	add(m.fields, typeName, name)
}

// AddDecl records a package-level declaration
func (m *MemberSet) AddDecl(name string) {
	m.decls[name] = true
}

// AddExisting records the members a descriptor declares as already present
// on its record. Names count both as methods and package-level names.
func (m *MemberSet) AddExisting(spec *record.RecordSpec) {
	for _, name := range spec.Existing() {
		m.AddMethod(spec.Name(), name)
		m.AddDecl(name)
	}
}

// HasMethod reports whether typeName declares method name
func (m *MemberSet) HasMethod(typeName, name string) bool {
	if m == nil {
		return false
	}
	return m.methods[typeName][name]
}

// HasField reports whether struct typeName has field name
func (m *MemberSet) HasField(typeName, name string) bool {
	if m == nil {
		return false
	}
	return m.fields[typeName][name]
}

// HasDecl reports whether name is declared at package level
func (m *MemberSet) HasDecl(name string) bool {
	if m == nil {
		return false
	}
	return m.decls[name]
}

// Methods returns the sorted method names of typeName
func (m *MemberSet) Methods(typeName string) []string {
	if m == nil {
		return nil
	}
	return sortedKeys(m.methods[typeName])
}

// Decls returns the sorted package-level names
func (m *MemberSet) Decls() []string {
	if m == nil {
		return nil
	}
	return sortedKeys(m.decls)
}

// Merge adds every member of other to m
func (m *MemberSet) Merge(other *MemberSet) {
	if other == nil {
		return
	}
	for typ, names := range other.methods {
		for n := range names {
			m.AddMethod(typ, n)
		}
	}
	for typ, names := range other.fields {
		for n := range names {
			m.AddField(typ, n)
		}
	}
	for n := range other.decls {
		m.AddDecl(n)
	}
}

// Clone returns an independent copy
func (m *MemberSet) Clone() *MemberSet {
	out := NewMemberSet()
	out.Merge(m)
	return out
}

func add(index map[string]map[string]bool, typeName, name string) {
	names, ok := index[typeName]
	if !ok {
		names = map[string]bool{}
		index[typeName] = names
	}
	names[name] = true
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
