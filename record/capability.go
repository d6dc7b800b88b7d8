package record

import (
	"sort"
	"strings"

	"github.com/teranos/recordgen/errors"
)

// Capability is one independently generated family of members.
type Capability uint8

const (
	Getter Capability = 1 << iota
	Setter
	Equality
	StringForm
	Constructor
	Builder
)

// AllCapabilities lists every capability in generation order
var AllCapabilities = []Capability{Getter, Setter, Equality, StringForm, Constructor, Builder}

var capabilityNames = map[Capability]string{
	Getter:      "getter",
	Setter:      "setter",
	Equality:    "equality",
	StringForm:  "string",
	Constructor: "constructor",
	Builder:     "builder",
}

func (c Capability) String() string {
	if n, ok := capabilityNames[c]; ok {
		return n
	}
	return "unknown"
}

// CapabilitySet is a set of capabilities.
type CapabilitySet uint8

// NewCapabilitySet returns a set holding caps
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	return s.With(caps...)
}

// Has reports whether c is in the set
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// With returns the set extended by caps
func (s CapabilitySet) With(caps ...Capability) CapabilitySet {
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// Without returns the set minus caps
func (s CapabilitySet) Without(caps ...Capability) CapabilitySet {
	for _, c := range caps {
		s &^= CapabilitySet(c)
	}
	return s
}

// IsEmpty reports whether no capability is set
func (s CapabilitySet) IsEmpty() bool {
	return s == 0
}

// Names lists the set's capability names in generation order
func (s CapabilitySet) Names() []string {
	var names []string
	for _, c := range AllCapabilities {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return names
}

func (s CapabilitySet) String() string {
	return strings.Join(s.Names(), ",")
}

// MarshalText renders the set as a comma separated list
func (s CapabilitySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ConstructorMode selects the parameters of the generated constructor.
type ConstructorMode string

const (
	ConstructorAll      ConstructorMode = "all"      // one parameter per field
	ConstructorRequired ConstructorMode = "required" // immutable or required fields
	ConstructorNoArgs   ConstructorMode = "noargs"   // no parameters
)

// ParseConstructorMode parses a constructor mode name; "" yields "".
func ParseConstructorMode(s string) (ConstructorMode, error) {
	switch m := ConstructorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ConstructorAll, ConstructorRequired, ConstructorNoArgs:
		return m, nil
	}
	return "", errors.Newf("unknown constructor mode %q (want all, required or noargs)", s)
}

// capabilityAliases maps accepted names to capabilities
var capabilityAliases = map[string][]Capability{
	"getter":      {Getter},
	"getters":     {Getter},
	"setter":      {Setter},
	"setters":     {Setter},
	"equality":    {Equality},
	"equals":      {Equality},
	"string":      {StringForm},
	"stringform":  {StringForm},
	"tostring":    {StringForm},
	"constructor": {Constructor},
	"builder":     {Builder},
	"all":         AllCapabilities,
}

// Capabilities is the result of parsing a capability list, including what
// the data and value shorthands imply.
type Capabilities struct {
	Set       CapabilitySet
	Mode      ConstructorMode // implied constructor mode, "" when none
	Immutable bool            // fields default to immutable
}

// ParseCapabilities parses capability names. Besides the individual names it
// accepts "data" (getter, setter, equality, string, required-args
// constructor), "value" (getter, equality, string, all-args constructor,
// immutable fields) and "all".
func ParseCapabilities(names []string) (Capabilities, error) {
	var out Capabilities
	var unknown []string
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "":
			continue
		case "data":
			out.Set = out.Set.With(Getter, Setter, Equality, StringForm, Constructor)
			if out.Mode == "" {
				out.Mode = ConstructorRequired
			}
			continue
		case "value":
			out.Set = out.Set.With(Getter, Equality, StringForm, Constructor)
			out.Mode = ConstructorAll
			out.Immutable = true
			continue
		}
		caps, ok := capabilityAliases[name]
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		out.Set = out.Set.With(caps...)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Capabilities{}, errors.Newf("unknown capabilities: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
