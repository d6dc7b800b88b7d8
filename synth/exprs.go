package synth

import (
	"go/token"
	"strings"

	"github.com/teranos/recordgen/internal/util"
	"github.com/teranos/recordgen/record"
)

// RecordkitImport is the runtime package generated code calls into
var RecordkitImport = record.Import{Name: "recordkit", Path: "github.com/teranos/recordgen/recordkit"}

// fieldView is a field with the expressions its members are built from.
type fieldView struct {
	record.FieldSpec
	Param         string // parameter name in constructors and setters
	Zero          string // zero value literal, "" when the type has none
	Differs       string // condition true when the field differs between recv and other
	Hash          string // uint64 hash of the field
	Format        string // value handed to recordkit.F
	Getter        string
	Setter        string
	BuilderSetter string
}

// usesRecordkit reports whether comparing the field calls into recordkit
func (f fieldView) usesRecordkit() bool {
	return f.Kind == record.KindBytes || f.Kind == record.KindDeep
}

func newFieldView(f record.FieldSpec, recv string, naming Naming) fieldView {
	self := recv + "." + f.GoName
	other := "other." + f.GoName
	v := fieldView{
		FieldSpec:     f,
		Param:         paramName(f.GoName, recv),
		Zero:          zeroValue(f),
		Format:        self,
		Getter:        naming.Getter(f),
		Setter:        naming.Setter(f),
		BuilderSetter: naming.BuilderSetter(f),
	}

	switch f.Kind {
	case record.KindBool, record.KindString, record.KindInt, record.KindUint, record.KindFloat, record.KindComplex:
		v.Differs = self + " != " + other
	case record.KindTime:
		v.Differs = "!" + self + ".Equal(" + other + ")"
	case record.KindBytes:
		v.Differs = "!recordkit.BytesEqual(" + self + ", " + other + ")"
	case record.KindRecord:
		v.Differs = "!" + self + ".Equal(&" + other + ")"
		v.Format = "&" + self
	case record.KindRecordPtr:
		v.Differs = "!" + self + ".Equal(" + other + ")"
	default:
		v.Differs = "!recordkit.DeepEqual(" + self + ", " + other + ")"
	}

	switch f.Kind {
	case record.KindBool:
		v.Hash = "recordkit.HashBool(" + self + ")"
	case record.KindString:
		v.Hash = "recordkit.HashString(" + self + ")"
	case record.KindInt:
		v.Hash = "recordkit.HashInt(int64(" + self + "))"
	case record.KindUint:
		v.Hash = "recordkit.HashUint(uint64(" + self + "))"
	case record.KindFloat:
		v.Hash = "recordkit.HashFloat(float64(" + self + "))"
	case record.KindComplex:
		v.Hash = "recordkit.HashComplex(complex128(" + self + "))"
	case record.KindTime:
		v.Hash = "recordkit.HashTime(" + self + ")"
	case record.KindBytes:
		v.Hash = "recordkit.HashBytes(" + self + ")"
	case record.KindRecord, record.KindRecordPtr:
		v.Hash = self + ".Hash()"
	default:
		v.Hash = "recordkit.HashValue(" + self + ")"
	}
	return v
}

// paramName derives a parameter name from a field name that is not a
// keyword and shadows neither the record's nor the builder's receiver.
func paramName(goName, recv string) string {
	p := util.LowerFirst(goName)
	if token.IsKeyword(p) || p == recv || p == "b" || p == "other" {
		p += "Value"
	}
	return p
}

// zeroValue returns a literal for the zero value of f's type, or "" when
// the type is not known well enough to spell one.
func zeroValue(f record.FieldSpec) string {
	switch f.Kind {
	case record.KindBool:
		return "false"
	case record.KindString:
		return `""`
	case record.KindInt, record.KindUint, record.KindFloat, record.KindComplex:
		return "0"
	case record.KindBytes, record.KindRecordPtr:
		return "nil"
	case record.KindTime, record.KindRecord:
		return f.Type + "{}"
	}
	t := f.Type
	for _, prefix := range []string{"*", "[]", "map[", "chan ", "<-chan ", "chan<- ", "func(", "interface{"} {
		if strings.HasPrefix(t, prefix) {
			return "nil"
		}
	}
	if t == "any" || t == "error" {
		return "nil"
	}
	return ""
}

// receiverName picks a short receiver for typeName that shadows none of the
// package qualifiers the record's code refers to.
func receiverName(typeName string, spec *record.RecordSpec) string {
	taken := map[string]bool{RecordkitImport.Name: true, "other": true}
	for _, f := range spec.Fields() {
		for _, imp := range f.Imports {
			taken[imp.Name] = true
		}
	}
	for _, candidate := range []string{strings.ToLower(typeName[:1]), util.LowerFirst(typeName), "rec"} {
		if !taken[candidate] && !token.IsKeyword(candidate) {
			return candidate
		}
	}
	return "self"
}
