package synth

import (
	"bytes"
	"go/format"
	"sort"
	"strings"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
	"github.com/teranos/recordgen/record"
)

// Code is the synthesized source of one member.
type Code struct {
	Member  Member
	Source  string          // gofmt'd declaration including its doc comment
	Imports []record.Import // packages the declaration refers to, sorted by path
}

// view is the data a member template renders
type view struct {
	Type     string
	Recv     string
	Builder  string
	Doc      string
	Member   Member
	Field    fieldView
	Fields   []fieldView
	Defaults []fieldView
}

// Synthesize renders every planned member of plan in plan order. Members
// are rendered independently: no member's code depends on whether another
// was generated or declared by hand.
func Synthesize(plan *Plan) ([]Code, error) {
	codes := make([]Code, 0, len(plan.Members))
	for _, m := range plan.Members {
		code, err := SynthesizeMember(plan, m)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	logger.Debugw("Synthesized record",
		logger.FieldRecord, plan.Spec.Name(),
		logger.FieldGenerated, len(codes),
		logger.FieldSkipped, len(plan.Skipped))
	return codes, nil
}

// SynthesizeMember renders a single member of plan.
func SynthesizeMember(plan *Plan, m Member) (Code, error) {
	spec := plan.Spec
	typeName := spec.Name()
	recv := receiverName(typeName, spec)
	// Name and name both lower to the same parameter
	views := func(fields []record.FieldSpec) []fieldView {
		out := make([]fieldView, len(fields))
		params := make(map[string]bool, len(fields))
		for i, f := range fields {
			fv := newFieldView(f, recv, plan.Naming)
			for params[fv.Param] {
				fv.Param += "Value"
			}
			params[fv.Param] = true
			out[i] = fv
		}
		return out
	}

	v := view{
		Type:    typeName,
		Recv:    recv,
		Builder: plan.Naming.BuilderType(typeName),
		Member:  m,
	}
	imports := newImportSet()

	switch m.Kind {
	case MemberTypeDecl:
		v.Doc = spec.Doc()
		v.Fields = views(spec.Fields())
		imports.addFields(v.Fields)
	case MemberConstructor:
		v.Fields = views(spec.ConstructorFields())
		params := map[string]bool{}
		for _, f := range v.Fields {
			params[f.GoName] = true
		}
		for _, f := range views(spec.Fields()) {
			if !params[f.GoName] && f.HasDefault() {
				v.Defaults = append(v.Defaults, f)
			}
		}
		imports.addFields(v.Fields)
	case MemberGetter, MemberSetter, MemberBuilderSetter:
		f, ok := spec.Field(m.Field)
		if !ok {
			return Code{}, errors.Wrapf(errors.ErrNoSuchMember, "record %s has no field %s", typeName, m.Field)
		}
		v.Field = newFieldView(f, recv, plan.Naming)
		imports.addFields([]fieldView{v.Field})
	case MemberEqual:
		v.Fields = views(spec.EqualityFields())
		for _, f := range v.Fields {
			if f.usesRecordkit() {
				imports.add(RecordkitImport)
			}
		}
	case MemberHash:
		v.Fields = views(spec.EqualityFields())
		imports.add(RecordkitImport)
	case MemberString:
		v.Fields = views(spec.StringFields())
		imports.add(RecordkitImport)
	case MemberBuilderFunc:
		for _, f := range views(spec.Fields()) {
			if f.HasDefault() {
				v.Defaults = append(v.Defaults, f)
			}
		}
	case MemberBuilderType, MemberBuild:
	default:
		return Code{}, errors.Newf("cannot synthesize member kind %s", m.Kind)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, m.Kind.String(), v); err != nil {
		return Code{}, errors.Wrapf(err, "failed to render %s", m.Qualified())
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return Code{}, errors.Wrapf(err, "generated %s does not parse:\n%s", m.Qualified(), buf.String())
	}
	return Code{
		Member:  m,
		Source:  strings.TrimSpace(string(src)),
		Imports: imports.sorted(),
	}, nil
}

type importSet map[string]record.Import

func newImportSet() importSet {
	return importSet{}
}

func (s importSet) add(imp record.Import) {
	s[imp.Path] = imp
}

func (s importSet) addFields(fields []fieldView) {
	for _, f := range fields {
		for _, imp := range f.Imports {
			s.add(imp)
		}
	}
}

func (s importSet) sorted() []record.Import {
	out := make([]record.Import, 0, len(s))
	for _, imp := range s {
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
