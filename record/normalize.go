package record

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"dario.cat/mergo"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/internal/util"
)

// Option configures Normalize
type Option func(*options)

type options struct {
	defaultCapabilities []string
}

// WithDefaultCapabilities sets the capabilities of records whose descriptor
// and file name none.
func WithDefaultCapabilities(names ...string) Option {
	return func(o *options) {
		o.defaultCapabilities = names
	}
}

type pendingRecord struct {
	file *File
	desc *Descriptor
	caps Capabilities
	mode ConstructorMode
}

// Normalize validates descriptor files and builds one RecordSpec per record,
// in file then declaration order. Any violation yields a ConfigurationError
// and no specs.
func Normalize(files []File, opts ...Option) ([]*RecordSpec, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var pending []pendingRecord
	sources := map[string]string{}
	for fi := range files {
		f := &files[fi]
		if err := validateFile(f); err != nil {
			return nil, err
		}
		fileMode, err := ParseConstructorMode(f.Constructor)
		if err != nil {
			return nil, NewConfigurationError(f.Source, "", "", "%v", err)
		}
		for di := range f.Records {
			d := &f.Records[di]
			if prev, dup := sources[d.Name]; dup {
				return nil, NewConfigurationError(f.Source, d.Name, "", "duplicate record name (first declared in %s)", prev)
			}
			sources[d.Name] = sourceOrUnknown(f.Source)

			names := d.Capabilities
			if len(names) == 0 {
				names = f.Capabilities
			}
			if len(names) == 0 {
				names = o.defaultCapabilities
			}
			caps, err := ParseCapabilities(names)
			if err != nil {
				return nil, NewConfigurationError(f.Source, d.Name, "", "%v", err)
			}

			mode, err := ParseConstructorMode(d.Constructor)
			if err != nil {
				return nil, NewConfigurationError(f.Source, d.Name, "", "%v", err)
			}
			for _, fallback := range []ConstructorMode{fileMode, caps.Mode, ConstructorAll} {
				if mode == "" {
					mode = fallback
				}
			}
			pending = append(pending, pendingRecord{file: f, desc: d, caps: caps, mode: mode})
		}
	}

	// Nested records are compared through their own Equal only when they have one
	nested := map[string]bool{}
	for _, p := range pending {
		if p.caps.Set.Has(Equality) {
			nested[p.desc.Name] = true
		}
	}

	specs := make([]*RecordSpec, 0, len(pending))
	for _, p := range pending {
		spec, err := buildSpec(p, nested)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func sourceOrUnknown(s string) string {
	if s == "" {
		return "<input>"
	}
	return s
}

func buildSpec(p pendingRecord, nested map[string]bool) (*RecordSpec, error) {
	f, d := p.file, p.desc
	fail := func(field, format string, args ...interface{}) error {
		return NewConfigurationError(f.Source, d.Name, field, format, args...)
	}

	imports, declared, err := resolveImports(append(append([]string(nil), f.Imports...), d.Imports...))
	if err != nil {
		return nil, fail("", "%v", err)
	}

	spec := &RecordSpec{
		name:     d.Name,
		doc:      d.Doc,
		pkg:      f.Package,
		source:   f.Source,
		caps:     p.caps.Set,
		mode:     p.mode,
		imports:  declared,
		existing: append([]string(nil), d.Existing...),
		declared: d.Declared,
	}

	base := FieldOptions{
		Mutable:  util.Ptr(!p.caps.Immutable),
		Required: util.Ptr(false),
		Getter:   util.Ptr(true),
		Setter:   util.Ptr(true),
		Equality: util.Ptr(true),
		String:   util.Ptr(true),
	}

	paths := make(map[string]string, len(imports))
	for name, imp := range imports {
		paths[name] = imp.Path
	}

	names := map[string]bool{}
	for _, fd := range d.Fields {
		goName := fd.GoName
		if goName == "" {
			goName = fd.Name
			if !token.IsIdentifier(goName) || strings.ContainsRune(goName, '_') {
				if util.IsExported(fd.Name) {
					goName = util.ToPascalCase(fd.Name)
				} else {
					goName = util.ToCamelCase(fd.Name)
				}
			}
			// "type" cannot name a field; "Type" can
			if token.IsKeyword(goName) {
				goName = util.ToPascalCase(fd.Name)
			}
		}
		if !token.IsIdentifier(goName) || goName == "_" {
			return nil, fail(fd.Name, "name cannot be used as a Go identifier")
		}
		for _, n := range []string{fd.Name, goName} {
			if names[n] {
				return nil, fail(fd.Name, "duplicate field name %q", n)
			}
		}
		names[fd.Name], names[goName] = true, true

		expr, err := parser.ParseExpr(fd.Type)
		if err != nil || !isTypeExpr(expr) {
			return nil, fail(fd.Name, "cannot parse type %q", fd.Type)
		}

		var fieldImports []Import
		for _, q := range qualifiers(expr) {
			imp, ok := imports[q]
			if !ok {
				return nil, errors.WithHint(
					fail(fd.Name, "unresolved package qualifier %q in type %q", q, fd.Type),
					"declare the package under imports")
			}
			fieldImports = append(fieldImports, imp)
		}
		sort.Slice(fieldImports, func(i, j int) bool { return fieldImports[i].Path < fieldImports[j].Path })

		kind, bits := classify(expr, nested, paths)

		opts := fd.FieldOptions
		if err := mergo.Merge(&opts, d.Defaults, mergo.WithoutDereference); err != nil {
			return nil, fail(fd.Name, "merging record defaults: %v", err)
		}
		if err := mergo.Merge(&opts, base, mergo.WithoutDereference); err != nil {
			return nil, fail(fd.Name, "merging capability defaults: %v", err)
		}

		field := FieldSpec{
			Name:                fd.Name,
			GoName:              goName,
			Type:                types.ExprString(expr),
			Kind:                kind,
			Mutable:             *opts.Mutable,
			Required:            *opts.Required,
			Getter:              *opts.Getter,
			Setter:              *opts.Setter && *opts.Mutable,
			IncludeInEquality:   *opts.Equality,
			IncludeInStringForm: *opts.String,
			Doc:                 fd.Doc,
			Tag:                 fd.Tag,
			Imports:             fieldImports,
		}
		if fd.Default != nil {
			value, lit, err := coerceDefault(kind, bits, fd.Default)
			if err != nil {
				return nil, fail(fd.Name, "default %v", err)
			}
			field.Default, field.DefaultExpr = value, lit
		}
		spec.fields = append(spec.fields, field)
	}

	return spec, nil
}

// resolveImports parses declared imports and returns them by qualifier,
// together with the well-known packages. declared lists only the parsed ones.
func resolveImports(entries []string) (map[string]Import, []Import, error) {
	byName := map[string]Import{}
	for name := range wellKnownImports {
		imp, _ := WellKnownImport(name)
		byName[name] = imp
	}
	var declared []Import
	explicit := map[string]bool{}
	for _, entry := range entries {
		imp, ok := ParseImport(entry)
		if !ok || !token.IsIdentifier(imp.Name) {
			return nil, nil, errors.Newf("malformed import %q", entry)
		}
		if explicit[imp.Name] {
			if byName[imp.Name].Path != imp.Path {
				return nil, nil, errors.Newf("import name %q refers to both %q and %q", imp.Name, byName[imp.Name].Path, imp.Path)
			}
			continue
		}
		explicit[imp.Name] = true
		byName[imp.Name] = imp
		declared = append(declared, imp)
	}
	return byName, declared, nil
}

// isTypeExpr reports whether expr has the shape of a type
func isTypeExpr(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := t.X.(*ast.Ident)
		return ok
	case *ast.ParenExpr:
		return isTypeExpr(t.X)
	case *ast.StarExpr:
		return isTypeExpr(t.X)
	case *ast.ArrayType:
		return isTypeExpr(t.Elt)
	case *ast.MapType:
		return isTypeExpr(t.Key) && isTypeExpr(t.Value)
	case *ast.ChanType:
		return isTypeExpr(t.Value)
	case *ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	case *ast.IndexExpr:
		return isTypeExpr(t.X) && isTypeExpr(t.Index)
	case *ast.IndexListExpr:
		if !isTypeExpr(t.X) {
			return false
		}
		for _, idx := range t.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	}
	return false
}
