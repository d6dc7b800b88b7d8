package descriptor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/internal/util"
	"github.com/teranos/recordgen/record"
)

// OpenAPI vendor extensions understood on documents and schemas
const (
	ExtCapabilities = "x-recordgen-capabilities"
	ExtPackage      = "x-recordgen-package"
	ExtOrder        = "x-order"
	ExtGoType       = "x-go-type"
)

const uuidImport = "github.com/google/uuid"

// DecodeOpenAPI turns every object schema under components/schemas into a
// record. Properties are ordered by x-order, then by name.
func DecodeOpenAPI(data []byte, source string) (record.File, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return record.File{}, record.NewConfigurationError(source, "", "", "malformed OpenAPI document: %v", err)
	}

	f := record.File{Source: source}
	if pkg, ok := doc.Extensions[ExtPackage].(string); ok {
		f.Package = pkg
	}
	f.Capabilities, err = stringList(doc.Extensions[ExtCapabilities])
	if err != nil {
		return f, record.NewConfigurationError(source, "", "", "%s: %v", ExtCapabilities, err)
	}
	if doc.Components == nil {
		return f, nil
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name, ref := range doc.Components.Schemas {
		if ref != nil && isObject(ref.Value) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	records := map[string]bool{}
	for _, name := range names {
		records[name] = true
	}

	for _, name := range names {
		d, err := schemaRecord(name, doc.Components.Schemas[name].Value, records)
		if err != nil {
			return f, record.NewConfigurationError(source, name, "", "%v", err)
		}
		f.Records = append(f.Records, d)
	}
	return f, nil
}

func schemaRecord(name string, s *openapi3.Schema, records map[string]bool) (record.Descriptor, error) {
	d := record.Descriptor{
		Name: util.ToPascalCase(name),
		Doc:  strings.TrimSpace(firstNonEmpty(s.Description, s.Title)),
	}
	caps, err := stringList(s.Extensions[ExtCapabilities])
	if err != nil {
		return d, errors.Wrap(err, ExtCapabilities)
	}
	d.Capabilities = caps

	required := map[string]bool{}
	for _, r := range s.Required {
		required[r] = true
	}

	imports := map[string]bool{}
	for _, prop := range orderedProperties(s.Properties) {
		ref := s.Properties[prop]
		typ, imp, err := goType(ref, records)
		if err != nil {
			return d, errors.Wrapf(err, "property %s", prop)
		}
		if imp != "" {
			imports[imp] = true
		}
		fd := record.FieldDescriptor{Name: prop, GoName: util.ToPascalCase(prop), Type: typ}
		if ref.Value != nil {
			fd.Doc = strings.TrimSpace(ref.Value.Description)
			fd.Default = ref.Value.Default
			if ref.Value.ReadOnly {
				fd.Mutable = util.Ptr(false)
			}
		}
		if required[prop] {
			fd.Required = util.Ptr(true)
		}
		fd.Tag = fmt.Sprintf(`json:"%s%s"`, prop, omitEmpty(required[prop]))
		d.Fields = append(d.Fields, fd)
	}
	for imp := range imports {
		d.Imports = append(d.Imports, imp)
	}
	sort.Strings(d.Imports)
	return d, nil
}

func omitEmpty(required bool) string {
	if required {
		return ""
	}
	return ",omitempty"
}

// goType maps a schema to a Go type expression and the import it needs.
func goType(ref *openapi3.SchemaRef, records map[string]bool) (string, string, error) {
	if ref == nil || ref.Value == nil {
		return "any", "", nil
	}
	if ref.Ref != "" {
		target := util.ToPascalCase(refName(ref.Ref))
		if records[target] || records[refName(ref.Ref)] {
			return "*" + target, "", nil
		}
	}
	s := ref.Value
	if t, ok := s.Extensions[ExtGoType].(string); ok && t != "" {
		return t, "", nil
	}

	switch {
	case s.Type.Is(openapi3.TypeString):
		switch s.Format {
		case "date-time", "date":
			return "time.Time", "", nil
		case "byte", "binary":
			return "[]byte", "", nil
		case "uuid":
			return "uuid.UUID", uuidImport, nil
		}
		return "string", "", nil
	case s.Type.Is(openapi3.TypeInteger):
		switch s.Format {
		case "int32":
			return "int32", "", nil
		case "int64":
			return "int64", "", nil
		}
		return "int", "", nil
	case s.Type.Is(openapi3.TypeNumber):
		if s.Format == "float" {
			return "float32", "", nil
		}
		return "float64", "", nil
	case s.Type.Is(openapi3.TypeBoolean):
		return "bool", "", nil
	case s.Type.Is(openapi3.TypeArray):
		elem, imp, err := goType(s.Items, records)
		if err != nil {
			return "", "", err
		}
		return "[]" + elem, imp, nil
	case isObject(s):
		if ap := s.AdditionalProperties.Schema; ap != nil {
			elem, imp, err := goType(ap, records)
			if err != nil {
				return "", "", err
			}
			return "map[string]" + elem, imp, nil
		}
		return "map[string]any", "", nil
	case s.Type == nil || len(s.Type.Slice()) == 0:
		return "any", "", nil
	}
	return "", "", errors.Newf("unsupported schema type %v", s.Type.Slice())
}

func isObject(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	if s.Type.Is(openapi3.TypeObject) {
		return true
	}
	return s.Type == nil && len(s.Properties) > 0
}

func refName(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

// orderedProperties sorts property names by their x-order extension; names
// without one follow in lexical order.
func orderedProperties(props openapi3.Schemas) []string {
	type entry struct {
		name  string
		order float64
		has   bool
	}
	entries := make([]entry, 0, len(props))
	for name, ref := range props {
		e := entry{name: name}
		if ref != nil && ref.Value != nil {
			e.order, e.has = number(ref.Value.Extensions[ExtOrder])
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.has != b.has {
			return a.has
		}
		if a.has && a.order != b.order {
			return a.order < b.order
		}
		return a.name < b.name
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// stringList accepts a list of strings or one comma or space separated string
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' }), nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Newf("expected strings, found %v (%T)", item, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.Newf("expected a list of strings, found %T", v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
