package descriptor

import (
	"go/ast"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/teranos/recordgen/internal/util"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/scan"
)

// Directive marks a struct as a record. Arguments are capability names and
// an optional constructor=<mode>.
const Directive = "//recordgen:record"

// TagKey is the struct tag carrying per-field options
const TagKey = "record"

// FromPackage extracts the records marked with Directive from a scanned
// package, one File per Go source file that declares any.
func FromPackage(pkg *scan.Package) ([]record.File, error) {
	var files []record.File
	for _, file := range pkg.Files {
		f := record.File{Package: pkg.Name, Source: pkg.Filename(file)}
		imports := fileImports(file)

		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				args, marked := directiveArgs(doc)
				if !marked {
					continue
				}
				d, err := structRecord(f.Source, ts, doc, args)
				if err != nil {
					return nil, err
				}
				d.Imports = imports
				f.Records = append(f.Records, d)
			}
		}
		if len(f.Records) > 0 {
			files = append(files, f)
		}
	}
	return files, nil
}

// directiveArgs returns the arguments of the record directive in doc
func directiveArgs(doc *ast.CommentGroup) ([]string, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		return strings.Fields(rest), true
	}
	return nil, false
}

func structRecord(source string, ts *ast.TypeSpec, doc *ast.CommentGroup, args []string) (record.Descriptor, error) {
	name := ts.Name.Name
	d := record.Descriptor{Name: name, Declared: true}
	if doc != nil {
		d.Doc = strings.TrimSpace(doc.Text())
	}
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		return d, record.NewConfigurationError(source, name, "", "generic records are not supported")
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return d, record.NewConfigurationError(source, name, "", "%s marks a non-struct type", Directive)
	}

	for _, arg := range args {
		if mode, ok := strings.CutPrefix(arg, "constructor="); ok {
			d.Constructor = mode
			continue
		}
		d.Capabilities = append(d.Capabilities, arg)
	}

	for _, field := range st.Fields.List {
		tag := fieldTag(field)
		for _, goName := range scan.FieldNames(field) {
			fd, skip, err := parseFieldTag(tag, goName)
			if err != nil {
				return d, record.NewConfigurationError(source, name, goName, "%v", err)
			}
			if skip {
				continue
			}
			fd.GoName = goName
			fd.Type = types.ExprString(field.Type)
			fd.Doc = strings.TrimSpace(commentText(field))
			if field.Tag != nil {
				fd.Tag = strings.Trim(field.Tag.Value, "`")
			}
			d.Fields = append(d.Fields, fd)
		}
	}
	return d, nil
}

func fieldTag(field *ast.Field) string {
	if field.Tag == nil {
		return ""
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		raw = strings.Trim(field.Tag.Value, "`")
	}
	return reflect.StructTag(raw).Get(TagKey)
}

// parseFieldTag reads `record:"[name][,option...]"`. A name of "-" drops the
// field from the record; default= takes the rest of the tag verbatim.
func parseFieldTag(tag, goName string) (record.FieldDescriptor, bool, error) {
	fd := record.FieldDescriptor{Name: goName}
	if tag == "" {
		return fd, false, nil
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return fd, true, nil
	}
	if parts[0] != "" {
		fd.Name = parts[0]
	}
	for i := 1; i < len(parts); i++ {
		opt := strings.TrimSpace(parts[i])
		if value, ok := strings.CutPrefix(opt, "default="); ok {
			fd.Default = strings.Join(append([]string{value}, parts[i+1:]...), ",")
			break
		}
		switch opt {
		case "readonly":
			fd.Mutable = util.Ptr(false)
		case "mutable":
			fd.Mutable = util.Ptr(true)
		case "required":
			fd.Required = util.Ptr(true)
		case "noget":
			fd.Getter = util.Ptr(false)
		case "noset":
			fd.Setter = util.Ptr(false)
		case "noequal":
			fd.Equality = util.Ptr(false)
		case "nostring":
			fd.String = util.Ptr(false)
		case "":
		default:
			return fd, false, errFieldOption(opt)
		}
	}
	return fd, false, nil
}

type errFieldOption string

func (e errFieldOption) Error() string {
	return "unknown " + TagKey + " tag option " + strconv.Quote(string(e))
}

func commentText(field *ast.Field) string {
	if field.Doc != nil {
		return field.Doc.Text()
	}
	if field.Comment != nil {
		return field.Comment.Text()
	}
	return ""
}

// fileImports lists a file's imports as descriptor entries. Blank and dot
// imports are skipped.
func fileImports(file *ast.File) []string {
	var out []string
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := record.DefaultImportName(path)
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			name = spec.Name.Name
		}
		out = append(out, name+" "+path)
	}
	return out
}
