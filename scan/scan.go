package scan

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/recordgen/errors"
)

// GeneratedHeader is the first line of every file recordgen writes
const GeneratedHeader = "// Code generated by recordgen. DO NOT EDIT."

// Package is the hand-written part of one Go package: its syntax trees
// without generated files, and the members they declare.
type Package struct {
	Name    string
	Dir     string
	Fset    *token.FileSet
	Files   []*ast.File
	Members *MemberSet
}

// ParseDir parses the non-test Go files of dir. Files recordgen wrote, those
// starting with GeneratedHeader, are ignored; output of other generators
// counts as part of the package. A missing directory yields an empty package.
func ParseDir(dir string) (*Package, error) {
	pkg := &Package{Dir: dir, Fset: token.NewFileSet(), Members: NewMemberSet()}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return pkg, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		file, err := parser.ParseFile(pkg.Fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
		if err := pkg.add(file); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

// Load loads the package matching pattern relative to dir with
// golang.org/x/tools/go/packages. Only syntax is loaded: packages calling
// methods that are not generated yet still load.
func Load(ctx context.Context, dir, pattern string) (*Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load package %s", pattern)
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found for %s", pattern)
	}
	if len(pkgs) > 1 {
		return nil, errors.Newf("pattern %s matches %d packages, want one", pattern, len(pkgs))
	}

	lp := pkgs[0]
	if len(lp.Errors) > 0 {
		return nil, errors.Newf("package errors: %v", lp.Errors)
	}

	pkg := &Package{Name: lp.Name, Fset: lp.Fset, Members: NewMemberSet()}
	if len(lp.GoFiles) > 0 {
		pkg.Dir = filepath.Dir(lp.GoFiles[0])
	} else {
		pkg.Dir = dir
	}
	for _, file := range lp.Syntax {
		if err := pkg.add(file); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

// Filename returns the path file was parsed from
func (p *Package) Filename(file *ast.File) string {
	return p.Fset.Position(file.Package).Filename
}

func (p *Package) add(file *ast.File) error {
	if ownOutput(file) {
		return nil
	}
	if p.Name == "" {
		p.Name = file.Name.Name
	} else if file.Name.Name != p.Name {
		return errors.Newf("%s: found packages %s and %s in %s",
			p.Fset.Position(file.Package).Filename, p.Name, file.Name.Name, p.Dir)
	}
	p.Files = append(p.Files, file)
	collectMembers(file, p.Members)
	return nil
}

// ownOutput reports whether file carries GeneratedHeader above its package
// clause
func ownOutput(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if c.Text == GeneratedHeader {
				return true
			}
		}
	}
	return false
}

// collectMembers records the declarations of file
func collectMembers(file *ast.File, m *MemberSet) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				m.AddDecl(d.Name.Name)
				continue
			}
			if recv := ReceiverTypeName(d.Recv.List[0].Type); recv != "" {
				m.AddMethod(recv, d.Name.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					m.AddDecl(s.Name.Name)
					if st, ok := s.Type.(*ast.StructType); ok {
						for _, f := range st.Fields.List {
							for _, name := range FieldNames(f) {
								m.AddField(s.Name.Name, name)
							}
						}
					}
				case *ast.ValueSpec:
					for _, name := range s.Names {
						m.AddDecl(name.Name)
					}
				}
			}
		}
	}
}

// ReceiverTypeName returns the base type name of a method receiver, without
// pointer or type parameters.
func ReceiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return ReceiverTypeName(t.X)
	case *ast.ParenExpr:
		return ReceiverTypeName(t.X)
	case *ast.IndexExpr:
		return ReceiverTypeName(t.X)
	case *ast.IndexListExpr:
		return ReceiverTypeName(t.X)
	}
	return ""
}

// FieldNames returns the names a struct field declares; an embedded field
// is named after its type.
func FieldNames(f *ast.Field) []string {
	if len(f.Names) > 0 {
		names := make([]string, len(f.Names))
		for i, n := range f.Names {
			names[i] = n.Name
		}
		return names
	}
	if name := embeddedName(f.Type); name != "" {
		return []string{name}
	}
	return nil
}

func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return ""
}
