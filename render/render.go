// Package render assembles synthesized members into a Go source file.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/scan"
	"github.com/teranos/recordgen/synth"
)

// Header marks files written by recordgen. Packages scanned for existing
// members skip files carrying it.
const Header = scan.GeneratedHeader

// File is the content of one generated file.
type File struct {
	Name    string // file name used in diagnostics
	Package string
	Sources []string // descriptor paths the members were generated from
	Codes   []synth.Code
}

// Render lays out the header, package clause, imports and members of f and
// formats the result.
func Render(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, errors.Newf("%s: no package name", f.Name)
	}
	std, third, err := collectImports(f.Codes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", f.Name)
	}

	var buf bytes.Buffer
	buf.WriteString(Header + "\n")
	buf.WriteString("// Regenerate with: recordgen generate\n")
	for _, src := range f.Sources {
		fmt.Fprintf(&buf, "// Source: %s\n", src)
	}
	fmt.Fprintf(&buf, "\npackage %s\n", f.Package)

	if len(std)+len(third) > 0 {
		buf.WriteString("\nimport (\n")
		for _, imp := range std {
			fmt.Fprintf(&buf, "\t%s\n", imp)
		}
		if len(std) > 0 && len(third) > 0 {
			buf.WriteString("\n")
		}
		for _, imp := range third {
			fmt.Fprintf(&buf, "\t%s\n", imp)
		}
		buf.WriteString(")\n")
	}

	for _, code := range f.Codes {
		buf.WriteString("\n")
		buf.WriteString(code.Source)
		buf.WriteString("\n")
	}

	out, err := imports.Process(f.Name, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to format %s", f.Name)
	}
	return out, nil
}

// collectImports merges member imports and splits them into standard
// library and other packages, each sorted by path.
func collectImports(codes []synth.Code) (std, third []record.Import, err error) {
	byPath := map[string]record.Import{}
	byName := map[string]string{}
	for _, code := range codes {
		for _, imp := range code.Imports {
			if prev, ok := byPath[imp.Path]; ok {
				if prev.Name != imp.Name {
					return nil, nil, errors.Newf("package %q is imported as both %s and %s", imp.Path, prev.Name, imp.Name)
				}
				continue
			}
			if path, ok := byName[imp.Name]; ok {
				return nil, nil, errors.Newf("import name %s refers to both %q and %q", imp.Name, path, imp.Path)
			}
			byPath[imp.Path] = imp
			byName[imp.Name] = imp.Path
		}
	}
	for _, imp := range byPath {
		if isStdlib(imp.Path) {
			std = append(std, imp)
		} else {
			third = append(third, imp)
		}
	}
	sort.Slice(std, func(i, j int) bool { return std[i].Path < std[j].Path })
	sort.Slice(third, func(i, j int) bool { return third[i].Path < third[j].Path })
	return std, third, nil
}

// isStdlib reports whether path looks like a standard library package: its
// first element has no dot.
func isStdlib(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
