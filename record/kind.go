package record

import (
	"go/ast"
)

// Kind classifies a field type by how generated code compares, hashes and
// renders it.
type Kind int

const (
	KindDeep      Kind = iota // slices, maps, pointers, named and interface types
	KindBool                  // bool
	KindString                // string
	KindInt                   // int, int8..int64, rune
	KindUint                  // uint, uint8..uint64, byte, uintptr
	KindFloat                 // float32, float64
	KindComplex               // complex64, complex128
	KindTime                  // time.Time
	KindBytes                 // []byte
	KindRecord                // another record held by value
	KindRecordPtr             // pointer to another record
)

var kindNames = map[Kind]string{
	KindDeep:      "deep",
	KindBool:      "bool",
	KindString:    "string",
	KindInt:       "int",
	KindUint:      "uint",
	KindFloat:     "float",
	KindComplex:   "complex",
	KindTime:      "time",
	KindBytes:     "bytes",
	KindRecord:    "record",
	KindRecordPtr: "record-pointer",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText renders the kind by name in inspect output
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Comparable reports whether values of the kind compare with ==
func (k Kind) Comparable() bool {
	switch k {
	case KindBool, KindString, KindInt, KindUint, KindFloat, KindComplex:
		return true
	}
	return false
}

// Defaultable reports whether a field of the kind may declare a default
func (k Kind) Defaultable() bool {
	switch k {
	case KindBool, KindString, KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// basicKinds maps predeclared type names to their kind and bit size
var basicKinds = map[string]struct {
	kind Kind
	bits int
}{
	"bool":       {KindBool, 0},
	"string":     {KindString, 0},
	"int":        {KindInt, 64},
	"int8":       {KindInt, 8},
	"int16":      {KindInt, 16},
	"int32":      {KindInt, 32},
	"rune":       {KindInt, 32},
	"int64":      {KindInt, 64},
	"uint":       {KindUint, 64},
	"uint8":      {KindUint, 8},
	"byte":       {KindUint, 8},
	"uint16":     {KindUint, 16},
	"uint32":     {KindUint, 32},
	"uint64":     {KindUint, 64},
	"uintptr":    {KindUint, 64},
	"float32":    {KindFloat, 32},
	"float64":    {KindFloat, 64},
	"complex64":  {KindComplex, 64},
	"complex128": {KindComplex, 128},
}

// classify returns the kind and bit size of a parsed type expression.
// records holds the names of records in the same pass; imports maps
// qualifiers to import paths.
func classify(expr ast.Expr, records map[string]bool, imports map[string]string) (Kind, int) {
	switch t := expr.(type) {
	case *ast.ParenExpr:
		return classify(t.X, records, imports)
	case *ast.Ident:
		if b, ok := basicKinds[t.Name]; ok {
			return b.kind, b.bits
		}
		if records[t.Name] {
			return KindRecord, 0
		}
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok && imports[x.Name] == "time" && t.Sel.Name == "Time" {
			return KindTime, 0
		}
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok && records[id.Name] {
			return KindRecordPtr, 0
		}
	case *ast.ArrayType:
		if t.Len == nil {
			if id, ok := t.Elt.(*ast.Ident); ok && (id.Name == "byte" || id.Name == "uint8") {
				return KindBytes, 0
			}
		}
	}
	return KindDeep, 0
}

// qualifiers returns the package qualifiers referenced by a type expression
func qualifiers(expr ast.Expr) []string {
	var out []string
	seen := map[string]bool{}
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			out = append(out, id.Name)
		}
		return false
	})
	return out
}
