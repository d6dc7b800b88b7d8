package recordkit

import (
	"bytes"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// compareAll lets DeepEqual descend into unexported fields of any struct
var compareAll = cmp.Exporter(func(reflect.Type) bool { return true })

// DeepEqual reports whether a and b are deeply equal. Values with an
// Equal(T) bool method compare through it, so time.Time compares by instant
// and nested records by their own equality. nil and empty collections are
// distinct.
func DeepEqual(a, b any) bool {
	return cmp.Equal(a, b, compareAll)
}

// BytesEqual compares byte slices by content; nil equals only nil.
func BytesEqual(a, b []byte) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return bytes.Equal(a, b)
}
