package recordkit

import (
	"fmt"
	"reflect"
	"strings"
)

// NilString renders nil values in the string form
const NilString = "<nil>"

// Field is one name=value pair of a string form
type Field struct {
	Name  string
	Value any
}

// F builds a Field
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Format renders a value for the string form. nil pointers, maps, slices and
// interfaces render as NilString; Stringers and errors render through their
// methods; other pointers render their target.
func Format(v any) string {
	if v == nil {
		return NilString
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return NilString
		}
	}
	switch s := v.(type) {
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	}
	if rv.Kind() == reflect.Ptr {
		return Format(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// StringForm renders `Type(name=value, ...)`
func StringForm(typeName string, fields ...Field) string {
	var b strings.Builder
	b.WriteString(typeName)
	b.WriteByte('(')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(Format(f.Value))
	}
	b.WriteByte(')')
	return b.String()
}
