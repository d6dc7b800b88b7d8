package dynamic

import (
	"fmt"
	"reflect"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
	"github.com/teranos/recordgen/recordkit"
	"github.com/teranos/recordgen/synth"
)

// Instance is one value of a Class.
type Instance struct {
	class  *Class
	values []any
}

// Class returns the class of i
func (i *Instance) Class() *Class { return i.class }

// Value returns a field's stored value whether or not the record has a
// getter for it.
func (i *Instance) Value(field string) (any, error) {
	idx, err := i.class.field(field)
	if err != nil {
		return nil, err
	}
	return i.values[idx], nil
}

// Get calls the getter of field
func (i *Instance) Get(field string) (any, error) {
	name, err := i.accessor(synth.MemberGetter, field)
	if err != nil {
		return nil, err
	}
	return i.Call(name)
}

// Set calls the setter of field
func (i *Instance) Set(field string, v any) error {
	name, err := i.accessor(synth.MemberSetter, field)
	if err != nil {
		return err
	}
	_, err = i.Call(name, v)
	return err
}

// accessor returns the member name serving field for kind
func (i *Instance) accessor(kind synth.MemberKind, field string) (string, error) {
	idx, err := i.class.field(field)
	if err != nil {
		return "", err
	}
	f := i.class.fields[idx]
	m, ok := i.class.plan.Lookup(kind, f.GoName)
	if !ok {
		return "", errors.Wrapf(errors.ErrNoSuchMember, "record %s has no %s for field %s", i.class.Name(), kind, f.Name)
	}
	return m.Name, nil
}

// Call invokes the instance method name
func (i *Instance) Call(name string, args ...any) (any, error) {
	fn, ok := i.class.methods[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoSuchMember, "record %s has no method %s", i.class.Name(), name)
	}
	return fn(i, args...)
}

// Equal reports whether i and other are equal under the record's equality.
// Without the equality capability instances are equal only to themselves.
func (i *Instance) Equal(other *Instance) bool {
	res, ok := i.dispatch("Equal", other)
	if !ok {
		return i == other
	}
	b, isBool := res.(bool)
	return isBool && b
}

// Hash returns the record's hash. Without the equality capability it is
// derived from the instance's identity.
func (i *Instance) Hash() uint64 {
	res, ok := i.dispatch("Hash")
	if h, isHash := res.(uint64); ok && isHash {
		return h
	}
	if i == nil {
		return recordkit.HashNull
	}
	return recordkit.HashUint(uint64(reflect.ValueOf(i).Pointer()))
}

// String returns the record's string form. Without the string capability
// it names the type and the instance's address.
func (i *Instance) String() string {
	if i == nil {
		return recordkit.NilString
	}
	res, ok := i.dispatch("String")
	if s, isString := res.(string); ok && isString {
		return s
	}
	return fmt.Sprintf("%s@%p", i.class.Name(), i)
}

// dispatch calls a method if the class has it. Methods that fail are
// reported as absent.
func (i *Instance) dispatch(name string, args ...any) (any, bool) {
	if i == nil {
		return nil, false
	}
	fn, ok := i.class.methods[name]
	if !ok {
		return nil, false
	}
	res, err := fn(i, args...)
	if err != nil {
		logger.Warnw("Record method failed",
			logger.FieldRecord, i.class.Name(),
			logger.FieldMember, name,
			logger.FieldError, err)
		return nil, false
	}
	return res, true
}

func (c *Class) equal(a, b *Instance) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.class != b.class {
		return false
	}
	for _, idx := range c.equality {
		if !valuesEqual(a.values[idx], b.values[idx]) {
			return false
		}
	}
	return true
}

// valuesEqual compares stored values. Scalars are stored canonically, so
// comparable values compare with ==; times compare by instant and nested
// instances through their Equal.
func valuesEqual(x, y any) bool {
	switch xv := x.(type) {
	case nil:
		return y == nil
	case bool, string, int64, uint64, float32, float64, complex128:
		return x == y
	case []byte:
		yv, ok := y.([]byte)
		return ok && recordkit.BytesEqual(xv, yv)
	}
	return recordkit.DeepEqual(x, y)
}

func (c *Class) hash(inst *Instance) uint64 {
	if inst == nil {
		return recordkit.HashNull
	}
	h := recordkit.HashSeed
	for _, idx := range c.equality {
		h = recordkit.Combine(h, recordkit.HashValue(inst.values[idx]))
	}
	return h
}

func (c *Class) stringForm(inst *Instance) string {
	if inst == nil {
		return recordkit.NilString
	}
	fields := make([]recordkit.Field, len(c.strform))
	for n, idx := range c.strform {
		fields[n] = recordkit.F(c.fields[idx].Name, inst.values[idx])
	}
	return recordkit.StringForm(c.Name(), fields...)
}
