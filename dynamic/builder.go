package dynamic

import (
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/synth"
)

// Builder assembles an instance field by field. A value that does not fit
// its field is recorded and reported by Err; Build always succeeds.
type Builder struct {
	class  *Class
	values []any
	err    error
}

// Builder starts a builder with declared defaults applied.
func (c *Class) Builder() (*Builder, error) {
	if !c.plan.Has(synth.MemberBuild, "") {
		return nil, errors.Wrapf(errors.ErrNoSuchMember, "record %s has no builder", c.Name())
	}
	return &Builder{class: c, values: c.withDefaults().values}, nil
}

// Set assigns a field by declared or Go name
func (b *Builder) Set(field string, v any) *Builder {
	idx, err := b.class.field(field)
	if err != nil {
		return b.fail(err)
	}
	return b.assign(idx, v)
}

// Call assigns a field through its builder setter name, e.g. "Name"
func (b *Builder) Call(setter string, v any) *Builder {
	idx, ok := b.class.setters[setter]
	if !ok {
		return b.fail(errors.Wrapf(errors.ErrNoSuchMember, "%s has no method %s",
			b.class.plan.Naming.BuilderType(b.class.Name()), setter))
	}
	return b.assign(idx, v)
}

func (b *Builder) assign(idx int, v any) *Builder {
	coerced, err := record.Coerce(b.class.fields[idx], v)
	if err != nil {
		return b.fail(err)
	}
	b.values[idx] = coerced
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first assignment that failed
func (b *Builder) Err() error { return b.err }

// Build returns a new instance holding the assigned values. The builder
// stays usable; later assignments do not affect built instances.
func (b *Builder) Build() *Instance {
	values := make([]any, len(b.values))
	copy(values, b.values)
	return &Instance{class: b.class, values: values}
}
