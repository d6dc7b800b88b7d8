// Package dynamic binds the members of a record to values at runtime,
// without generating code.
//
// A Class is planned exactly like generated code: the same capabilities
// yield members with the same names, and methods registered with WithMethod
// are left alone the way hand-written methods are. Instances store scalar
// fields in a canonical form (int64, uint64, float64, bool, string) so that
// values assigned from any numeric type compare, hash and format like the
// generated equivalents.
//
// A Class is immutable and safe for concurrent use. Instances and builders
// are not.
package dynamic

import (
	"sort"
	"time"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/synth"
)

// Method is a member callable on an instance.
type Method func(self *Instance, args ...any) (any, error)

// Option configures Bind.
type Option func(*options)

type options struct {
	naming  synth.Naming
	methods map[string]Method
}

// WithNaming overrides the member naming, DefaultNaming otherwise
func WithNaming(n synth.Naming) Option {
	return func(o *options) { o.naming = n }
}

// WithMethod registers a user method. A generated member of the same name
// is not bound.
func WithMethod(name string, fn Method) Option {
	return func(o *options) { o.methods[name] = fn }
}

// Class is a record bound at runtime.
type Class struct {
	spec    *record.RecordSpec
	plan    *synth.Plan
	fields  []record.FieldSpec
	index   map[string]int    // field position by declared and Go name
	methods map[string]Method // instance methods by name

	equality []int          // positions compared by Equal and Hash
	strform  []int          // positions rendered by String
	setters  map[string]int // builder setter name to field position
}

// userMembers reports user methods as existing methods of the record
type userMembers struct {
	typeName string
	names    map[string]Method
}

func (u userMembers) HasMethod(typeName, name string) bool {
	_, ok := u.names[name]
	return ok && typeName == u.typeName
}

func (u userMembers) HasField(string, string) bool { return false }

func (u userMembers) HasDecl(string) bool { return false }

// Bind plans spec's members and binds them to runtime implementations.
func Bind(spec *record.RecordSpec, opts ...Option) (*Class, error) {
	o := options{naming: synth.DefaultNaming(), methods: map[string]Method{}}
	for _, opt := range opts {
		opt(&o)
	}

	plan, err := synth.NewPlan(spec, o.naming, userMembers{typeName: spec.Name(), names: o.methods})
	if err != nil {
		return nil, err
	}

	c := &Class{
		spec:    spec,
		plan:    plan,
		fields:  spec.Fields(),
		index:   map[string]int{},
		methods: map[string]Method{},
		setters: map[string]int{},
	}
	for i, f := range c.fields {
		c.index[f.Name] = i
		c.index[f.GoName] = i
		if f.IncludeInEquality {
			c.equality = append(c.equality, i)
		}
		if f.IncludeInStringForm {
			c.strform = append(c.strform, i)
		}
	}

	for _, m := range plan.Members {
		if m.Kind == synth.MemberBuilderSetter {
			c.setters[m.Name] = c.index[m.Field]
		}
		if m.Receiver != spec.Name() {
			continue
		}
		if fn := c.generated(m); fn != nil {
			c.methods[m.Name] = fn
		}
	}
	for name, fn := range o.methods {
		c.methods[name] = fn
	}

	logger.Debugw("Bound record",
		logger.FieldRecord, spec.Name(),
		logger.FieldGenerated, len(plan.Members),
		logger.FieldSkipped, len(plan.Skipped))
	return c, nil
}

// generated returns the runtime implementation of a planned instance method
func (c *Class) generated(m synth.Member) Method {
	switch m.Kind {
	case synth.MemberGetter:
		i := c.index[m.Field]
		return func(self *Instance, args ...any) (any, error) {
			if err := arity(m.Name, args, 0); err != nil {
				return nil, err
			}
			return self.values[i], nil
		}
	case synth.MemberSetter:
		i := c.index[m.Field]
		return func(self *Instance, args ...any) (any, error) {
			if err := arity(m.Name, args, 1); err != nil {
				return nil, err
			}
			v, err := record.Coerce(c.fields[i], args[0])
			if err != nil {
				return nil, err
			}
			self.values[i] = v
			return nil, nil
		}
	case synth.MemberEqual:
		return func(self *Instance, args ...any) (any, error) {
			if err := arity(m.Name, args, 1); err != nil {
				return nil, err
			}
			other, _ := args[0].(*Instance)
			return c.equal(self, other), nil
		}
	case synth.MemberHash:
		return func(self *Instance, args ...any) (any, error) {
			if err := arity(m.Name, args, 0); err != nil {
				return nil, err
			}
			return c.hash(self), nil
		}
	case synth.MemberString:
		return func(self *Instance, args ...any) (any, error) {
			if err := arity(m.Name, args, 0); err != nil {
				return nil, err
			}
			return c.stringForm(self), nil
		}
	}
	return nil
}

func arity(name string, args []any, want int) error {
	if len(args) != want {
		return errors.Newf("%s takes %d arguments, got %d", name, want, len(args))
	}
	return nil
}

// Name returns the record type name
func (c *Class) Name() string { return c.spec.Name() }

// Spec returns the record the class is bound to
func (c *Class) Spec() *record.RecordSpec { return c.spec }

// Plan returns the member plan the class was bound from
func (c *Class) Plan() *synth.Plan { return c.plan }

// Methods returns the names of the instance methods, sorted
func (c *Class) Methods() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasMethod reports whether instances respond to name
func (c *Class) HasMethod(name string) bool {
	_, ok := c.methods[name]
	return ok
}

// Zero returns an instance holding zero values, like &T{}. Defaults are
// not applied.
func (c *Class) Zero() *Instance {
	inst := &Instance{class: c, values: make([]any, len(c.fields))}
	for i, f := range c.fields {
		inst.values[i] = zeroValue(f)
	}
	return inst
}

// withDefaults returns a zero instance with declared defaults applied
func (c *Class) withDefaults() *Instance {
	inst := c.Zero()
	for i, f := range c.fields {
		if f.HasDefault() {
			// narrows float32 defaults; the normalizer already checked the rest
			if v, err := record.Coerce(f, f.Default); err == nil {
				inst.values[i] = v
			}
		}
	}
	return inst
}

// New calls the record's constructor: one argument per constructor field
// in declaration order. Fields that are not parameters keep their default.
func (c *Class) New(args ...any) (*Instance, error) {
	m, ok := c.plan.Lookup(synth.MemberConstructor, "")
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoSuchMember, "record %s has no constructor", c.Name())
	}
	params := c.spec.ConstructorFields()
	if len(args) != len(params) {
		return nil, errors.Newf("%s takes %d arguments, got %d", m.Name, len(params), len(args))
	}
	inst := c.withDefaults()
	for i, f := range params {
		v, err := record.Coerce(f, args[i])
		if err != nil {
			return nil, errors.Wrapf(err, "%s", m.Name)
		}
		inst.values[c.index[f.GoName]] = v
	}
	return inst, nil
}

// field resolves a declared or Go field name
func (c *Class) field(name string) (int, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, errors.Wrapf(errors.ErrNoSuchMember, "record %s has no field %s", c.Name(), name)
	}
	return i, nil
}

// zeroValue returns the stored zero value of a field
func zeroValue(f record.FieldSpec) any {
	switch f.Kind {
	case record.KindBool:
		return false
	case record.KindString:
		return ""
	case record.KindInt:
		return int64(0)
	case record.KindUint:
		return uint64(0)
	case record.KindFloat:
		if f.Type == "float32" {
			return float32(0)
		}
		return float64(0)
	case record.KindComplex:
		return complex128(0)
	case record.KindTime:
		return time.Time{}
	case record.KindBytes:
		return []byte(nil)
	}
	return nil
}
