// Package recordkit is the runtime support imported by generated record code
// and used by runtime-bound records: hash combination, deep equality and the
// string form.
//
// Hash combination is fixed and order dependent:
//
//	h := HashSeed
//	for each included field, in declaration order:
//	    h = Combine(h, fieldHash) // h*HashPrime + fieldHash
//
// A nil value contributes HashNull. Values that are equal under the
// generated Equal always produce the same hash.
package recordkit

import (
	"hash/fnv"
	"math"
	"reflect"
	"sort"
	"time"
)

// Hash combination constants
const (
	HashSeed  uint64 = 1
	HashPrime uint64 = 59
	HashNull  uint64 = 43

	hashTrue  uint64 = 79
	hashFalse uint64 = 97
)

// Hasher is implemented by generated records.
type Hasher interface {
	Hash() uint64
}

// Combine folds a field hash into an accumulated hash
func Combine(h, v uint64) uint64 {
	return h*HashPrime + v
}

// HashBool hashes a bool
func HashBool(b bool) uint64 {
	if b {
		return hashTrue
	}
	return hashFalse
}

// HashInt hashes a signed integer of any width
func HashInt(v int64) uint64 {
	return HashUint(uint64(v))
}

// HashUint hashes an unsigned integer of any width
func HashUint(v uint64) uint64 {
	return v ^ (v >> 32)
}

// canonicalNaN is the bit pattern every NaN hashes as
const canonicalNaN = 0x7ff8000000000001

// HashFloat hashes a float. -0 hashes as 0 since they compare equal.
func HashFloat(f float64) uint64 {
	if f == 0 {
		return HashUint(0)
	}
	if math.IsNaN(f) {
		return HashUint(canonicalNaN)
	}
	return HashUint(math.Float64bits(f))
}

// HashComplex hashes a complex number
func HashComplex(c complex128) uint64 {
	return Combine(Combine(HashSeed, HashFloat(real(c))), HashFloat(imag(c)))
}

// HashString hashes a string with 64-bit FNV-1a
func HashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// HashBytes hashes a byte slice; nil hashes as HashNull
func HashBytes(b []byte) uint64 {
	if b == nil {
		return HashNull
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

// HashTime hashes the instant t denotes, ignoring location and monotonic
// clock reading, matching time.Time.Equal.
func HashTime(t time.Time) uint64 {
	return Combine(HashInt(t.Unix()), uint64(t.Nanosecond()))
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	hasherType = reflect.TypeOf((*Hasher)(nil)).Elem()
	boolType   = reflect.TypeOf(true)
)

// HashValue hashes any value deterministically within a process, consistent
// with DeepEqual: values DeepEqual reports equal hash equal.
//
// Hashers contribute Hash(). Map entries are combined order-independently.
// Types compared through their own Equal method without a Hash method
// contribute only their type.
func HashValue(v any) uint64 {
	if v == nil {
		return HashNull
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		// An addressable root lets pointer-receiver Hash methods and
		// unexported time fields be reached
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}
	return hashReflect(rv, map[uintptr]bool{})
}

func hashReflect(rv reflect.Value, visiting map[uintptr]bool) uint64 {
	if !rv.IsValid() {
		return HashNull
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return HashNull
		}
	}
	if rv.Kind() == reflect.Interface {
		return hashReflect(rv.Elem(), visiting)
	}

	t := rv.Type()
	if t == timeType {
		if tm, ok := valueTime(rv); ok {
			return HashTime(tm)
		}
		return HashString(t.String())
	}
	if t.Implements(hasherType) {
		if rv.CanInterface() {
			return rv.Interface().(Hasher).Hash()
		}
		return HashString(t.String())
	}
	if hasEqualMethod(t) {
		return HashString(t.String())
	}
	if rv.CanAddr() && rv.CanInterface() && reflect.PointerTo(t).Implements(hasherType) {
		return rv.Addr().Interface().(Hasher).Hash()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return HashBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return HashInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return HashUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return HashFloat(rv.Float())
	case reflect.Complex64, reflect.Complex128:
		return HashComplex(rv.Complex())
	case reflect.String:
		return HashString(rv.String())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return HashBytes(rv.Bytes())
		}
		return hashSequence(rv, visiting)
	case reflect.Array:
		return hashSequence(rv, visiting)
	case reflect.Map:
		return hashMap(rv, visiting)
	case reflect.Ptr:
		ptr := rv.Pointer()
		if visiting[ptr] {
			return HashNull
		}
		visiting[ptr] = true
		defer delete(visiting, ptr)
		return hashReflect(rv.Elem(), visiting)
	case reflect.Struct:
		h := HashSeed
		for i := 0; i < rv.NumField(); i++ {
			h = Combine(h, hashReflect(rv.Field(i), visiting))
		}
		return h
	default:
		// Funcs, channels and unsafe pointers compare by identity
		return HashUint(uint64(rv.Pointer()))
	}
}

func hashSequence(rv reflect.Value, visiting map[uintptr]bool) uint64 {
	h := HashSeed
	for i := 0; i < rv.Len(); i++ {
		h = Combine(h, hashReflect(rv.Index(i), visiting))
	}
	return h
}

func hashMap(rv reflect.Value, visiting map[uintptr]bool) uint64 {
	entries := make([]uint64, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kh := hashReflect(iter.Key(), visiting)
		vh := hashReflect(iter.Value(), visiting)
		entries = append(entries, Combine(Combine(HashSeed, kh), vh))
	}
	// Sorting makes the fold independent of iteration order
	sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })
	h := Combine(HashSeed, uint64(len(entries)))
	for _, e := range entries {
		h = Combine(h, e)
	}
	return h
}

// valueTime extracts a time.Time, reading through unexported struct fields
// when the value is addressable.
func valueTime(rv reflect.Value) (time.Time, bool) {
	if rv.CanInterface() {
		return rv.Interface().(time.Time), true
	}
	if rv.CanAddr() {
		return *(*time.Time)(rv.Addr().UnsafePointer()), true
	}
	return time.Time{}, false
}

// hasEqualMethod reports whether t has a method Equal(T) bool or Equal(I) bool
// with T assignable to I, the form DeepEqual compares through.
func hasEqualMethod(t reflect.Type) bool {
	m, ok := t.MethodByName("Equal")
	if !ok {
		return false
	}
	mt := m.Type
	// Method types from a reflect.Type include the receiver
	if mt.NumIn() != 2 || mt.NumOut() != 1 || mt.Out(0) != boolType {
		return false
	}
	return t.AssignableTo(mt.In(1))
}
