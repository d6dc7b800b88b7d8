package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/recordgen/errors"
)

// coerceDefault converts a decoded default to the field's kind and renders
// it as a Go literal. String values are parsed for non-string kinds, which is
// how struct-tag defaults arrive.
func coerceDefault(kind Kind, bits int, v any) (any, string, error) {
	if n, ok := v.(json.Number); ok {
		v = string(n)
		if kind == KindString {
			return nil, "", errors.Newf("%s is not a string", n)
		}
	}

	switch kind {
	case KindBool:
		switch b := v.(type) {
		case bool:
			return b, strconv.FormatBool(b), nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, "", errors.Newf("%q is not a bool", b)
			}
			return parsed, strconv.FormatBool(parsed), nil
		}
	case KindString:
		if s, ok := v.(string); ok {
			return s, strconv.Quote(s), nil
		}
	case KindInt:
		i, err := toInt64(v)
		if err != nil {
			return nil, "", err
		}
		lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
		if bits < 64 {
			lo, hi = -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
		}
		if i < lo || i > hi {
			return nil, "", errors.Newf("%d overflows int%d", i, bits)
		}
		return i, strconv.FormatInt(i, 10), nil
	case KindUint:
		u, err := toUint64(v)
		if err != nil {
			return nil, "", err
		}
		if bits < 64 && u > uint64(1)<<bits-1 {
			return nil, "", errors.Newf("%d overflows uint%d", u, bits)
		}
		return u, strconv.FormatUint(u, 10), nil
	case KindFloat:
		f, err := toFloat64(v)
		if err != nil {
			return nil, "", err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, "", errors.Newf("%v is not a finite number", f)
		}
		if bits == 32 && math.Abs(f) > math.MaxFloat32 {
			return nil, "", errors.Newf("%v overflows float32", f)
		}
		return f, strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return nil, "", errors.Newf("only supported for bool, string and numeric fields, not %s", kind)
	}
	return nil, "", errors.Newf("%v (%T) does not fit a %s field", v, v, kind)
}

// Coerce converts v to the representation runtime-bound records store for
// f: bool, string, int64, uint64 or float64 for scalar kinds, range checked
// against the declared width. float32 fields keep float32 so they format
// and hash like generated code. Strings are parsed for non-string scalar
// kinds. Values of other kinds are returned unchanged.
func Coerce(f FieldSpec, v any) (any, error) {
	if !f.Kind.Defaultable() {
		return v, nil
	}
	bits := 64
	if b, ok := basicKinds[f.Type]; ok && b.bits > 0 {
		bits = b.bits
	}
	value, _, err := coerceDefault(f.Kind, bits, v)
	if err != nil {
		return nil, errors.Wrapf(err, "field %s", f.Name)
	}
	if fl, ok := value.(float64); ok && bits == 32 {
		return float32(fl), nil
	}
	return value, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, errors.Newf("%d overflows int64", n)
		}
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, errors.Newf("%d overflows int64", n)
		}
		return int64(n), nil
	case float32:
		return toInt64(float64(n))
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, errors.Newf("%v is not an integer", n)
		}
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 0, 64)
		if err != nil {
			return 0, errors.Newf("%q is not an integer", n)
		}
		return i, nil
	}
	return 0, errors.Newf("%v (%T) is not an integer", v, v)
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(n), 0, 64)
		if err != nil {
			return 0, errors.Newf("%q is not an unsigned integer", n)
		}
		return u, nil
	case uint:
		return uint64(n), nil
	case uint64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || n < 0 || n >= math.MaxUint64 {
			return 0, errors.Newf("%v is not an unsigned integer", n)
		}
		return uint64(n), nil
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.Newf("%d is negative", i)
	}
	return uint64(i), nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, errors.Newf("%q is not a number", n)
		}
		return f, nil
	case uint64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, errors.Newf("%v (%T) is not a number", v, v)
	}
	return float64(i), nil
}
