package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recordgen/errors"
)

func TestCoerce(t *testing.T) {
	level := FieldSpec{Name: "level", Type: "int8", Kind: KindInt}
	v, err := Coerce(level, "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	ratio := FieldSpec{Name: "ratio", Type: "float32", Kind: KindFloat}
	v, err = Coerce(ratio, 1.5)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v)

	tags := FieldSpec{Name: "tags", Type: "[]string", Kind: KindDeep}
	v, err = Coerce(tags, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v, "non-scalar kinds pass through")
}

func TestCoerce_ErrorsKeepTheirCause(t *testing.T) {
	tests := []struct {
		field FieldSpec
		value any
		cause string
	}{
		{FieldSpec{Name: "level", Type: "int8", Kind: KindInt}, 300, "300 overflows int8"},
		{FieldSpec{Name: "count", Type: "uint", Kind: KindUint}, -1, "-1 is negative"},
		{FieldSpec{Name: "age", Type: "int", Kind: KindInt}, "old", `"old" is not an integer`},
		{FieldSpec{Name: "on", Type: "bool", Kind: KindBool}, "maybe", `"maybe" is not a bool`},
	}
	for _, tt := range tests {
		t.Run(tt.field.Name, func(t *testing.T) {
			_, err := Coerce(tt.field, tt.value)
			require.Error(t, err)
			assert.Equal(t, "field "+tt.field.Name+": "+tt.cause, err.Error())
			assert.Equal(t, tt.cause, errors.UnwrapAll(err).Error())
		})
	}
}
