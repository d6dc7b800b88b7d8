package recordkit

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type point struct {
	x, y int
	at   time.Time
}

// label hashes and compares only its name
type label struct {
	name  string
	cache int
}

func (l *label) Equal(other *label) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.name == other.name
}

func (l *label) Hash() uint64 {
	if l == nil {
		return HashNull
	}
	return Combine(HashSeed, HashString(l.name))
}

type celsius float64

func (c celsius) String() string { return "warm" }

func TestCombine(t *testing.T) {
	assert.Equal(t, uint64(59+7), Combine(HashSeed, 7))
	assert.Equal(t, uint64(1*59*59+3*59+4), Combine(Combine(1, 3), 4))
	// order dependent
	assert.NotEqual(t, Combine(Combine(HashSeed, 1), 2), Combine(Combine(HashSeed, 2), 1))
}

func TestScalarHashes(t *testing.T) {
	assert.Equal(t, uint64(79), HashBool(true))
	assert.Equal(t, uint64(97), HashBool(false))
	assert.Equal(t, uint64(23), HashInt(23))
	assert.Equal(t, HashInt(-1), HashUint(math.MaxUint64))
	assert.Equal(t, uint64(1<<32|1), HashUint(1<<32))
	assert.Equal(t, HashFloat(0), HashFloat(math.Copysign(0, -1)))
	assert.Equal(t, HashFloat(math.NaN()), HashFloat(-math.NaN()))
	assert.NotEqual(t, HashFloat(1.5), HashFloat(2.5))
	assert.NotEqual(t, HashComplex(complex(1, 2)), HashComplex(complex(2, 1)))
	assert.Equal(t, HashString("tom"), HashString("tom"))
	assert.NotEqual(t, HashString("tom"), HashString("lombok"))
	assert.Equal(t, HashNull, HashBytes(nil))
	assert.NotEqual(t, HashNull, HashBytes([]byte{}))
	assert.Equal(t, HashBytes([]byte("ab")), HashString("ab"))
}

func TestHashTime_Instant(t *testing.T) {
	utc := time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)
	local := utc.In(time.FixedZone("X", 3600))
	assert.True(t, utc.Equal(local))
	assert.Equal(t, HashTime(utc), HashTime(local))
	assert.NotEqual(t, HashTime(utc), HashTime(utc.Add(time.Nanosecond)))
}

func TestHashValue(t *testing.T) {
	assert.Equal(t, HashNull, HashValue(nil))
	assert.Equal(t, HashNull, HashValue([]int(nil)))
	assert.Equal(t, HashNull, HashValue((*label)(nil)))
	assert.NotEqual(t, HashValue([]int(nil)), HashValue([]int{}))

	assert.Equal(t, HashValue([]string{"a", "b"}), HashValue([]string{"a", "b"}))
	assert.NotEqual(t, HashValue([]string{"a", "b"}), HashValue([]string{"b", "a"}))

	// map hashing ignores iteration order
	m1 := map[string]int{}
	m2 := map[string]int{}
	for i := 0; i < 50; i++ {
		m1[string(rune('a'+i%26))+string(rune('A'+i/26))] = i
	}
	for i := 49; i >= 0; i-- {
		m2[string(rune('a'+i%26))+string(rune('A'+i/26))] = i
	}
	assert.Equal(t, HashValue(m1), HashValue(m2))

	// Hashers contribute their own hash
	l1 := &label{name: "x", cache: 1}
	l2 := &label{name: "x", cache: 2}
	assert.Equal(t, HashValue(l1), HashValue(l2))
	assert.Equal(t, HashValue([]*label{l1}), HashValue([]*label{l2}))
	assert.Equal(t, l1.Hash(), HashValue(*l1), "pointer-receiver Hash reached through an addressable copy")

	// unexported time fields hash by instant
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p1 := point{x: 1, y: 2, at: at}
	p2 := point{x: 1, y: 2, at: at.In(time.FixedZone("Y", -7200))}
	assert.Equal(t, HashValue(p1), HashValue(p2))
	assert.NotEqual(t, HashValue(p1), HashValue(point{x: 2, y: 1, at: at}))
}

func TestHashValue_Cycle(t *testing.T) {
	type node struct {
		next *node
		v    int
	}
	n := &node{v: 1}
	n.next = n
	assert.NotPanics(t, func() { HashValue(n) })
}

func TestDeepEqual(t *testing.T) {
	assert.True(t, DeepEqual(nil, nil))
	assert.True(t, DeepEqual([]int{1, 2}, []int{1, 2}))
	assert.False(t, DeepEqual([]int{1, 2}, []int{2, 1}))
	assert.False(t, DeepEqual([]int(nil), []int{}))
	assert.True(t, DeepEqual(map[string][]int{"a": {1}}, map[string][]int{"a": {1}}))
	assert.False(t, DeepEqual(1, "1"))

	// Equal methods are honoured, unexported fields are compared
	assert.True(t, DeepEqual([]*label{{name: "x", cache: 1}}, []*label{{name: "x", cache: 2}}))
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, DeepEqual(point{1, 2, at}, point{1, 2, at.In(time.FixedZone("Z", 60))}))
	assert.False(t, DeepEqual(point{1, 2, at}, point{1, 3, at}))
}

func TestBytesEqual(t *testing.T) {
	assert.True(t, BytesEqual(nil, nil))
	assert.True(t, BytesEqual([]byte("a"), []byte("a")))
	assert.False(t, BytesEqual(nil, []byte{}))
	assert.False(t, BytesEqual([]byte("a"), []byte("b")))
}

func TestFormat(t *testing.T) {
	var nilLabel *label
	age := 23
	tests := []struct {
		in   any
		want string
	}{
		{nil, "<nil>"},
		{nilLabel, "<nil>"},
		{[]int(nil), "<nil>"},
		{[]int{}, "[]"},
		{map[string]int(nil), "<nil>"},
		{"tom", "tom"},
		{23, "23"},
		{&age, "23"},
		{celsius(30), "warm"},
		{errors.New("boom"), "boom"},
		{true, "true"},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2024-01-02 00:00:00 +0000 UTC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}

func TestStringForm(t *testing.T) {
	assert.Equal(t, "User(name=tom, surname=lombok, age=23)",
		StringForm("User", F("name", "tom"), F("surname", "lombok"), F("age", 23)))
	assert.Equal(t, "Empty()", StringForm("Empty"))
	assert.Equal(t, "Box(v=<nil>)", StringForm("Box", F("v", nil)))
}
