package scan

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recordgen/record"
)

const userSource = `package model

import "time"

// User is hand written
type User struct {
	name    string
	Created time.Time
	*Base
}

type Base struct{}

func (u *User) Name() string { return u.name }

func (u User) String() string { return u.name }

func NewUser() *User { return &User{} }

type Pair[K comparable, V any] struct{ k K }

func (p *Pair[K, V]) Key() K { return p.k }

var defaultUser = User{}

const maxAge = 150
`

const generatedSource = `// Code generated by recordgen. DO NOT EDIT.

package model

func (u *User) Equal(other *User) bool { return true }
`

const stringerSource = `// Code generated by "stringer -type=Status"; DO NOT EDIT.

package model

type Status int

func (s Status) String() string { return "" }
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"user.go":      userSource,
		"user_gen.go":  generatedSource,
		"user_test.go": "package model_test\n",
		"notes.txt":    "not go",
	})

	pkg, err := ParseDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "model", pkg.Name)
	require.Len(t, pkg.Files, 1, "generated and test files are ignored")
	assert.Equal(t, filepath.Join(dir, "user.go"), pkg.Filename(pkg.Files[0]))

	m := pkg.Members
	assert.True(t, m.HasMethod("User", "Name"))
	assert.True(t, m.HasMethod("User", "String"), "value receivers count")
	assert.False(t, m.HasMethod("User", "Equal"), "methods in generated files are not user code")
	assert.True(t, m.HasMethod("Pair", "Key"), "generic receivers resolve to the base type")
	assert.Equal(t, []string{"Name", "String"}, m.Methods("User"))

	assert.True(t, m.HasField("User", "name"))
	assert.True(t, m.HasField("User", "Created"))
	assert.True(t, m.HasField("User", "Base"), "embedded fields are named after their type")
	assert.False(t, m.HasField("User", "Name"))

	for _, decl := range []string{"User", "Base", "NewUser", "Pair", "defaultUser", "maxAge"} {
		assert.True(t, m.HasDecl(decl), decl)
	}
	assert.False(t, m.HasDecl("NewUserBuilder"))
}

func TestParseDir_OtherGenerators(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"status_string.go": stringerSource,
		"user_gen.go":      generatedSource,
	})

	pkg, err := ParseDir(dir)
	require.NoError(t, err)
	require.Len(t, pkg.Files, 1)
	assert.Equal(t, filepath.Join(dir, "status_string.go"), pkg.Filename(pkg.Files[0]))
	assert.True(t, pkg.Members.HasMethod("Status", "String"), "stringer output is part of the package")
	assert.True(t, pkg.Members.HasDecl("Status"))
	assert.False(t, pkg.Members.HasMethod("User", "Equal"))
}

func TestOwnOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"recordgen", generatedSource, true},
		{"stringer", stringerSource, false},
		{"hand written", userSource, false},
		{"header after package clause", "package model\n\n" + GeneratedHeader + "\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parser.ParseFile(token.NewFileSet(), "x.go", tt.src, parser.ParseComments)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ownOutput(file))
		})
	}
}

func TestParseDir_MissingDirectory(t *testing.T) {
	pkg, err := ParseDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, pkg.Files)
	assert.False(t, pkg.Members.HasDecl("User"))
}

func TestParseDir_Errors(t *testing.T) {
	t.Run("mixed packages", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"a.go": "package a\n",
			"b.go": "package b\n",
		})
		_, err := ParseDir(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "found packages a and b")
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.go": "package a\nfunc {\n"})
		_, err := ParseDir(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"go.mod":      "module example.com/model\n\ngo 1.24\n",
		"user.go":     userSource,
		"user_gen.go": generatedSource,
		// calls a method that only generated code would provide
		"use.go": "package model\n\nfunc touch(u *User) string { return u.Surname() }\n",
	})

	pkg, err := Load(context.Background(), dir, ".")
	require.NoError(t, err)
	assert.Equal(t, "model", pkg.Name)
	assert.True(t, pkg.Members.HasMethod("User", "Name"))
	assert.False(t, pkg.Members.HasMethod("User", "Equal"))
	assert.True(t, pkg.Members.HasDecl("touch"))
}

func TestMemberSet(t *testing.T) {
	var nilSet *MemberSet
	assert.False(t, nilSet.HasMethod("T", "M"))
	assert.False(t, nilSet.HasDecl("T"))
	assert.Nil(t, nilSet.Methods("T"))

	a := NewMemberSet()
	a.AddMethod("T", "Get")
	b := NewMemberSet()
	b.AddField("T", "x")
	b.AddDecl("NewT")

	c := a.Clone()
	c.Merge(b)
	assert.True(t, c.HasMethod("T", "Get"))
	assert.True(t, c.HasField("T", "x"))
	assert.Equal(t, []string{"NewT"}, c.Decls())
	assert.False(t, a.HasDecl("NewT"), "clone is independent")
}

func TestMemberSet_AddExisting(t *testing.T) {
	specs, err := record.Normalize([]record.File{{
		Records: []record.Descriptor{{
			Name:     "User",
			Existing: []string{"String", "NewUser"},
			Fields:   []record.FieldDescriptor{{Name: "name", Type: "string"}},
		}},
	}})
	require.NoError(t, err)

	m := NewMemberSet()
	m.AddExisting(specs[0])
	assert.True(t, m.HasMethod("User", "String"))
	assert.True(t, m.HasDecl("NewUser"))
}
