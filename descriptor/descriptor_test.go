package descriptor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/scan"
)

const userYAML = `package: model
capabilities: [data]
records:
  - name: User
    doc: User is a person
    capabilities: [data, builder]
    fields:
      - name: name
        type: string
        required: true
      - name: surname
        type: string
        string: false
      - name: age
        type: int
        default: 18
`

const userTOML = `package = "model"
capabilities = ["data"]

[[records]]
name = "User"
doc = "User is a person"
capabilities = ["data", "builder"]

[[records.fields]]
name = "name"
type = "string"
required = true

[[records.fields]]
name = "surname"
type = "string"
string = false

[[records.fields]]
name = "age"
type = "int"
default = 18
`

const userJSON = `{
  "package": "model",
  "capabilities": ["data"],
  "records": [{
    "name": "User",
    "doc": "User is a person",
    "capabilities": ["data", "builder"],
    "fields": [
      {"name": "name", "type": "string", "required": true},
      {"name": "surname", "type": "string", "string": false},
      {"name": "age", "type": "int", "default": 18}
    ]
  }]
}`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		file   string
	}{
		{"a.yaml", FormatYAML, "a.yaml"},
		{"a.YML", FormatYAML, "a.YML"},
		{"dir/a.toml", FormatTOML, "dir/a.toml"},
		{"a.json", FormatJSON, "a.json"},
		{"api.openapi.yaml", FormatOpenAPI, "api.openapi.yaml"},
		{"api.openapi.json", FormatOpenAPI, "api.openapi.json"},
		{"openapi:petstore.yaml", FormatOpenAPI, "petstore.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, file, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.file, file)
		})
	}

	_, _, err := DetectFormat("user.txt")
	assert.Error(t, err)
}

// The three file formats describe the same record identically
func TestDecode_FormatsAgree(t *testing.T) {
	var described []record.Description
	for _, in := range []struct {
		format Format
		data   string
	}{
		{FormatYAML, userYAML},
		{FormatTOML, userTOML},
		{FormatJSON, userJSON},
	} {
		f, err := Decode([]byte(in.data), in.format, "user."+string(in.format))
		require.NoError(t, err, in.format)
		assert.Equal(t, "model", f.Package)
		assert.Equal(t, "user."+string(in.format), f.Source)

		specs, err := record.Normalize([]record.File{f})
		require.NoError(t, err, in.format)
		require.Len(t, specs, 1)
		d := specs[0].Describe()
		d.Source = ""
		described = append(described, d)
	}

	if diff := cmp.Diff(described[0], described[1]); diff != "" {
		t.Errorf("yaml and toml differ (-yaml +toml):\n%s", diff)
	}
	if diff := cmp.Diff(described[0], described[2]); diff != "" {
		t.Errorf("yaml and json differ (-yaml +json):\n%s", diff)
	}

	d := described[0]
	assert.Equal(t, []string{"getter", "setter", "equality", "string", "constructor", "builder"}, d.Capabilities)
	assert.Equal(t, "18", d.Fields[2].Default)
	assert.True(t, d.Fields[0].Required)
	assert.False(t, d.Fields[1].String)
}

func TestDecode_UnknownKeys(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatYAML, "records:\n  - name: User\n    feilds: []\n"},
		{FormatTOML, "[[records]]\nname = \"User\"\nfeilds = []\n"},
		{FormatJSON, `{"records": [{"name": "User", "feilds": []}]}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format, "bad")
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
			assert.Contains(t, err.Error(), "feilds")
		})
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		f, err := Decode(nil, format, "empty")
		require.NoError(t, err, format)
		assert.Empty(t, f.Records)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemas", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "user.yaml"), []byte(userYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "nested", "user.json"),
		[]byte(`{"records": [{"name": "Account", "fields": [{"name": "id", "type": "int64"}]}]}`), 0o644))

	files, err := LoadAll(dir, []string{"schemas/**/*.{yaml,json}", "schemas/user.yaml"})
	require.NoError(t, err)
	require.Len(t, files, 2, "overlapping patterns load a file once")
	assert.Equal(t, "Account", files[0].Records[0].Name)
	assert.Equal(t, "User", files[1].Records[0].Name)

	_, err = LoadAll(dir, []string{"schemas/missing.yaml"})
	assert.ErrorContains(t, err, "not found")

	files, err = LoadAll(dir, []string{"schemas/*.toml"})
	require.NoError(t, err)
	assert.Empty(t, files, "a glob without matches is not an error")
}

func TestExpand_OpenAPIPrefix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pets.yaml"), []byte("openapi: 3.0.0\n"), 0o644))

	paths, err := Expand(dir, []string{"openapi:*.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"openapi:" + filepath.Join(dir, "pets.yaml")}, paths)
}

const petstore = `openapi: 3.0.3
info:
  title: pets
  version: "1"
x-recordgen-capabilities: [value]
paths: {}
components:
  schemas:
    Pet:
      type: object
      description: A pet in the store
      x-recordgen-capabilities: data
      required: [name]
      properties:
        name:
          type: string
          x-order: 1
        id:
          type: string
          format: uuid
          readOnly: true
          x-order: 0
        born:
          type: string
          format: date-time
        tags:
          type: array
          items:
            type: string
        weight:
          type: number
          format: float
          default: 1.5
        owner:
          $ref: '#/components/schemas/Owner'
        labels:
          type: object
          additionalProperties:
            type: integer
            format: int32
    Owner:
      type: object
      properties:
        email:
          type: string
    Status:
      type: string
      enum: [available, sold]
`

func TestDecodeOpenAPI(t *testing.T) {
	f, err := DecodeOpenAPI([]byte(petstore), "pets.openapi.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"value"}, f.Capabilities)
	require.Len(t, f.Records, 2, "only object schemas become records")

	owner, pet := f.Records[0], f.Records[1]
	assert.Equal(t, "Owner", owner.Name)
	assert.Equal(t, "Pet", pet.Name)
	assert.Equal(t, "A pet in the store", pet.Doc)
	assert.Equal(t, []string{"data"}, pet.Capabilities)
	assert.Equal(t, []string{"github.com/google/uuid"}, pet.Imports)

	var names, types []string
	for _, fd := range pet.Fields {
		names = append(names, fd.Name)
		types = append(types, fd.Type)
	}
	assert.Equal(t, []string{"id", "name", "born", "labels", "owner", "tags", "weight"}, names)
	assert.Equal(t, []string{"uuid.UUID", "string", "time.Time", "map[string]int32", "*Owner", "[]string", "float32"}, types)

	var goNames []string
	for _, fd := range pet.Fields {
		goNames = append(goNames, fd.GoName)
	}
	assert.Equal(t, []string{"ID", "Name", "Born", "Labels", "Owner", "Tags", "Weight"}, goNames,
		"json-tagged fields are exported")

	id, name := pet.Fields[0], pet.Fields[1]
	require.NotNil(t, id.Mutable)
	assert.False(t, *id.Mutable)
	require.NotNil(t, name.Required)
	assert.True(t, *name.Required)
	assert.Equal(t, `json:"name"`, name.Tag)
	assert.Equal(t, `json:"id,omitempty"`, id.Tag)
	assert.Equal(t, 1.5, pet.Fields[6].Default)

	specs, err := record.Normalize([]record.File{f})
	require.NoError(t, err)
	ownerField, ok := specs[1].Field("owner")
	require.True(t, ok)
	assert.Equal(t, record.KindRecordPtr, ownerField.Kind)
}

const eventSchema = `openapi: 3.0.3
info:
  title: events
  version: "1"
paths: {}
components:
  schemas:
    Event:
      type: object
      properties:
        type:
          type: string
        user_id:
          type: string
`

func TestDecodeOpenAPI_ExportedFieldNames(t *testing.T) {
	f, err := DecodeOpenAPI([]byte(eventSchema), "events.openapi.yaml")
	require.NoError(t, err)
	require.Len(t, f.Records, 1)

	specs, err := record.Normalize([]record.File{f})
	require.NoError(t, err)
	typ, ok := specs[0].Field("type")
	require.True(t, ok)
	assert.Equal(t, "Type", typ.GoName)
	assert.Equal(t, `json:"type,omitempty"`, typ.Tag)
	userID, ok := specs[0].Field("user_id")
	require.True(t, ok)
	assert.Equal(t, "UserID", userID.GoName)
}

func TestDecodeOpenAPI_BadCapabilities(t *testing.T) {
	doc := strings.Replace(eventSchema, "      type: object\n", "      type: object\n      x-recordgen-capabilities: 3\n", 1)
	_, err := DecodeOpenAPI([]byte(doc), "events.openapi.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "x-recordgen-capabilities: expected a list of strings")
}

func TestDecodeOpenAPI_Malformed(t *testing.T) {
	_, err := DecodeOpenAPI([]byte("openapi: [\n"), "broken.openapi.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

const markedSource = `package model

import (
	"time"

	u "github.com/google/uuid"
)

// User is a person.
//
//recordgen:record data builder constructor=all
type User struct {
	ID      u.UUID    ` + "`" + `record:",readonly"` + "`" + `
	name    string    // given name
	surname string    ` + "`" + `record:",noequal,default=lombok, jr"` + "`" + `
	age     int       ` + "`" + `json:"age" record:"years,required,default=18"` + "`" + `
	cache   []byte    ` + "`" + `record:"-"` + "`" + `
	born    time.Time ` + "`" + `record:",nostring,noget,noset"` + "`" + `
}

// Plain is not marked
type Plain struct{ x int }

type (
	//recordgen:record value
	Point struct{ X, Y int }
)
`

func TestFromPackage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.go"), []byte(markedSource), 0o644))
	pkg, err := scan.ParseDir(dir)
	require.NoError(t, err)

	files, err := FromPackage(pkg)
	require.NoError(t, err)
	require.Len(t, files, 1)
	f := files[0]
	assert.Equal(t, "model", f.Package)
	assert.Equal(t, filepath.Join(dir, "user.go"), f.Source)
	require.Len(t, f.Records, 2)

	user := f.Records[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "User is a person.", user.Doc)
	assert.True(t, user.Declared)
	assert.Equal(t, []string{"data", "builder"}, user.Capabilities)
	assert.Equal(t, "all", user.Constructor)
	assert.Equal(t, []string{"time time", "u github.com/google/uuid"}, user.Imports)

	require.Len(t, user.Fields, 5, "fields tagged - are dropped")
	id, name, surname, age, born := user.Fields[0], user.Fields[1], user.Fields[2], user.Fields[3], user.Fields[4]
	assert.Equal(t, "u.UUID", id.Type)
	assert.False(t, *id.Mutable)
	assert.Equal(t, "given name", name.Doc)
	assert.Equal(t, "lombok, jr", surname.Default)
	assert.False(t, *surname.Equality)
	assert.Equal(t, "years", age.Name)
	assert.Equal(t, "age", age.GoName)
	assert.Equal(t, "18", age.Default)
	assert.True(t, *age.Required)
	assert.False(t, *born.String)
	assert.False(t, *born.Getter)
	assert.False(t, *born.Setter)

	point := f.Records[1]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, []string{"value"}, point.Capabilities)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "X", point.Fields[0].GoName)

	specs, err := record.Normalize(files)
	require.NoError(t, err)
	ageSpec, _ := specs[0].Field("age")
	assert.Equal(t, int64(18), ageSpec.Default)
	assert.True(t, specs[0].Declared())
}

func TestFromPackage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown option", "package m\n//recordgen:record\ntype T struct{ x int `record:\",nope\"` }\n", `unknown record tag option "nope"`},
		{"non struct", "package m\n//recordgen:record\ntype T int\n", "non-struct"},
		{"generic", "package m\n//recordgen:record\ntype T[V any] struct{ v V }\n", "generic records"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "t.go"), []byte(tt.source), 0o644))
			pkg, err := scan.ParseDir(dir)
			require.NoError(t, err)

			_, err = FromPackage(pkg)
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDirectiveArgs_RequiresExactDirective(t *testing.T) {
	dir := t.TempDir()
	src := "package m\n//recordgen:records data\ntype T struct{ x int }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.go"), []byte(src), 0o644))
	pkg, err := scan.ParseDir(dir)
	require.NoError(t, err)
	files, err := FromPackage(pkg)
	require.NoError(t, err)
	assert.Empty(t, files)
}
