package render

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/synth"
)

func userCodes(t *testing.T) []synth.Code {
	t.Helper()
	specs, err := record.Normalize([]record.File{{
		Package: "model",
		Imports: []string{"github.com/google/uuid"},
		Records: []record.Descriptor{{
			Name:         "User",
			Capabilities: []string{"data", "builder"},
			Fields: []record.FieldDescriptor{
				{Name: "id", Type: "uuid.UUID"},
				{Name: "name", Type: "string"},
				{Name: "created", Type: "time.Time"},
			},
		}},
	}})
	require.NoError(t, err)
	plan, err := synth.NewPlan(specs[0], synth.DefaultNaming(), nil)
	require.NoError(t, err)
	codes, err := synth.Synthesize(plan)
	require.NoError(t, err)
	return codes
}

func TestRender(t *testing.T) {
	src, err := Render(File{
		Name:    "user_gen.go",
		Package: "model",
		Sources: []string{"schemas/user.yaml"},
		Codes:   userCodes(t),
	})
	require.NoError(t, err)

	text := string(src)
	assert.True(t, strings.HasPrefix(text, Header+"\n"))
	assert.Contains(t, text, "// Source: schemas/user.yaml\n")

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "user_gen.go", src, parser.ParseComments)
	require.NoError(t, err)
	assert.True(t, ast.IsGenerated(file), "scanners must recognise the output as generated")
	assert.Equal(t, "model", file.Name.Name)

	var paths []string
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		require.NoError(t, err)
		paths = append(paths, p)
	}
	assert.Equal(t, []string{"time", "github.com/google/uuid", "github.com/teranos/recordgen/recordkit"}, paths)
	assert.Contains(t, text, "\"time\"\n\n\t\"github.com/google/uuid\"", "standard library imports form their own group")

	// members keep plan order
	assert.Less(t, strings.Index(text, "type User struct"), strings.Index(text, "func NewUser("))
	assert.Less(t, strings.Index(text, "func (u *User) String()"), strings.Index(text, "type UserBuilder struct"))

	again, err := Render(File{Name: "user_gen.go", Package: "model", Sources: []string{"schemas/user.yaml"}, Codes: userCodes(t)})
	require.NoError(t, err)
	assert.Equal(t, src, again, "rendering is deterministic")
}

func TestRender_NoImports(t *testing.T) {
	src, err := Render(File{Name: "empty.go", Package: "model"})
	require.NoError(t, err)
	assert.NotContains(t, string(src), "import")
	_, err = parser.ParseFile(token.NewFileSet(), "empty.go", src, 0)
	assert.NoError(t, err)
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(File{Name: "x.go"})
	assert.ErrorContains(t, err, "no package name")

	conflict := []synth.Code{
		{Source: "var _ = 1", Imports: []record.Import{{Name: "yaml", Path: "gopkg.in/yaml.v3"}}},
		{Source: "var _ = 2", Imports: []record.Import{{Name: "yaml", Path: "sigs.k8s.io/yaml"}}},
	}
	_, err = Render(File{Name: "x.go", Package: "p", Codes: conflict})
	assert.ErrorContains(t, err, "refers to both")

	aliases := []synth.Code{
		{Source: "var _ = 1", Imports: []record.Import{{Name: "yaml", Path: "gopkg.in/yaml.v3"}}},
		{Source: "var _ = 2", Imports: []record.Import{{Name: "yamlv3", Path: "gopkg.in/yaml.v3"}}},
	}
	_, err = Render(File{Name: "x.go", Package: "p", Codes: aliases})
	assert.ErrorContains(t, err, "imported as both")

	_, err = Render(File{Name: "x.go", Package: "p", Codes: []synth.Code{{Source: "func {"}}})
	assert.ErrorContains(t, err, "failed to format")
}

func TestIsStdlib(t *testing.T) {
	assert.True(t, isStdlib("time"))
	assert.True(t, isStdlib("encoding/json"))
	assert.False(t, isStdlib("github.com/google/uuid"))
	assert.False(t, isStdlib("gopkg.in/yaml.v3"))
}
