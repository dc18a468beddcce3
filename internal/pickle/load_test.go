package pickle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSuite drops a suite document into dir and returns its path.
func writeSuite(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicSuite = `{
  "pickles": [
    {
      "id": "p1",
      "name": "adding cucumbers",
      "uri": "features/basket.feature",
      "steps": [
        {"text": "I have 5 cukes in my basket", "line": 3, "column": 5},
        {"text": "I add 2 more", "line": 4, "column": 5,
         "dataTable": [["kind", "count"], ["gherkin", "2"]]}
      ]
    }
  ]
}`

func TestLoadFile_Basic(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, t.TempDir(), "basket.pickles.json", basicSuite)

	pickles, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, pickles, 1)

	p := pickles[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "adding cucumbers", p.Name)
	require.Len(t, p.Steps, 2)

	first := p.Steps[0]
	assert.Equal(t, "I have 5 cukes in my basket", first.Text)
	assert.Equal(t, "features/basket.feature", first.Location.URI)
	assert.Equal(t, 3, first.Location.Line)
	assert.Nil(t, first.Argument)
	assert.False(t, first.Synthetic)

	second := p.Steps[1]
	require.NotNil(t, second.Argument)
	assert.Equal(t, [][]string{{"kind", "count"}, {"gherkin", "2"}}, second.Argument.Table)
}

func TestLoadFile_DocString(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, t.TempDir(), "doc.pickles.json", `{
  "pickles": [{"id": "p1", "uri": "f.feature", "steps": [
    {"text": "I post the payload", "line": 2,
     "docString": {"mediaType": "application/json", "content": "{\"a\":1}"}}
  ]}]
}`)

	pickles, err := LoadFile(path)
	require.NoError(t, err)
	arg := pickles[0].Steps[0].Argument
	require.NotNil(t, arg)
	require.NotNil(t, arg.Doc)
	assert.Equal(t, "application/json", arg.Doc.MediaType)
	assert.Equal(t, `{"a":1}`, arg.Doc.Content)
}

func TestLoadFile_MissingID(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, t.TempDir(), "bad.pickles.json",
		`{"pickles": [{"name": "anonymous", "steps": []}]}`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	t.Parallel()
	path := writeSuite(t, t.TempDir(), "broken.pickles.json", `{"pickles": [`)

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoad_Directory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSuite(t, dir, "a.pickles.json",
		`{"pickles": [{"id": "a1", "uri": "a.feature", "steps": []}]}`)
	writeSuite(t, dir, "b.pickles.json",
		`{"pickles": [{"id": "b1", "uri": "b.feature", "steps": []}]}`)
	writeSuite(t, dir, "notes.txt", "not a suite")

	pickles, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, pickles, 2)
	// Lexical walk order keeps runs reproducible.
	assert.Equal(t, "a1", pickles[0].ID)
	assert.Equal(t, "b1", pickles[1].ID)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	t.Parallel()
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .pickles.json files")
}

func TestStep_Wrapper(t *testing.T) {
	t.Parallel()
	wrapper := Step{Synthetic: true, Macro: &MacroRef{Name: "login", ChildCount: 2}}
	child := Step{Macro: &MacroRef{Name: "login"}}
	plain := Step{Text: "I wait"}

	assert.True(t, wrapper.Wrapper())
	assert.False(t, child.Wrapper())
	assert.False(t, plain.Wrapper())
}
