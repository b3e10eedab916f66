package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/internal/cli/commands"
	"github.com/reoring/goshape/internal/cli/config"
	"github.com/reoring/goshape/reqtree"
)

const testShapes = `
shapes:
  user:
    fields:
      id: string
      name: string
      address:
        street: string
        zip: string
components:
  Label:
    fields:
      user: {$shape: user, $requires: "name"}
`

type project struct {
	dir    string
	shapes string
}

func setupProject(t *testing.T) project {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	p := project{dir: dir, shapes: filepath.Join(dir, "shapes.yaml")}
	require.NoError(t, os.WriteFile(p.shapes, []byte(testShapes), 0o644))
	return p
}

func (p project) write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(p.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	setupProject(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "goshape v"+Version+"\n", out)
}

func TestParse(t *testing.T) {
	setupProject(t)

	out, err := run(t, "", "parse", "foo, bar{ baz } // trailing")
	require.NoError(t, err)
	assert.Equal(t, "bar{baz},foo\n", out)

	out, err = run(t, "", "parse", "-o", "json", "foo, bar{baz}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bar": {"baz": null}, "foo": null}`, out)

	out, err = run(t, "", "parse", "--paths", "a{b},c")
	require.NoError(t, err)
	assert.Equal(t, "/a\n/a/b\n/c\n", out)

	out, err = run(t, "x, y{z}\n", "parse")
	require.NoError(t, err)
	assert.Equal(t, "x,y{z}\n", out)

	_, err = run(t, "", "parse", "foo{bar")
	assert.ErrorIs(t, err, reqtree.ErrUnbalanced)
}

func TestParse_File(t *testing.T) {
	p := setupProject(t)
	f := p.write(t, "decl.txt", "/* user card */\nid,\naddress{zip},\n")
	out, err := run(t, "", "parse", "-f", f)
	require.NoError(t, err)
	assert.Equal(t, "address{zip},id\n", out)

	_, err = run(t, "", "parse", "-f", f, "id")
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	setupProject(t)
	out, err := run(t, "", "merge", "foo{bar}", "foo{baz}, qux")
	require.NoError(t, err)
	assert.Equal(t, "foo{bar,baz},qux\n", out)

	_, err = run(t, "", "merge", "ok", "bad{")
	assert.ErrorIs(t, err, reqtree.ErrUnbalanced)
}

func TestCheck(t *testing.T) {
	p := setupProject(t)
	good := p.write(t, "good.json", `{"id": "u1", "address": {"zip": "100"}}`)
	bad := p.write(t, "bad.yaml", "address: {}\n")

	out, err := run(t, "", "check", "--shapes", p.shapes, "--shape", "user", "--requires", "id, address{zip}", good)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = run(t, "", "check", "--shapes", p.shapes, "--shape", "user", "--requires", "id, address{zip}", bad)
	require.ErrorIs(t, err, commands.ErrIssuesFound)
	assert.Contains(t, out, "/address/zip")
	assert.Contains(t, out, "/id")
	assert.Contains(t, out, "(2 issues)")
}

func TestCheck_JSONAndFailFast(t *testing.T) {
	p := setupProject(t)
	bad := p.write(t, "bad.json", `{"address": {}}`)

	out, err := run(t, "", "check", "-o", "json", "--shapes", p.shapes, "--shape", "user", "-r", "id", "-r", "address{zip}", bad)
	require.ErrorIs(t, err, commands.ErrIssuesFound)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "/address/zip", got[0]["path"])
	assert.Equal(t, goshape.CodeRequired, got[0]["code"])

	out, err = run(t, "", "check", "-o", "json", "--fail-fast", "--shapes", p.shapes, "--shape", "user", "-r", "id, address{zip}", bad)
	require.ErrorIs(t, err, commands.ErrIssuesFound)
	got = nil
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 1)
}

func TestCheck_PassedIntoAndStdin(t *testing.T) {
	p := setupProject(t)
	_, err := run(t, `{"id": "u1"}`, "check", "--shapes", p.shapes, "--shape", "user", "--passed-into", "Label.user", "-")
	require.ErrorIs(t, err, commands.ErrIssuesFound)

	out, err := run(t, "name: Ann\n", "check", "--format", "yaml", "--shapes", p.shapes, "--shape", "user", "--passed-into", "Label.user", "-")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestCheck_DeclarationErrors(t *testing.T) {
	p := setupProject(t)
	doc := p.write(t, "doc.json", `{}`)

	out, err := run(t, "", "check", "--shapes", p.shapes, "--shape", "user", "--requires", "address{country}", doc)
	require.ErrorIs(t, err, commands.ErrIssuesFound)
	assert.NotContains(t, err.Error(), "country")
	assert.Contains(t, out, goshape.CodeInvalidKey)
	assert.Contains(t, out, "/address/country")

	_, err = run(t, "", "check", "--shapes", p.shapes, "--shape", "nobody", doc)
	assert.Error(t, err)

	_, err = run(t, "", "check", "--shape", "user", doc)
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	p := setupProject(t)
	out, err := run(t, "", "schema", "--shapes", p.shapes, "--shape", "user", "--requires", "id, address{zip}")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, []any{"address", "id"}, got["required"])
	props := got["properties"].(map[string]any)
	addr := props["address"].(map[string]any)
	assert.Equal(t, []any{"zip"}, addr["required"])
}

func TestList(t *testing.T) {
	p := setupProject(t)
	out, err := run(t, "", "list", "-o", "json", "--shapes", p.shapes)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shapes": ["user"], "components": ["Label"]}`, out)

	out, err = run(t, "", "list", "--shapes", p.shapes)
	require.NoError(t, err)
	assert.Contains(t, out, "Label")
}

func TestConfigFile(t *testing.T) {
	p := setupProject(t)
	p.write(t, "goshape.yaml", "shapes: "+p.shapes+"\noutput: json\n")
	doc := p.write(t, "doc.json", `{"id": "x"}`)

	out, err := run(t, "", "check", "--shape", "user", "-r", "id", doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	_, err = run(t, "", "version", "--output", "xml")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCheck_StrictDuplicateKeys(t *testing.T) {
	p := setupProject(t)
	doc := p.write(t, "dup.jsonc", "{\n  // twice\n  \"id\": \"a\",\n  \"id\": \"b\",\n}")

	out, err := run(t, "", "check", "--shapes", p.shapes, "--shape", "user", "-r", "id", doc)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = run(t, "", "check", "--strict", "-o", "json", "--shapes", p.shapes, "--shape", "user", "-r", "id", doc)
	require.ErrorIs(t, err, commands.ErrIssuesFound)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "/id", got[0]["path"])
	assert.Equal(t, goshape.CodeDuplicateKey, got[0]["code"])
}
