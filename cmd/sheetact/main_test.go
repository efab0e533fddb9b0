package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_Workflow(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "book.xlsx")
	keyFile := filepath.Join(dir, "signing.key")
	csvFile := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte("a,b\nc,d\ne,f\n"), 0644))

	common := []string{"--key-file", keyFile, "--rows", "20", "--cols", "5", "--log-level", "error"}

	_, err := execute(t, append([]string{"new", grid}, common...)...)
	require.NoError(t, err)
	assert.FileExists(t, grid+".sig")

	out, err := execute(t, append([]string{"verify", grid}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "trusted")

	out, err = execute(t, append([]string{"paste", grid, "--from", csvFile, "--at", "B2"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"state":"completed"`)
	assert.Contains(t, out, `"cells_written":6`)

	out, err = execute(t, append([]string{"dump", grid, "--select", "B2:C4"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, `[["a","b"],["c","d"],["e","f"]]`, strings.TrimSpace(out))

	_, err = execute(t, append([]string{"insert", grid, "--axis", "row", "--at", "0", "--count", "2"}, common...)...)
	require.NoError(t, err)

	out, err = execute(t, append([]string{"dump", grid, "--select", "B4"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, `[["a"]]`, strings.TrimSpace(out))

	_, err = execute(t, append([]string{"delete", grid, "--axis", "col"}, common...)...)
	assert.ErrorContains(t, err, "not supported")
}

func TestCLI_UnsignedFile(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "book.xlsx")
	keyFile := filepath.Join(dir, "signing.key")
	common := []string{"--key-file", keyFile, "--log-level", "error"}

	_, err := execute(t, append([]string{"new", grid}, common...)...)
	require.NoError(t, err)
	require.NoError(t, os.Remove(grid+".sig"))

	_, err = execute(t, append([]string{"verify", grid}, common...)...)
	assert.ErrorContains(t, err, "not trusted")

	_, err = execute(t, append([]string{"sign", grid}, common...)...)
	assert.Error(t, err, "safe mode refuses to sign")

	_, err = execute(t, append([]string{"approve", grid}, common...)...)
	require.NoError(t, err)

	_, err = execute(t, append([]string{"verify", grid}, common...)...)
	assert.NoError(t, err)
}

func TestCLI_NewRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "book.xlsx")
	keyFile := filepath.Join(dir, "signing.key")
	common := []string{"--key-file", keyFile, "--log-level", "error"}

	_, err := execute(t, append([]string{"new", grid}, common...)...)
	require.NoError(t, err)
	csvFile := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte("kept\n"), 0644))
	_, err = execute(t, append([]string{"paste", grid, "--from", csvFile}, common...)...)
	require.NoError(t, err)

	_, err = execute(t, append([]string{"new", grid}, common...)...)
	assert.ErrorContains(t, err, "already exists")
	out, err := execute(t, append([]string{"dump", grid, "--select", "A1"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, `[["kept"]]`, strings.TrimSpace(out))
	_, err = execute(t, append([]string{"verify", grid}, common...)...)
	assert.NoError(t, err, "signature is untouched")

	_, err = execute(t, append([]string{"new", grid, "--force"}, common...)...)
	require.NoError(t, err)
	out, err = execute(t, append([]string{"dump", grid, "--select", "A1"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, `[[""]]`, strings.TrimSpace(out))
}

func TestParseAnchor(t *testing.T) {
	a, err := parseAnchor("C5", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 4, a.Row)
	assert.Equal(t, 2, a.Col)
	assert.False(t, a.HasTable)

	a, err = parseAnchor("A1", 2, true)
	require.NoError(t, err)
	assert.True(t, a.HasTable)
	assert.Equal(t, 2, a.Table)

	_, err = parseAnchor("nope", 0, false)
	assert.Error(t, err)
}
