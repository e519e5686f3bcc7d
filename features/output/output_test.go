package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"crtsubs/features/enumerator"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileSinkOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale.example.com\n"), 0o644))

	sink := NewFileSink(path, Overwrite)
	require.NoError(t, sink.Write(&enumerator.Result{Subdomains: []string{"a.example.com", "b.example.com"}}))

	assert.Equal(t, "a.example.com\nb.example.com\n", readFile(t, path))
	assert.Equal(t, path, sink.Path())
}

func TestFileSinkOverwriteEmptyTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale.example.com\n"), 0o644))

	require.NoError(t, NewFileSink(path, Overwrite).Write(&enumerator.Result{}))
	assert.Equal(t, "", readFile(t, path))
}

func TestFileSinkAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old.example.com\n"), 0o644))

	sink := NewFileSink(path, Append)
	require.NoError(t, sink.Write(&enumerator.Result{Subdomains: []string{"a.example.com"}}))
	require.NoError(t, sink.Write(&enumerator.Result{Subdomains: []string{"b.example.org", "a.example.com"}}))

	assert.Equal(t, "old.example.com\na.example.com\nb.example.org\na.example.com\n", readFile(t, path))
}

func TestFileSinkNewHostnamesAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	sink := NewFileSink(path, Overwrite)

	require.NoError(t, sink.NewHostnames("example.com", []string{"a.example.com"}))
	require.NoError(t, sink.NewHostnames("example.com", []string{"b.example.com"}))

	assert.Equal(t, "a.example.com\nb.example.com\n", readFile(t, path))
}

func TestFileSinkOpenError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.txt")

	err := NewFileSink(path, Append).Write(&enumerator.Result{Subdomains: []string{"a.example.com"}})
	assert.ErrorIs(t, err, ErrOpenOutput)
}

func TestConsoleSubdomains(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Subdomains("example.com", []string{"a.example.com", "b.example.com"}))

	assert.Equal(t, "Subdomains of example.com:\na.example.com\nb.example.com\n", buf.String())
}

func TestConsoleTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Total("domains.txt", []string{"a.example.com"}))
	assert.Equal(t, "Total subdomains found:\na.example.com\n", buf.String())

	buf.Reset()
	require.NoError(t, NewConsole(&buf).Total("domains.txt", nil))
	assert.Equal(t, "No subdomains found for the domains in domains.txt.\n", buf.String())
}

func TestConsoleUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Usage())
	assert.Equal(t, "Please provide a domain with -d or a file with -l.\n", buf.String())
}

func TestConsoleNewHostnames(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	require.NoError(t, c.NewHostnames("example.com", nil))
	assert.Empty(t, buf.String())

	require.NoError(t, c.NewHostnames("example.com", []string{"new.example.com"}))
	assert.Equal(t, "New subdomains of example.com:\nnew.example.com\n", buf.String())
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Write(&enumerator.Result{Subdomains: []string{"a.example.com"}}))
}
