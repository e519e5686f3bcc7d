package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func init() {
	color.NoColor = true
}

var fakeResponses = map[string]string{
	"example.com": `[{"common_name": "www.example.com", "name_value": "www.example.com\nexample.com\n*.example.com\nmail.example.com"}]`,
	"example.org": `[{"name_value": "www.example.org\nwww.example.com"}]`,
	"empty.test":  `[]`,
}

func newFakeCrtsh(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "hang.test" {
			<-r.Context().Done()
			return
		}
		body, ok := fakeResponses[q]
		if !ok {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runAppContext(t, context.Background(), args...)
}

func runAppContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:   "crtsubs",
		Flags:  EnumerateFlags,
		Action: Enumerate,
		Writer: &out,
	}
	err := app.RunContext(ctx, append([]string{"crtsubs"}, args...))
	return out.String(), err
}

func writeList(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestEnumerateUsage(t *testing.T) {
	out, err := runApp(t)
	require.NoError(t, err)
	assert.Equal(t, "Please provide a domain with -d or a file with -l.\n", out)
}

func TestEnumerateDomainToConsole(t *testing.T) {
	srv := newFakeCrtsh(t)

	out, err := runApp(t, "-d", "example.com", "--endpoint", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Subdomains of example.com:\nwww.example.com\nmail.example.com\n", out)
}

func TestEnumerateDomainFailureIsNotFatal(t *testing.T) {
	srv := newFakeCrtsh(t)

	out, err := runApp(t, "-d", "down.test", "--endpoint", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Subdomains of down.test:\n", out)
}

func TestEnumerateDomainOverwritesOutput(t *testing.T) {
	srv := newFakeCrtsh(t)
	outFile := filepath.Join(t.TempDir(), "subs.txt")
	require.NoError(t, os.WriteFile(outFile, []byte("stale.example.com\n"), 0o644))

	out, err := runApp(t, "-d", "example.com", "-o", outFile, "--endpoint", srv.URL+"/")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "www.example.com\nmail.example.com\n", string(data))
}

func TestEnumerateListAppendsAndPrintsTotal(t *testing.T) {
	srv := newFakeCrtsh(t)
	list := writeList(t, "example.com\n\n  example.org  \ndown.test\nexample.com\n")
	outFile := filepath.Join(t.TempDir(), "subs.txt")
	require.NoError(t, os.WriteFile(outFile, []byte("previous.example.net\n"), 0o644))

	out, err := runApp(t, "-l", list, "-o", outFile, "--endpoint", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Total subdomains found:\nwww.example.com\nmail.example.com\nwww.example.org\n", out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t,
		"previous.example.net\n"+
			"www.example.com\nmail.example.com\n"+
			"www.example.org\n"+
			"www.example.com\nmail.example.com\n",
		string(data))
}

func TestEnumerateListNothingFound(t *testing.T) {
	srv := newFakeCrtsh(t)
	list := writeList(t, "empty.test\ndown.test\n")

	out, err := runApp(t, "-l", list, "--endpoint", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "No subdomains found for the domains in "+list+".\n", out)
}

func TestEnumerateListMissingFile(t *testing.T) {
	srv := newFakeCrtsh(t)

	_, err := runApp(t, "-l", filepath.Join(t.TempDir(), "nope.txt"), "--endpoint", srv.URL+"/")
	assert.ErrorIs(t, err, ErrListFile)
}

func TestEnumerateDomainWinsOverList(t *testing.T) {
	srv := newFakeCrtsh(t)
	list := writeList(t, "example.org\n")

	out, err := runApp(t, "-d", "example.com", "-l", list, "--endpoint", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Subdomains of example.com:\nwww.example.com\nmail.example.com\n", out)
}

func TestReadDomainList(t *testing.T) {
	path := writeList(t, "a.com\r\n\n  b.com\n\t\nc.com")

	domains, err := readDomainList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, domains)

	_, err = readDomainList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, ErrListFile)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestEnumerateDomainInterruptedKeepsOutputFile(t *testing.T) {
	srv := newFakeCrtsh(t)
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old.hang.test\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := runAppContext(t, ctx, "-d", "hang.test", "-o", path, "--endpoint", srv.URL+"/")
	assert.ErrorIs(t, err, context.Canceled)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "old.hang.test\n", string(data))
}
