package watch

import (
	"context"
	"errors"
	"testing"

	"crtsubs/features/enumerator"
	"crtsubs/features/store"
	"crtsubs/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	results map[string][]string
	errs    map[string]error
}

func (f *fakeSource) Name() string { return "FAKE" }

func (f *fakeSource) Hostnames(_ context.Context, domain string) ([]string, error) {
	if err := f.errs[domain]; err != nil {
		return nil, err
	}
	return f.results[domain], nil
}

type recorder struct {
	got map[string][]string
}

func (r *recorder) NewHostnames(domain string, hosts []string) error {
	if r.got == nil {
		r.got = map[string][]string{}
	}
	r.got[domain] = append(r.got[domain], hosts...)
	return nil
}

func newTestRepo(t *testing.T) *store.SQLiteRepository {
	t.Helper()
	_, _, conn, _ := utils.Initialize(t)
	return store.NewSQLiteRepository(conn)
}

func TestNewRequiresDomains(t *testing.T) {
	_, err := New(enumerator.New(&fakeSource{}), newTestRepo(t), []string{" ", ""})
	assert.ErrorIs(t, err, ErrNoDomains)
}

func TestRunOnceReportsOnlyNewHostnames(t *testing.T) {
	src := &fakeSource{results: map[string][]string{
		"example.com": {"a.example.com", "b.example.com", "example.com"},
	}}
	repo := newTestRepo(t)
	rec := &recorder{}

	w, err := New(enumerator.New(src), repo, []string{"example.com"}, WithNotifier(rec))
	require.NoError(t, err)

	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.NewCount())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, rec.got["example.com"])

	src.results["example.com"] = []string{"b.example.com", "c.example.com"}
	rec.got = nil

	report, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Domains, 1)
	assert.Equal(t, []string{"c.example.com"}, report.Domains[0].New)
	assert.Equal(t, 2, report.Domains[0].Seen)
	assert.Equal(t, []string{"c.example.com"}, rec.got["example.com"])

	subs, err := repo.GetSubdomains(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, report.RunID, subs[1].RunID, "b.example.com was seen again in the second run")
}

func TestRunOnceDryRunDoesNotWrite(t *testing.T) {
	src := &fakeSource{results: map[string][]string{
		"example.com": {"a.example.com"},
	}}
	repo := newTestRepo(t)

	w, err := New(enumerator.New(src), repo, []string{"example.com"}, WithDryRun(true))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		report, err := w.RunOnce(context.Background())
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		assert.Equal(t, 1, report.NewCount())
	}

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunOnceFailedLookupKeepsStore(t *testing.T) {
	src := &fakeSource{
		results: map[string][]string{"example.com": {"a.example.com"}},
		errs:    map[string]error{},
	}
	repo := newTestRepo(t)

	w, err := New(enumerator.New(src), repo, []string{"example.com"})
	require.NoError(t, err)

	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)

	src.errs["example.com"] = errors.New("status 503")
	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Domains, 1)
	assert.True(t, report.Domains[0].Failed)
	assert.Equal(t, "status 503", report.Domains[0].ErrorMsg)
	assert.Empty(t, report.Domains[0].New)

	hosts, err := repo.GetHostnames(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.com"}, hosts)
}

func TestDiffUsesStoreForPossibleHits(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Record(context.Background(), "example.com", []string{"known.example.com"}, "seed")
	require.NoError(t, err)

	w, err := New(enumerator.New(&fakeSource{}), repo, []string{"example.com"})
	require.NoError(t, err)
	require.NoError(t, w.Prepare(context.Background()))

	fresh, err := w.Diff(context.Background(), "example.com", []string{"known.example.com", "new.example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new.example.com"}, fresh)
}

func TestNotifiers(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	require.NoError(t, Notifiers{a, b}.NewHostnames("example.com", []string{"x.example.com"}))

	assert.Equal(t, []string{"x.example.com"}, a.got["example.com"])
	assert.Equal(t, []string{"x.example.com"}, b.got["example.com"])
}

func TestExecute(t *testing.T) {
	src := &fakeSource{results: map[string][]string{"example.com": {"a.example.com"}}}
	w, err := New(enumerator.New(src), newTestRepo(t), []string{"example.com"})
	require.NoError(t, err)

	assert.Equal(t, "watch_FAKE", w.Name())
	assert.NoError(t, w.Execute(context.Background()))
}
