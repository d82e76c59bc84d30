package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsontree/internal/value"
)

type result struct {
	v   value.Value
	err error
}

func start(t *testing.T, path string) <-chan result {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	results := make(chan result, 16)
	ready := make(chan struct{})
	go func() {
		close(ready)
		err := Watch(ctx, path, Options{Debounce: 20 * time.Millisecond}, func(v value.Value, err error) {
			results <- result{v, err}
		})
		assert.NoError(t, err)
	}()
	<-ready
	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	return results
}

func next(t *testing.T, results <-chan result) result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return result{}
	}
}

func TestWatchReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	results := start(t, path)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 2}`), 0o644))

	r := next(t, results)
	require.NoError(t, r.err)
	a, ok := r.v.Get("a")
	require.True(t, ok)
	assert.Equal(t, float64(2), a.Float())
}

func TestWatchReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	results := start(t, path)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": `), 0o644))

	r := next(t, results)
	assert.Error(t, r.err)
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	results := start(t, path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case r := <-results:
		t.Fatalf("unexpected change: %+v", r)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "data.json"), Options{}, func(value.Value, error) {})
	assert.Error(t, err)
}
