package deps

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/maven"
	"git.home.luguber.info/inful/jarbuilder/internal/retry"
)

var gson = maven.Coordinate{Group: "com.google.code.gson", Artifact: "gson", Version: "2.13.1"}

func fastPolicy() retry.Policy {
	return retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
}

func TestFetchCoordinate_FallsThroughOn404(t *testing.T) {
	var firstHits atomic.Int32
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHits.Add(1)
		http.NotFound(w, r)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maven2/com/google/code/gson/gson/2.13.1/gson-2.13.1.jar", r.URL.Path)
		_, _ = io.WriteString(w, "jar-bytes")
	}))
	defer second.Close()

	cache := t.TempDir()
	f := NewFetcher([]string{first.URL + "/", second.URL + "/maven2/"}, cache, fastPolicy())

	p, err := f.FetchCoordinate(context.Background(), gson)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "com", "google", "code", "gson", "gson", "2.13.1", "gson-2.13.1.jar"), p)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))
	assert.Equal(t, int32(1), firstHits.Load())

	// Second call is served from the cache.
	first.Close()
	second.Close()
	p2, err := f.FetchCoordinate(context.Background(), gson)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
}

func TestFetchCoordinate_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	f := NewFetcher([]string{srv.URL}, t.TempDir(), fastPolicy())
	_, err := f.FetchCoordinate(context.Background(), gson)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchCoordinate_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher([]string{srv.URL}, t.TempDir(), fastPolicy())
	_, err := f.FetchCoordinate(context.Background(), gson)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNetwork, errors.GetCategory(err))
}

func TestFetchCoordinate_NotFoundAnywhere(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher([]string{srv.URL, srv.URL + "/other"}, t.TempDir(), fastPolicy())
	_, err := f.FetchCoordinate(context.Background(), gson)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
}

func TestResolveAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "remote")
	}))
	defer srv.Close()

	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "libs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(base, "libs", "local.jar"), []byte("local"), 0o600))

	cfg := &config.Config{
		BaseDir: base,
		Dependencies: []config.Dependency{
			{Path: "libs/local.jar"},
			{Coordinate: gson.String()},
		},
	}
	f := NewFetcher([]string{srv.URL}, filepath.Join(base, "cache"), fastPolicy())
	jars, err := f.ResolveAll(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, jars, 2)
	assert.Equal(t, filepath.Join(base, "libs", "local.jar"), jars[0])
	assert.Equal(t, f.CachePath(gson), jars[1])

	cfg.Dependencies = []config.Dependency{{Path: "libs/missing.jar"}}
	_, err = f.ResolveAll(context.Background(), cfg)
	assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
}

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jar" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "tool")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "tools", "checkstyle.jar")
	f := NewFetcher(nil, t.TempDir(), fastPolicy())
	require.NoError(t, f.FetchURL(context.Background(), srv.URL+"/checkstyle.jar", dest))
	assert.FileExists(t, dest)

	err := f.FetchURL(context.Background(), srv.URL+"/missing.jar", filepath.Join(t.TempDir(), "x.jar"))
	assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
}
