package releasecheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

const repoJSON = `{"id":1,"name":"ReleaseChecker","full_name":"neziw/ReleaseChecker","owner":{"login":"neziw"},
"html_url":"https://github.com/neziw/ReleaseChecker","default_branch":"main","stargazers_count":7,
"created_at":"2024-01-02T03:04:05Z","updated_at":"2025-06-01T10:00:00+02:00","pushed_at":"2025-06-01T10:00:00Z"}`

const releaseJSON = `{"id":42,"html_url":"https://github.com/neziw/ReleaseChecker/releases/tag/v1.0.3","tag_name":"v1.0.3",
"target_commitish":"main","name":"1.0.3","body":"## Fixes\n\n- faster checks","draft":false,"prerelease":false,
"created_at":"2025-06-01T10:00:00Z","published_at":"2025-06-01T10:05:00+02:00"}`

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/neziw/ReleaseChecker":
			_, _ = w.Write([]byte(repoJSON))
		case "/repos/neziw/ReleaseChecker/releases/latest":
			_, _ = w.Write([]byte(releaseJSON))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestChecker_RepositoryData(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	defer srv.Close()

	c := New("neziw", "ReleaseChecker", "tok")
	c.APIURL = srv.URL

	data, err := c.RepositoryData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "neziw/ReleaseChecker", data.FullName)
	assert.Equal(t, "neziw", data.Owner.Login)
	assert.Equal(t, 7, data.StargazersCount)
	assert.True(t, data.UpdatedAt.Equal(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)))

	again, err := c.RepositoryData(context.Background())
	require.NoError(t, err)
	assert.Same(t, data, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestChecker_LatestReleaseMemoized(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	defer srv.Close()

	c := &Checker{Owner: "neziw", Repository: "ReleaseChecker", Token: "tok", APIURL: srv.URL}

	newer, err := c.IsNewerVersionAvailable(context.Background(), "1.0.2")
	require.NoError(t, err)
	assert.True(t, newer)

	newer, err = c.IsNewerVersionAvailable(context.Background(), "1.0.3")
	require.NoError(t, err)
	assert.False(t, newer)

	rel, err := c.LatestRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.0.3", rel.TagName)
	assert.Equal(t, int64(42), rel.ID)
	assert.Equal(t, int32(1), hits.Load())
}

func TestChecker_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/o/private":
			w.WriteHeader(http.StatusUnauthorized)
		case "/repos/o/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/repos/o/garbage":
			_, _ = w.Write([]byte("{not json"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		repo     string
		category errors.ErrorCategory
	}{
		{"missing", errors.CategoryNotFound},
		{"private", errors.CategoryAuth},
		{"broken", errors.CategoryGitHub},
		{"garbage", errors.CategoryGitHub},
	}
	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			c := &Checker{Owner: "o", Repository: tt.repo, APIURL: srv.URL}
			_, err := c.RepositoryData(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.category, errors.GetCategory(err))
		})
	}
}

func TestChecker_NoTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(releaseJSON))
	}))
	defer srv.Close()

	c := &Checker{Owner: "o", Repository: "r", APIURL: srv.URL}
	_, err := c.LatestRelease(context.Background())
	require.NoError(t, err)
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.2", "v1.0.3", true},
		{"1.1", "1.0.9", false},
		{"1.0", "1.0.1", true},
		{"1.0.1", "1.0", false},
		{"2.0.0", "release-2.0.0", false},
		{"1.9", "1.10", true},
		{"1.0", "v1.1.", true},
		{"1.1", "1.1.", false},
	}
	for _, tt := range tests {
		got, err := IsNewer(tt.current, tt.latest)
		require.NoError(t, err, tt.current+" vs "+tt.latest)
		assert.Equal(t, tt.want, got, tt.current+" vs "+tt.latest)
	}

	_, err := IsNewer("1.0-beta", "1.0.1")
	assert.Error(t, err)
	_, err = IsNewer("1.0", "latest")
	assert.Error(t, err)
}

func TestCleanVersion(t *testing.T) {
	assert.Equal(t, "1.0.3", CleanVersion("v1.0.3"))
	assert.Equal(t, "2.1", CleanVersion("release-2.1"))
	assert.Equal(t, "", CleanVersion("latest"))
}

func TestRenderNotes(t *testing.T) {
	html, err := RenderNotes("## Fixes\n\n- faster checks\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Fixes</h2>")
	assert.Contains(t, html, "<li>faster checks</li>")
}
