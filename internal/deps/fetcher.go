// Package deps downloads declared dependency jars and tool jars into a local
// cache. Resolution is not transitive: only the listed coordinates are fetched.
package deps

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/maven"
	"git.home.luguber.info/inful/jarbuilder/internal/retry"
	"git.home.luguber.info/inful/jarbuilder/internal/version"
)

// statusError is a non-2xx download response.
type statusError struct {
	URL    string
	Status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// isTransient reports whether a download failure is worth retrying.
func isTransient(err error) bool {
	var se *statusError
	if stderrors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}

// Fetcher downloads artifacts from an ordered list of repositories.
type Fetcher struct {
	repositories []string
	cacheDir     string
	policy       retry.Policy
	httpClient   *http.Client
}

// NewFetcher creates a fetcher caching below cacheDir.
func NewFetcher(repositories []string, cacheDir string, policy retry.Policy) *Fetcher {
	return &Fetcher{
		repositories: repositories,
		cacheDir:     cacheDir,
		policy:       policy,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
	}
}

// CachePath returns the cache location of c's main jar.
func (f *Fetcher) CachePath(c maven.Coordinate) string {
	return filepath.Join(f.cacheDir, filepath.FromSlash(c.Path("", "jar")))
}

// FetchCoordinate returns the local path of c's jar, downloading it when it
// is not cached. Repositories are tried in order; a 404 moves to the next.
func (f *Fetcher) FetchCoordinate(ctx context.Context, c maven.Coordinate) (string, error) {
	dest := f.CachePath(c)
	if fileExists(dest) {
		slog.Debug("Dependency cache hit", logfields.Coordinate(c.String()), logfields.Path(dest))
		return dest, nil
	}

	for _, repo := range f.repositories {
		target, err := url.JoinPath(repo, c.Path("", "jar"))
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryValidation, "invalid repository URL").
				WithContext("url", repo).
				Build()
		}
		err = f.download(ctx, target, dest)
		var se *statusError
		if stderrors.As(err, &se) && se.Status == http.StatusNotFound {
			slog.Debug("Dependency not in repository", logfields.Coordinate(c.String()), logfields.Repository(repo))
			continue
		}
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryNetwork, "failed to download dependency").
				WithContext("coordinate", c.String()).
				WithContext("url", target).
				Build()
		}
		slog.Info("Downloaded dependency", logfields.Coordinate(c.String()), logfields.Repository(repo))
		return dest, nil
	}

	return "", errors.NotFoundError("dependency not found in any repository").
		WithContext("coordinate", c.String()).
		WithContext("repositories", f.repositories).
		Build()
}

// FetchURL downloads rawURL to dest unless dest already exists.
func (f *Fetcher) FetchURL(ctx context.Context, rawURL, dest string) error {
	if fileExists(dest) {
		return nil
	}
	if err := f.download(ctx, rawURL, dest); err != nil {
		var se *statusError
		if stderrors.As(err, &se) && se.Status == http.StatusNotFound {
			return errors.NotFoundError("download not found").WithContext("url", rawURL).Build()
		}
		return errors.WrapError(err, errors.CategoryNetwork, "download failed").
			WithContext("url", rawURL).
			Build()
	}
	slog.Info("Downloaded tool", logfields.URL(rawURL), logfields.Path(dest))
	return nil
}

// ResolveAll returns the local jar of every declared dependency in
// declaration order. Path dependencies resolve against the descriptor directory.
func (f *Fetcher) ResolveAll(ctx context.Context, cfg *config.Config) ([]string, error) {
	out := make([]string, 0, len(cfg.Dependencies))
	for _, dep := range cfg.Dependencies {
		if dep.Path != "" {
			p := cfg.Resolve(dep.Path)
			if !fileExists(p) {
				return nil, errors.NotFoundError("dependency jar not found").
					WithContext("path", p).
					Build()
			}
			out = append(out, p)
			continue
		}
		c, err := maven.ParseCoordinate(dep.Coordinate)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation, "invalid dependency").Build()
		}
		p, err := f.FetchCoordinate(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dest string) error {
	return f.policy.Do(ctx, "download "+rawURL, func(err error) bool {
		var se *statusError
		if stderrors.As(err, &se) && se.Status == http.StatusNotFound {
			return false
		}
		return isTransient(err)
	}, func(ctx context.Context) error {
		return f.downloadOnce(ctx, rawURL, dest)
	})
}

func (f *Fetcher) downloadOnce(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return &statusError{URL: rawURL, Status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
