// Package releasecheck looks up a GitHub repository and its latest release
// and compares dotted version strings against the release tag.
package releasecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/version"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// Checker queries one repository. Responses are memoized after the first
// successful fetch, so a Checker reflects a single point in time; create a
// new one to observe later releases. Safe for concurrent use.
type Checker struct {
	Owner      string
	Repository string
	// Token is sent as a bearer token when non-empty.
	Token string
	// APIURL defaults to DefaultAPIURL.
	APIURL string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	mu         sync.Mutex
	repository *RepositoryData
	release    *ReleaseData
}

// New creates a checker for owner/repository.
func New(owner, repository, token string) *Checker {
	return &Checker{Owner: owner, Repository: repository, Token: token}
}

// RepositoryData fetches repository details.
func (c *Checker) RepositoryData(ctx context.Context) (*RepositoryData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.repository != nil {
		return c.repository, nil
	}

	var data RepositoryData
	if err := c.get(ctx, path.Join("repos", c.Owner, c.Repository), &data); err != nil {
		return nil, err
	}
	c.repository = &data
	return c.repository, nil
}

// LatestRelease fetches the latest published release.
func (c *Checker) LatestRelease(ctx context.Context) (*ReleaseData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.release != nil {
		return c.release, nil
	}

	var data ReleaseData
	if err := c.get(ctx, path.Join("repos", c.Owner, c.Repository, "releases", "latest"), &data); err != nil {
		return nil, err
	}
	c.release = &data
	return c.release, nil
}

// IsNewerVersionAvailable reports whether the latest release tag is newer
// than current.
func (c *Checker) IsNewerVersionAvailable(ctx context.Context, current string) (bool, error) {
	release, err := c.LatestRelease(ctx)
	if err != nil {
		return false, err
	}
	newer, err := IsNewer(current, release.TagName)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryValidation, "cannot compare versions").
			WithContext("current", current).
			WithContext("latest", release.TagName).
			Build()
	}
	return newer, nil
}

func (c *Checker) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Checker) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	base := c.APIURL
	if base == "" {
		base = DefaultAPIURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Checker) get(ctx context.Context, endpoint string, result any) error {
	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid GitHub API URL").Build()
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return errors.WrapError(err, errors.CategoryGitHub, "GitHub API request failed").
			Retryable().
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NotFoundError(fmt.Sprintf("GitHub resource not found: %s", endpoint)).
			WithContext("url", req.URL.String()).
			Build()
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.AuthError(fmt.Sprintf("GitHub API error: %s", resp.Status)).
			WithContext("url", req.URL.String()).
			Build()
	case resp.StatusCode >= 400:
		return errors.GitHubError(fmt.Sprintf("GitHub API error: %s", resp.Status)).
			WithContext("url", req.URL.String()).
			WithContext("status", resp.StatusCode).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapError(err, errors.CategoryGitHub, "failed to read GitHub response").Build()
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.WrapError(err, errors.CategoryGitHub, "failed to decode GitHub response").
			WithContext("url", req.URL.String()).
			Build()
	}
	return nil
}
