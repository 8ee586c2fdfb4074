package maven

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/credentials"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/version"
)

// bodyExcerptLimit caps the response body included in upload errors.
const bodyExcerptLimit = 512

// Artifact is a local file published under the coordinate.
type Artifact struct {
	File       string
	Classifier string
	Extension  string
}

// Upload is one completed PUT.
type Upload struct {
	Path   string `json:"path"`
	Status int    `json:"status"`
	Bytes  int    `json:"bytes"`
}

// PublishReport lists uploads in order.
type PublishReport struct {
	Repository string   `json:"repository"`
	Uploads    []Upload `json:"uploads"`
}

// Publisher uploads artifacts to a Maven-style repository with HTTP PUT.
// Uploads are not retried.
type Publisher struct {
	baseURL    string
	creds      credentials.Credentials
	httpClient *http.Client
	now        func() time.Time
}

// NewPublisher creates a publisher. A zero timeout means no client timeout.
func NewPublisher(baseURL string, creds credentials.Credentials, timeout time.Duration) *Publisher {
	return &Publisher{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Publish uploads every artifact, then the POM, each followed by its checksum
// sidecars, and finally merges and uploads maven-metadata.xml.
func (p *Publisher) Publish(ctx context.Context, c Coordinate, pom []byte, artifacts []Artifact) (*PublishReport, error) {
	report := &PublishReport{Repository: p.baseURL}

	for _, a := range artifacts {
		data, err := os.ReadFile(a.File)
		if err != nil {
			return report, errors.WrapError(err, errors.CategoryFileSystem, "failed to read artifact").
				WithContext("file", a.File).
				Build()
		}
		ext := a.Extension
		if ext == "" {
			ext = "jar"
		}
		if err := p.uploadWithChecksums(ctx, report, c.Path(a.Classifier, ext), data); err != nil {
			return report, err
		}
	}

	if err := p.uploadWithChecksums(ctx, report, c.Path("", "pom"), pom); err != nil {
		return report, err
	}

	if err := p.updateMetadata(ctx, report, c); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Publisher) uploadWithChecksums(ctx context.Context, report *PublishReport, rel string, data []byte) error {
	if err := p.put(ctx, report, rel, data); err != nil {
		return err
	}
	for _, alg := range ChecksumAlgorithms {
		if err := p.put(ctx, report, rel+"."+alg, []byte(Checksum(alg, data))); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) updateMetadata(ctx context.Context, report *PublishReport, c Coordinate) error {
	rel := c.MetadataPath()
	existing, found, err := p.get(ctx, rel)
	if err != nil {
		return err
	}

	meta := NewMetadata(c)
	if found {
		parsed, perr := ParseMetadata(existing)
		if perr != nil {
			slog.Warn("Replacing unreadable repository metadata", logfields.Path(rel), logfields.Error(perr))
		} else {
			meta = parsed
		}
	}
	meta.AddVersion(c, p.now())

	data, err := meta.Marshal()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode metadata").Build()
	}
	return p.uploadWithChecksums(ctx, report, rel, data)
}

func (p *Publisher) resolve(rel string) (string, error) {
	return url.JoinPath(p.baseURL, rel)
}

func (p *Publisher) newRequest(ctx context.Context, method, rel string, body []byte) (*http.Request, error) {
	target, err := p.resolve(rel)
	if err != nil {
		return nil, err
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.ContentLength = int64(len(body))
		req.Header.Set("Content-Type", contentType(rel))
	}
	req.SetBasicAuth(p.creds.Username, p.creds.Password)
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

func (p *Publisher) put(ctx context.Context, report *PublishReport, rel string, data []byte) error {
	req, err := p.newRequest(ctx, http.MethodPut, rel, data)
	if err != nil {
		return errors.WrapError(err, errors.CategoryPublish, "failed to build upload request").
			WithContext("path", rel).
			Build()
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.CategoryPublish, "upload failed").
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.PublishError(fmt.Sprintf("upload of %s rejected with status %d", rel, resp.StatusCode)).
			WithContext("url", req.URL.String()).
			WithContext("status", resp.StatusCode).
			WithContext("body", readExcerpt(resp.Body)).
			Build()
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	slog.Debug("Uploaded",
		logfields.URL(req.URL.String()),
		logfields.Status(resp.StatusCode),
		logfields.Duration(time.Since(start)))
	report.Uploads = append(report.Uploads, Upload{Path: rel, Status: resp.StatusCode, Bytes: len(data)})
	return nil
}

// get fetches rel. A 404 reports found=false without error.
func (p *Publisher) get(ctx context.Context, rel string) ([]byte, bool, error) {
	req, err := p.newRequest(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryPublish, "failed to build metadata request").Build()
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryPublish, "metadata download failed").
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, false, errors.PublishError(fmt.Sprintf("metadata download rejected with status %d", resp.StatusCode)).
			WithContext("url", req.URL.String()).
			WithContext("status", resp.StatusCode).
			WithContext("body", readExcerpt(resp.Body)).
			Build()
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryPublish, "failed to read metadata").Build()
	}
	return data, true, nil
}

func readExcerpt(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, bodyExcerptLimit+1))
	s := strings.TrimSpace(string(data))
	if len(s) > bodyExcerptLimit {
		s = s[:bodyExcerptLimit] + "..."
	}
	return s
}

func contentType(rel string) string {
	switch {
	case strings.HasSuffix(rel, ".jar"):
		return "application/java-archive"
	case strings.HasSuffix(rel, ".pom"), strings.HasSuffix(rel, ".xml"):
		return "application/xml"
	default:
		return "text/plain"
	}
}
