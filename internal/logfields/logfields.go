package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyTask       = "task"
	KeyTarget     = "target"
	KeyArtifact   = "artifact"
	KeyCoordinate = "coordinate"
	KeyRepository = "repository"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyKey        = "key"
	KeySource     = "source"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Task(name string) slog.Attr         { return slog.String(KeyTask, name) }
func Target(name string) slog.Attr       { return slog.String(KeyTarget, name) }
func Artifact(name string) slog.Attr     { return slog.String(KeyArtifact, name) }
func Coordinate(c string) slog.Attr      { return slog.String(KeyCoordinate, c) }
func Repository(r string) slog.Attr      { return slog.String(KeyRepository, r) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr             { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Key(k string) slog.Attr             { return slog.String(KeyKey, k) }
func Source(s string) slog.Attr          { return slog.String(KeySource, s) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
