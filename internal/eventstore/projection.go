package eventstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const buildStatusRunning = "running"

// BuildSummary is a read model summarizing a completed or in-progress build.
type BuildSummary struct {
	BuildID     string                 `json:"build_id"`
	Project     string                 `json:"project"`
	Targets     []string               `json:"targets"`
	GitCommit   string                 `json:"git_commit,omitempty"`
	Status      string                 `json:"status"` // running|success|failed|canceled
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Duration    time.Duration          `json:"duration,omitempty"`
	Tasks       []TaskCompletedData    `json:"tasks,omitempty"`
	Artifacts   []ArtifactProducedData `json:"artifacts,omitempty"`
	Published   *ArtifactPublishedData `json:"published,omitempty"`
	FailedTask  string                 `json:"failed_task,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Summarize folds the events of one build, in append order, into a summary.
// Events with undecodable payloads are skipped.
func Summarize(events []Event) *BuildSummary {
	if len(events) == 0 {
		return nil
	}
	s := &BuildSummary{BuildID: events[0].BuildID(), Status: buildStatusRunning, StartedAt: events[0].Timestamp()}
	for _, e := range events {
		if err := apply(s, e); err != nil {
			slog.Warn("Skipping undecodable history event", "event_type", e.Type(), "build.id", e.BuildID(), "error", err)
		}
	}
	return s
}

func apply(s *BuildSummary, e Event) error {
	switch e.Type() {
	case TypeBuildStarted:
		var d BuildStartedData
		if err := json.Unmarshal(e.Payload(), &d); err != nil {
			return err
		}
		s.Project = d.Project
		s.Targets = d.Targets
		s.GitCommit = d.GitCommit
		s.StartedAt = e.Timestamp()
	case TypeTaskCompleted:
		var d TaskCompletedData
		if err := json.Unmarshal(e.Payload(), &d); err != nil {
			return err
		}
		s.Tasks = append(s.Tasks, d)
	case TypeArtifactProduced:
		var d ArtifactProducedData
		if err := json.Unmarshal(e.Payload(), &d); err != nil {
			return err
		}
		s.Artifacts = append(s.Artifacts, d)
	case TypeArtifactPublished:
		var d ArtifactPublishedData
		if err := json.Unmarshal(e.Payload(), &d); err != nil {
			return err
		}
		s.Published = &d
	case TypeBuildCompleted:
		var d BuildCompletedData
		if err := json.Unmarshal(e.Payload(), &d); err != nil {
			return err
		}
		completed := e.Timestamp()
		s.Status = d.Status
		s.CompletedAt = &completed
		s.Duration = time.Duration(d.DurationMS) * time.Millisecond
		s.FailedTask = d.FailedTask
		s.Error = d.Error
	}
	return nil
}

// History lists summaries of the most recent builds, newest first.
func History(ctx context.Context, store *SQLiteStore, limit int) ([]*BuildSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := store.RecentBuildIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*BuildSummary, 0, len(ids))
	for _, id := range ids {
		events, err := store.GetByBuildID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s := Summarize(events); s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}
