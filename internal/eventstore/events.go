package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
)

// Event type names.
const (
	TypeBuildStarted      = "BuildStarted"
	TypeTaskCompleted     = "TaskCompleted"
	TypeArtifactProduced  = "ArtifactProduced"
	TypeArtifactPublished = "ArtifactPublished"
	TypeBuildCompleted    = "BuildCompleted"
)

// BuildStartedData is the payload of a BuildStarted event.
type BuildStartedData struct {
	Project   string   `json:"project"` // group:name:version
	Targets   []string `json:"targets"`
	Tasks     []string `json:"tasks"`
	GitCommit string   `json:"git_commit,omitempty"`
	GitBranch string   `json:"git_branch,omitempty"`
}

// TaskCompletedData is the payload of a TaskCompleted event.
type TaskCompletedData struct {
	Task       string `json:"task"`
	Result     string `json:"result"` // success|skipped|failed|canceled
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// ArtifactProducedData is the payload of an ArtifactProduced event.
type ArtifactProducedData struct {
	Task   string `json:"task"`
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256,omitempty"`
}

// ArtifactPublishedData is the payload of an ArtifactPublished event.
type ArtifactPublishedData struct {
	Coordinate string `json:"coordinate"`
	Repository string `json:"repository"`
	Uploads    int    `json:"uploads"`
}

// BuildCompletedData is the payload of a BuildCompleted event.
type BuildCompletedData struct {
	Status     string `json:"status"` // success|failed|canceled
	DurationMS int64  `json:"duration_ms"`
	FailedTask string `json:"failed_task,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newEvent(buildID, eventType string, data any) (*BaseEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.HistoryError("failed to marshal " + eventType + " payload").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}, nil
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, data BuildStartedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildStarted, data)
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(buildID string, data TaskCompletedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeTaskCompleted, data)
}

// NewArtifactProduced creates an ArtifactProduced event.
func NewArtifactProduced(buildID string, data ArtifactProducedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeArtifactProduced, data)
}

// NewArtifactPublished creates an ArtifactPublished event.
func NewArtifactPublished(buildID string, data ArtifactPublishedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeArtifactPublished, data)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, data BuildCompletedData) (*BaseEvent, error) {
	return newEvent(buildID, TypeBuildCompleted, data)
}
