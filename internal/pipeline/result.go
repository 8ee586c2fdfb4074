package pipeline

import (
	"time"

	"git.home.luguber.info/inful/jarbuilder/internal/archive"
	"git.home.luguber.info/inful/jarbuilder/internal/compile"
	"git.home.luguber.info/inful/jarbuilder/internal/git"
	"git.home.luguber.info/inful/jarbuilder/internal/lint"
	"git.home.luguber.info/inful/jarbuilder/internal/maven"
)

// Status represents the outcome of a run.
type Status string

const (
	// StatusSuccess indicates every planned task succeeded or was skipped.
	StatusSuccess Status = "success"

	// StatusFailed indicates a task returned an error.
	StatusFailed Status = "failed"

	// StatusCanceled indicates the context was canceled between tasks.
	StatusCanceled Status = "canceled"
)

// IsSuccess returns true if the run completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// TaskStatus is the outcome of a single task.
type TaskStatus string

const (
	TaskSuccess  TaskStatus = "success"
	TaskSkipped  TaskStatus = "skipped"
	TaskFailed   TaskStatus = "failed"
	TaskCanceled TaskStatus = "canceled"
	TaskPending  TaskStatus = "pending"
)

// TaskResult records one planned task.
type TaskResult struct {
	Name     string
	Status   TaskStatus
	Duration time.Duration
	Err      error
}

// Artifact is a file written to the libs directory.
type Artifact struct {
	Task   string
	Path   string
	Bytes  int64
	SHA256 string
}

// Result contains the outcome of a run.
type Result struct {
	BuildID string
	Status  Status
	Targets []string
	Plan    []string
	Tasks   []TaskResult

	// FailedTask names the task that stopped the run.
	FailedTask string

	Artifacts []Artifact
	Git       *git.Info

	Compile *compile.Report
	Bundle  *archive.BundleReport
	Sources *archive.SourcesReport
	Lint    *lint.Result
	Publish *maven.PublishReport

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Task returns the result of the named task.
func (r *Result) Task(name string) (TaskResult, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskResult{}, false
}

// Artifact returns the artifact produced by the named task.
func (r *Result) Artifact(task string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Task == task {
			return a, true
		}
	}
	return Artifact{}, false
}
