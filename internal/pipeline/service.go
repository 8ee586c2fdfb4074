package pipeline

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
	"git.home.luguber.info/inful/jarbuilder/internal/credentials"
	"git.home.luguber.info/inful/jarbuilder/internal/eventstore"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/git"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
	"git.home.luguber.info/inful/jarbuilder/internal/metrics"
	"git.home.luguber.info/inful/jarbuilder/internal/notify"
	"git.home.luguber.info/inful/jarbuilder/internal/observability"
	"git.home.luguber.info/inful/jarbuilder/internal/process"
	"git.home.luguber.info/inful/jarbuilder/internal/workspace"
)

// errSkipped is returned by a task that had nothing to do.
var errSkipped = stderrors.New("skipped")

// Request contains the inputs of a run.
type Request struct {
	Config *config.Config

	// Targets are the requested task names. Empty means build.
	Targets []string
}

// Service executes runs. It is safe to reuse across runs but not for
// concurrent runs against the same output directory.
type Service struct {
	runner      process.Runner
	recorder    metrics.Recorder
	events      *eventstore.Recorder
	notifier    notify.Notifier
	credentials *credentials.Resolver
	now         func() time.Time
	newBuildID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithRunner sets the runner for javac and checkstyle.
func WithRunner(r process.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithEventStore records build events to store.
func WithEventStore(store eventstore.Store) Option {
	return func(s *Service) { s.events = eventstore.NewRecorder(store) }
}

// WithNotifier sets the publish notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithCredentials replaces the secret store lookup. By default the env file
// of the descriptor is loaded on publish.
func WithCredentials(r *credentials.Resolver) Option {
	return func(s *Service) { s.credentials = r }
}

// WithClock overrides time.Now (for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBuildIDGenerator overrides build id generation (for tests).
func WithBuildIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newBuildID = fn }
}

// NewService creates a service with the given options.
func NewService(opts ...Option) *Service {
	s := &Service{
		runner:     process.ExecRunner{},
		recorder:   metrics.NoopRecorder{},
		notifier:   notify.NoopNotifier{},
		now:        time.Now,
		newBuildID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plans and executes the requested targets. The returned result is never
// nil; err is the error of the failed task or the context error.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := s.now()
	result := &Result{
		BuildID:   s.newBuildID(),
		StartTime: startTime,
		Targets:   req.Targets,
	}
	if len(result.Targets) == 0 {
		result.Targets = []string{TaskBuild}
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)
	ctx = observability.WithTarget(ctx, strings.Join(result.Targets, ","))

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.EndTime = s.now()
		result.Duration = result.EndTime.Sub(startTime)
		s.recorder.ObserveBuildDuration(result.Duration)
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(status))
		data := eventstore.BuildCompletedData{
			Status:     string(status),
			DurationMS: result.Duration.Milliseconds(),
			FailedTask: result.FailedTask,
		}
		if err != nil {
			data.Error = err.Error()
		}
		s.record(ctx, func() (*eventstore.BaseEvent, error) {
			return eventstore.NewBuildCompleted(result.BuildID, data)
		})
		return result, err
	}

	if req.Config == nil {
		return finish(StatusFailed, errors.ConfigError("config required").Build())
	}
	cfg := req.Config

	r := &run{
		svc:    s,
		cfg:    cfg,
		layout: workspace.NewLayout(cfg.Resolve(cfg.Output.Directory)),
		result: result,
	}
	graph, err := r.graph()
	if err != nil {
		return finish(StatusFailed, err)
	}
	plan, err := graph.Plan(result.Targets)
	if err != nil {
		return finish(StatusFailed, err)
	}
	result.Plan = plan
	result.Tasks = make([]TaskResult, len(plan))
	for i, name := range plan {
		result.Tasks[i] = TaskResult{Name: name, Status: TaskPending}
	}

	info, err := git.Describe(cfg.BaseDir)
	if err != nil {
		slog.Debug("Git metadata unavailable", logfields.Error(err))
	}
	r.git = info
	result.Git = info

	started := eventstore.BuildStartedData{
		Project: cfg.Project.Group + ":" + cfg.Project.Name + ":" + cfg.Project.Version,
		Targets: result.Targets,
		Tasks:   plan,
	}
	if info != nil {
		started.GitCommit = info.Commit
		started.GitBranch = info.Branch
	}
	s.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewBuildStarted(result.BuildID, started)
	})
	observability.InfoContext(ctx, "Starting build",
		slog.Any("targets", result.Targets),
		slog.Any("tasks", plan))

	if err := r.layout.Prepare(cfg.Output.Clean); err != nil {
		return finish(StatusFailed, errors.WrapError(err, errors.CategoryFileSystem, "failed to prepare output directory").Build())
	}

	for i, name := range plan {
		if ctx.Err() != nil {
			for j := i; j < len(plan); j++ {
				result.Tasks[j].Status = TaskCanceled
				s.recorder.IncTaskResult(plan[j], metrics.ResultCanceled)
			}
			observability.WarnContext(ctx, "Build canceled", logfields.Task(name))
			return finish(StatusCanceled, ctx.Err())
		}

		task, _ := graph.Task(name)
		tr := s.runTask(observability.WithTask(ctx, name), task, result.BuildID)
		result.Tasks[i] = tr
		if tr.Status == TaskFailed || tr.Status == TaskCanceled {
			for j := i + 1; j < len(plan); j++ {
				result.Tasks[j].Status = TaskCanceled
			}
			if tr.Status == TaskCanceled {
				observability.WarnContext(ctx, "Build canceled", logfields.Task(name))
				return finish(StatusCanceled, tr.Err)
			}
			result.FailedTask = name
			return finish(StatusFailed, tr.Err)
		}
	}

	observability.InfoContext(ctx, "Build finished",
		logfields.Count(len(result.Artifacts)),
		logfields.Duration(s.now().Sub(startTime)))
	return finish(StatusSuccess, nil)
}

func (s *Service) runTask(ctx context.Context, task Task, buildID string) TaskResult {
	observability.InfoContext(ctx, "Running task")
	start := s.now()
	err := task.Run(ctx)
	tr := TaskResult{Name: task.Name, Duration: s.now().Sub(start)}

	switch {
	case err == nil:
		tr.Status = TaskSuccess
	case stderrors.Is(err, errSkipped):
		tr.Status = TaskSkipped
		observability.InfoContext(ctx, "Task skipped")
	case ctx.Err() != nil:
		tr.Status = TaskCanceled
		tr.Err = ctx.Err()
	default:
		tr.Status = TaskFailed
		tr.Err = err
		observability.ErrorContext(ctx, "Task failed", logfields.Error(err))
	}

	s.recorder.ObserveTaskDuration(task.Name, tr.Duration)
	s.recorder.IncTaskResult(task.Name, metrics.ResultLabel(tr.Status))

	data := eventstore.TaskCompletedData{
		Task:       task.Name,
		Result:     string(tr.Status),
		DurationMS: tr.Duration.Milliseconds(),
	}
	if tr.Err != nil {
		data.Error = tr.Err.Error()
	}
	s.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewTaskCompleted(buildID, data)
	})
	return tr
}

// record appends an event. History failures are logged and never fail a run.
func (s *Service) record(ctx context.Context, build func() (*eventstore.BaseEvent, error)) {
	if s.events == nil {
		return
	}
	e, err := build()
	if err == nil {
		// Canceled runs still record their completion.
		err = s.events.Record(context.WithoutCancel(ctx), e)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record build event", logfields.Error(err))
	}
}
