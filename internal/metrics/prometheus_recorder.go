package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "jarbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	taskDuration  *prom.HistogramVec
	taskResults   *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	artifactBytes *prom.GaugeVec
	uploads       *prom.CounterVec
	downloads     *prom.CounterVec
}

// NewPrometheusRecorder constructs metrics and registers them on reg. A nil
// reg creates a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		taskDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of individual build tasks",
			Buckets:   prom.DefBuckets,
		}, []string{"task"}),
		taskResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Task result counts by outcome",
		}, []string{"task", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		artifactBytes: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_size_bytes",
			Help:      "Size of the last produced artifact",
		}, []string{"artifact"}),
		uploads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Repository uploads by result",
		}, []string{"result"}),
		downloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "dependency_resolutions_total",
			Help:      "Dependency resolutions by source",
		}, []string{"source"}),
	}
	reg.MustRegister(pr.taskDuration, pr.taskResults, pr.buildDuration, pr.buildOutcome, pr.artifactBytes, pr.uploads, pr.downloads)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveTaskDuration(task string, d time.Duration) {
	if p == nil {
		return
	}
	p.taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskResult(task string, result ResultLabel) {
	if p == nil {
		return
	}
	p.taskResults.WithLabelValues(task, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveArtifactSize(artifact string, bytes int64) {
	if p == nil {
		return
	}
	p.artifactBytes.WithLabelValues(artifact).Set(float64(bytes))
}

func (p *PrometheusRecorder) IncUpload(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.uploads.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncDownload(cacheHit bool) {
	if p == nil {
		return
	}
	src := "remote"
	if cacheHit {
		src = "cache"
	}
	p.downloads.WithLabelValues(src).Inc()
}
