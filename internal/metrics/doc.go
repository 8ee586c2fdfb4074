// Package metrics records task and build metrics for JarBuilder runs.
//
// Components receive a Recorder through dependency injection. NoopRecorder
// is the default and does nothing, so callers never nil-check:
//
//	type Runner struct {
//	    recorder metrics.Recorder
//	}
//
// When metrics.textfile is configured the CLI swaps in a PrometheusRecorder
// backed by a private registry and writes the registry in the node_exporter
// textfile format after every run (see WriteTextfile).
package metrics
