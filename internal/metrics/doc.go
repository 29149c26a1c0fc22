// Package metrics provides render and build metrics for webtree.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless a PrometheusRecorder is
// configured (the watch command serves it on /metrics).
package metrics
