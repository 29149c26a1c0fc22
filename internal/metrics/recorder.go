package metrics

import "time"

// ResultLabel enumerates render result categories for counters.
type ResultLabel string

const (
	ResultSuccess       ResultLabel = "success"
	ResultBlockNotFound ResultLabel = "block_not_found"
	ResultFailed        ResultLabel = "failed"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeWarning  BuildOutcomeLabel = "warning"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// NodeResultLabel enumerates what the build did with a node.
type NodeResultLabel string

const (
	NodeWritten NodeResultLabel = "written"
	NodeSkipped NodeResultLabel = "skipped"
	NodeFailed  NodeResultLabel = "failed"
)

// Recorder defines observability hooks for render and build metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveRenderDuration(block string, d time.Duration)
	IncRenderResult(block string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncNodeResult(result NodeResultLabel)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) IncRenderResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)           {}
func (NoopRecorder) IncNodeResult(NodeResultLabel)               {}
func (NoopRecorder) SetWorkers(int)                              {}
