package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webtree"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	renderDuration *prom.HistogramVec
	renderResults  *prom.CounterVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	nodeResults    *prom.CounterVec
	workers        prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg,
// a fresh registry when nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of block renders",
			Buckets:   prom.DefBuckets,
		}, []string{"block"}),
		renderResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_results_total",
			Help:      "Block render results by outcome",
		}, []string{"block", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		nodeResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "node_results_total",
			Help:      "Nodes written, skipped as unchanged or failed",
		}, []string{"result"}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "render_workers",
			Help:      "Render workers used by the last build",
		}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderResults, pr.buildDuration, pr.buildOutcome, pr.nodeResults, pr.workers)
	return pr
}

// Handler serves every metric of the recorder's registry in the Prometheus
// exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true, Registry: p.reg})
}

func (p *PrometheusRecorder) ObserveRenderDuration(block string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(block).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderResult(block string, result ResultLabel) {
	if p == nil {
		return
	}
	p.renderResults.WithLabelValues(block, string(result)).Inc()
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

func (p *PrometheusRecorder) IncNodeResult(result NodeResultLabel) {
	if p == nil {
		return
	}
	p.nodeResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}
