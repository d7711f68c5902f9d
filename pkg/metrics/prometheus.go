package metrics

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"gofileio/pkg/errors"
	"gofileio/pkg/types"
)

// PrometheusExporter renders search results in the Prometheus text format
type PrometheusExporter struct {
	registry *prometheus.Registry

	found       *prometheus.GaugeVec
	probes      *prometheus.CounterVec
	listings    *prometheus.CounterVec
	visited     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	frontierMax *prometheus.GaugeVec
	duration    *prometheus.GaugeVec
	targets     prometheus.Gauge
	failed      prometheus.Gauge
}

// NewPrometheusExporter creates an exporter backed by a private registry
func NewPrometheusExporter() *PrometheusExporter {
	label := []string{"target"}
	p := &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		found: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gofileio_find_found",
			Help: "Whether the target was located (1=found, 0=not found or failed)",
		}, label),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gofileio_find_probes_total",
			Help: "Existence probes performed by the search",
		}, label),
		listings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gofileio_find_listings_total",
			Help: "Directory listings performed by the search",
		}, label),
		visited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gofileio_find_directories_visited_total",
			Help: "Directories dequeued from the frontier",
		}, label),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gofileio_find_directories_skipped_total",
			Help: "Unreadable directories skipped",
		}, label),
		frontierMax: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gofileio_find_frontier_max",
			Help: "Largest number of queued directories",
		}, label),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gofileio_find_duration_seconds",
			Help: "Duration of the search",
		}, label),
		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gofileio_find_targets_total",
			Help: "Total number of targets searched",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gofileio_find_failed_total",
			Help: "Searches aborted by a traversal error",
		}),
	}
	p.registry.MustRegister(
		p.found, p.probes, p.listings, p.visited, p.skipped,
		p.frontierMax, p.duration, p.targets, p.failed,
	)
	return p
}

// record adds a batch of searches to the registry. A target searched more
// than once keeps a single series: counters and durations add up, found is
// set if any search located it, frontier_max keeps the largest value.
func (p *PrometheusExporter) record(results []types.TargetResult) {
	peak := make(map[string]int)
	for _, r := range results {
		s := r.Result.Stats
		found := p.found.WithLabelValues(r.Target)
		if r.Err == nil && r.Result.Found() {
			found.Set(1)
		} else {
			found.Add(0)
		}
		p.probes.WithLabelValues(r.Target).Add(float64(s.Probes))
		p.listings.WithLabelValues(r.Target).Add(float64(s.Listings))
		p.visited.WithLabelValues(r.Target).Add(float64(s.Visited))
		p.skipped.WithLabelValues(r.Target).Add(float64(s.Skipped))
		p.duration.WithLabelValues(r.Target).Add(s.Duration.Seconds())
		if prev, ok := peak[r.Target]; !ok || s.MaxFrontier > prev {
			peak[r.Target] = s.MaxFrontier
			p.frontierMax.WithLabelValues(r.Target).Set(float64(s.MaxFrontier))
		}
		p.targets.Inc()
		if r.Err != nil {
			p.failed.Inc()
		}
	}
}

// ExportMetrics records results and renders the registry in the text
// exposition format
func (p *PrometheusExporter) ExportMetrics(results []types.TargetResult) (string, error) {
	p.record(results)

	families, err := p.registry.Gather()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeUnknown, "failed to gather metrics")
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeUnknown, "failed to encode metrics")
		}
	}
	return buf.String(), nil
}
