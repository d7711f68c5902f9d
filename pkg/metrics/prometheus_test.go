package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofileio/pkg/types"
)

func TestExportMetrics(t *testing.T) {
	t.Parallel()

	out, err := NewPrometheusExporter().ExportMetrics([]types.TargetResult{
		{
			Target: "b.txt",
			Result: types.FindResult{Status: types.NotFound, Stats: types.SearchStats{Probes: 3, Listings: 3, Visited: 3}},
		},
		{
			Target: "a.txt",
			Result: types.FindResult{Status: types.Found, Path: "x/a.txt", Stats: types.SearchStats{Probes: 2, Listings: 1, Visited: 2, MaxFrontier: 4}},
		},
		{
			Target: "c\"txt",
			Err:    errors.New("permission denied"),
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "# TYPE gofileio_find_found gauge\n")
	assert.Contains(t, out, "# TYPE gofileio_find_probes_total counter\n")
	assert.Contains(t, out, "gofileio_find_found{target=\"a.txt\"} 1\n")
	assert.Contains(t, out, "gofileio_find_found{target=\"b.txt\"} 0\n")
	assert.Contains(t, out, "gofileio_find_found{target=\"c\\\"txt\"} 0\n")
	assert.Contains(t, out, "gofileio_find_probes_total{target=\"b.txt\"} 3\n")
	assert.Contains(t, out, "gofileio_find_listings_total{target=\"a.txt\"} 1\n")
	assert.Contains(t, out, "gofileio_find_frontier_max{target=\"a.txt\"} 4\n")
	assert.Contains(t, out, "gofileio_find_targets_total 3\n")
	assert.Contains(t, out, "gofileio_find_failed_total 1\n")

	assert.Less(t, strings.Index(out, "target=\"a.txt\"} 1"), strings.Index(out, "target=\"b.txt\"} 0"),
		"series are rendered in sorted label order")
}

func TestExportMetricsRepeatedTarget(t *testing.T) {
	t.Parallel()

	out, err := NewPrometheusExporter().ExportMetrics([]types.TargetResult{
		{
			Target: "a",
			Result: types.FindResult{Status: types.Found, Stats: types.SearchStats{Probes: 2, MaxFrontier: 5, Duration: time.Second}},
		},
		{
			Target: "a",
			Result: types.FindResult{Status: types.NotFound, Stats: types.SearchStats{Probes: 3, MaxFrontier: 1, Duration: time.Second}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "gofileio_find_found{target=\"a\"}"), "one series per target")
	assert.Contains(t, out, "gofileio_find_found{target=\"a\"} 1\n")
	assert.Contains(t, out, "gofileio_find_probes_total{target=\"a\"} 5\n")
	assert.Contains(t, out, "gofileio_find_frontier_max{target=\"a\"} 5\n")
	assert.Contains(t, out, "gofileio_find_duration_seconds{target=\"a\"} 2\n")
	assert.Contains(t, out, "gofileio_find_targets_total 2\n")
}
