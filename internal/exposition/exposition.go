// Package exposition renders borg repository statistics in the Prometheus
// text format.
//
// The metric table below is consumed by dashboards and alerts: names,
// types and order must stay as they are.
package exposition

import (
	"fmt"
	"io"

	"github.com/MrSnakeDoc/borg-exporter/internal/borg"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const (
	namespace     = "borg"
	RepositoryKey = "repository"
)

// ContentType is the Content-Type of a rendered body.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

type metricDef struct {
	name      string
	help      string
	valueType prometheus.ValueType
	dtoType   dto.MetricType
	value     func(stats borg.CacheStats, lastModified int64) float64
	desc      *prometheus.Desc
}

func gauge(name, help string, value func(borg.CacheStats, int64) float64) *metricDef {
	return newDef(name, help, prometheus.GaugeValue, dto.MetricType_GAUGE, value)
}

func counter(name, help string, value func(borg.CacheStats, int64) float64) *metricDef {
	return newDef(name, help, prometheus.CounterValue, dto.MetricType_COUNTER, value)
}

func newDef(name, help string, vt prometheus.ValueType, t dto.MetricType, value func(borg.CacheStats, int64) float64) *metricDef {
	fqName := prometheus.BuildFQName(namespace, "", name)
	return &metricDef{
		name:      fqName,
		help:      help,
		valueType: vt,
		dtoType:   t,
		value:     value,
		desc:      prometheus.NewDesc(fqName, help, []string{RepositoryKey}, nil),
	}
}

var metrics = []*metricDef{
	gauge("total_chunks", "Number of chunks referenced by all archives",
		func(s borg.CacheStats, _ int64) float64 { return float64(s.TotalChunks) }),
	gauge("total_csize", "Compressed size in bytes of all archives",
		func(s borg.CacheStats, _ int64) float64 { return float64(s.TotalCSize) }),
	gauge("total_size", "Original size in bytes of all archives",
		func(s borg.CacheStats, _ int64) float64 { return float64(s.TotalSize) }),
	gauge("total_unique_chunks", "Number of unique chunks in the repository",
		func(s borg.CacheStats, _ int64) float64 { return float64(s.TotalUniqueChunks) }),
	gauge("unique_csize", "Compressed size in bytes of the deduplicated repository",
		func(s borg.CacheStats, _ int64) float64 { return float64(s.UniqueCSize) }),
	gauge("unique_size", "Original size in bytes of the deduplicated repository",
		func(s borg.CacheStats, _ int64) float64 { return float64(s.UniqueSize) }),
	counter("last_modified", "Unix time of the last repository modification",
		func(_ borg.CacheStats, lastModified int64) float64 { return float64(lastModified) }),
}

// Names returns the metric names in output order.
func Names() []string {
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = m.name
	}
	return names
}

// Render writes the HELP, TYPE and sample lines of every metric for one
// repository. It fails only on a label that is not valid UTF-8 or a write
// error.
func Render(w io.Writer, label string, stats borg.CacheStats, lastModified int64) error {
	for _, m := range metrics {
		family, err := m.family(label, stats, lastModified)
		if err != nil {
			return err
		}
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write %s: %w", m.name, err)
		}
	}
	return nil
}

func (m *metricDef) family(label string, stats borg.CacheStats, lastModified int64) (*dto.MetricFamily, error) {
	sample, err := prometheus.NewConstMetric(m.desc, m.valueType, m.value(stats, lastModified), label)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", m.name, err)
	}

	var pb dto.Metric
	if err := sample.Write(&pb); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.name, err)
	}

	return &dto.MetricFamily{
		Name:   proto.String(m.name),
		Help:   proto.String(m.help),
		Type:   m.dtoType.Enum(),
		Metric: []*dto.Metric{&pb},
	}, nil
}
