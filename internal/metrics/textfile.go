package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

var (
	textfileMu sync.Mutex

	// totals found in each textfile before this process first wrote it
	textfileBases = make(map[string]map[string]*dto.MetricFamily)
)

// WriteTextfile writes Registry to path in the node_exporter textfile
// collector format. The file is replaced atomically. Counters and histograms
// continue from the totals already in the file, so every run adds to them
// instead of starting over; gauges carry this process's value. A file that
// cannot be parsed is replaced as if it were empty.
func WriteTextfile(path string) error {
	Init()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}

	textfileMu.Lock()
	defer textfileMu.Unlock()

	base, ok := textfileBases[path]
	if !ok {
		base = readTextfile(path)
		textfileBases[path] = base
	}

	gatherer := prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		mfs, err := Registry.Gather()
		if err != nil {
			return nil, err
		}
		return mergeTotals(base, mfs), nil
	})
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// readTextfile parses a previous textfile. Missing or unparsable files yield no totals.
func readTextfile(path string) map[string]*dto.MetricFamily {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	parser := expfmt.NewTextParser(model.UTF8Validation)
	mfs, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return nil
	}
	return mfs
}

// mergeTotals adds base counters and histograms onto the freshly gathered
// families. current is modified in place; base is never modified.
func mergeTotals(base map[string]*dto.MetricFamily, current []*dto.MetricFamily) []*dto.MetricFamily {
	out := make([]*dto.MetricFamily, 0, len(current)+len(base))
	seen := make(map[string]bool, len(current))

	for _, mf := range current {
		seen[mf.GetName()] = true
		prev, ok := base[mf.GetName()]
		if ok && prev.GetType() == mf.GetType() && cumulative(mf.GetType()) {
			mergeFamily(prev, mf)
		}
		out = append(out, mf)
	}

	// series from earlier runs that this process never touched
	for name, prev := range base {
		if !seen[name] && cumulative(prev.GetType()) {
			out = append(out, prev)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

func cumulative(t dto.MetricType) bool {
	return t == dto.MetricType_COUNTER || t == dto.MetricType_HISTOGRAM
}

func mergeFamily(prev, cur *dto.MetricFamily) {
	byLabels := make(map[string]*dto.Metric, len(cur.GetMetric()))
	for _, m := range cur.GetMetric() {
		byLabels[labelKey(m)] = m
	}

	for _, p := range prev.GetMetric() {
		m, ok := byLabels[labelKey(p)]
		if !ok {
			cur.Metric = append(cur.Metric, p)
			continue
		}
		switch cur.GetType() {
		case dto.MetricType_COUNTER:
			addCounter(m, p)
		case dto.MetricType_HISTOGRAM:
			addHistogram(m, p)
		}
	}

	sort.Slice(cur.Metric, func(i, j int) bool { return labelKey(cur.Metric[i]) < labelKey(cur.Metric[j]) })
}

func addCounter(m, p *dto.Metric) {
	if m.Counter == nil || p.Counter == nil {
		return
	}
	v := m.Counter.GetValue() + p.Counter.GetValue()
	m.Counter.Value = &v
}

func addHistogram(m, p *dto.Metric) {
	h, ph := m.Histogram, p.Histogram
	if h == nil || ph == nil {
		return
	}

	count := h.GetSampleCount() + ph.GetSampleCount()
	sum := h.GetSampleSum() + ph.GetSampleSum()
	h.SampleCount = &count
	h.SampleSum = &sum

	prevBuckets := make(map[float64]uint64, len(ph.GetBucket()))
	for _, b := range ph.GetBucket() {
		prevBuckets[b.GetUpperBound()] = b.GetCumulativeCount()
	}
	for _, b := range h.GetBucket() {
		c := b.GetCumulativeCount() + prevBuckets[b.GetUpperBound()]
		b.CumulativeCount = &c
	}
}

func labelKey(m *dto.Metric) string {
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		pairs = append(pairs, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
