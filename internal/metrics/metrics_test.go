package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// TestMetricsInit verifies that Init() is idempotent and registers metrics
func TestMetricsInit(t *testing.T) {
	// Call Init multiple times - should be idempotent via sync.Once
	Init()
	Init()
	Init()

	if EntriesDeletedTotal == nil {
		t.Error("EntriesDeletedTotal should be initialized")
	}
	if BytesDeletedTotal == nil {
		t.Error("BytesDeletedTotal should be initialized")
	}
	if EntriesListedTotal == nil {
		t.Error("EntriesListedTotal should be initialized")
	}
	if CommandErrorsTotal == nil {
		t.Error("CommandErrorsTotal should be initialized")
	}
	if CommandDuration == nil {
		t.Error("CommandDuration should be initialized")
	}
	if LastRunTimestamp == nil {
		t.Error("LastRunTimestamp should be initialized")
	}

	// Vectors only show up once a label is used
	RecordRun("list", time.Millisecond, true)

	mfs, err := Registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"coco_entries_deleted_total",
		"coco_bytes_deleted_total",
		"coco_entries_listed_total",
		"coco_command_errors_total",
		"coco_command_duration_seconds",
		"coco_last_run_timestamp",
	}

	foundMetrics := make(map[string]bool)
	for _, mf := range mfs {
		foundMetrics[mf.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !foundMetrics[expected] {
			t.Errorf("Expected metric %s not found in registry", expected)
		}
	}
}

// TestRecordHelpers verifies the record helpers move the right series
func TestRecordHelpers(t *testing.T) {
	Init()

	t.Run("RecordDeletion", func(t *testing.T) {
		entries := testutil.ToFloat64(EntriesDeletedTotal)
		bytes := testutil.ToFloat64(BytesDeletedTotal)

		RecordDeletion(4, 1024)

		if got := testutil.ToFloat64(EntriesDeletedTotal) - entries; got != 4 {
			t.Errorf("Expected 4 more entries deleted, got %v", got)
		}
		if got := testutil.ToFloat64(BytesDeletedTotal) - bytes; got != 1024 {
			t.Errorf("Expected 1024 more bytes deleted, got %v", got)
		}
	})

	t.Run("RecordListed", func(t *testing.T) {
		before := testutil.ToFloat64(EntriesListedTotal)
		RecordListed(3)
		if got := testutil.ToFloat64(EntriesListedTotal) - before; got != 3 {
			t.Errorf("Expected 3 more entries listed, got %v", got)
		}
	})

	t.Run("RecordRun", func(t *testing.T) {
		errors := testutil.ToFloat64(CommandErrorsTotal.WithLabelValues("delete"))

		RecordRun("delete", 2*time.Second, false)
		if got := testutil.ToFloat64(CommandErrorsTotal.WithLabelValues("delete")); got != errors {
			t.Errorf("Successful run should not count an error, got %v want %v", got, errors)
		}

		RecordRun("delete", time.Second, true)
		if got := testutil.ToFloat64(CommandErrorsTotal.WithLabelValues("delete")); got != errors+1 {
			t.Errorf("Failed run should count an error, got %v want %v", got, errors+1)
		}

		if testutil.ToFloat64(LastRunTimestamp) <= 0 {
			t.Error("LastRunTimestamp should be set after a run")
		}
	})
}

// TestWriteTextfile verifies the node_exporter textfile output
func TestWriteTextfile(t *testing.T) {
	RecordDeletion(1, 10)

	path := filepath.Join(t.TempDir(), "textfile", "coco.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}

	content := string(data)
	for _, name := range []string{"# TYPE coco_entries_deleted_total counter", "coco_bytes_deleted_total", "coco_last_run_timestamp"} {
		if !strings.Contains(content, name) {
			t.Errorf("Textfile missing %q:\n%s", name, content)
		}
	}
	if strings.Contains(content, "go_goroutines") {
		t.Error("Textfile should not contain Go runtime metrics")
	}
}

const previousTextfile = `# HELP coco_entries_deleted_total Total number of filesystem entries deleted by coco.
# TYPE coco_entries_deleted_total counter
coco_entries_deleted_total 100
# HELP coco_command_errors_total Total number of failed command runs.
# TYPE coco_command_errors_total counter
coco_command_errors_total{command="mkdir"} 7
# HELP coco_command_duration_seconds Duration of command runs in seconds.
# TYPE coco_command_duration_seconds histogram
coco_command_duration_seconds_bucket{command="run",le="0.1"} 2
coco_command_duration_seconds_bucket{command="run",le="+Inf"} 3
coco_command_duration_seconds_sum{command="run"} 4.5
coco_command_duration_seconds_count{command="run"} 3
# HELP coco_last_run_timestamp Timestamp of the last command run (Unix epoch seconds).
# TYPE coco_last_run_timestamp gauge
coco_last_run_timestamp 5
`

func readFamilies(t *testing.T, path string) map[string]*dto.MetricFamily {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open textfile: %v", err)
	}
	defer f.Close()

	parser := expfmt.NewTextParser(model.UTF8Validation)
	mfs, err := parser.TextToMetricFamilies(f)
	if err != nil {
		t.Fatalf("Failed to parse textfile: %v", err)
	}
	return mfs
}

func metricWithLabel(mf *dto.MetricFamily, value string) *dto.Metric {
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "command" && l.GetValue() == value {
				return m
			}
		}
	}
	return nil
}

// TestWriteTextfileKeepsTotals verifies counters continue from the previous file
// across runs and are not counted twice within one process
func TestWriteTextfileKeepsTotals(t *testing.T) {
	Init()
	path := filepath.Join(t.TempDir(), "coco.prom")
	if err := os.WriteFile(path, []byte(previousTextfile), 0o644); err != nil {
		t.Fatalf("Failed to seed textfile: %v", err)
	}

	RecordRun("run", 50*time.Millisecond, false)
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	mfs := readFamilies(t, path)
	deleted := mfs["coco_entries_deleted_total"].GetMetric()[0].GetCounter().GetValue()
	if want := 100 + testutil.ToFloat64(EntriesDeletedTotal); deleted != want {
		t.Errorf("coco_entries_deleted_total = %v, expected %v", deleted, want)
	}

	mkdirErrors := metricWithLabel(mfs["coco_command_errors_total"], "mkdir")
	if mkdirErrors == nil || mkdirErrors.GetCounter().GetValue() != 7 {
		t.Errorf("Series from the previous file should be kept, got %v", mkdirErrors)
	}

	run := metricWithLabel(mfs["coco_command_duration_seconds"], "run")
	if run == nil {
		t.Fatal("Histogram for command=run missing")
	}
	if got := run.GetHistogram().GetSampleCount(); got != 4 {
		t.Errorf("Histogram count = %d, expected 4", got)
	}
	for _, b := range run.GetHistogram().GetBucket() {
		if b.GetUpperBound() == 0.1 && b.GetCumulativeCount() != 3 {
			t.Errorf("Bucket le=0.1 = %d, expected 3", b.GetCumulativeCount())
		}
	}

	if ts := mfs["coco_last_run_timestamp"].GetMetric()[0].GetGauge().GetValue(); ts == 5 {
		t.Error("Gauges should carry the current value, not the previous one")
	}

	// A second write in the same process adds only what happened since
	RecordDeletion(2, 0)
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("Second WriteTextfile failed: %v", err)
	}
	mfs = readFamilies(t, path)
	deleted = mfs["coco_entries_deleted_total"].GetMetric()[0].GetCounter().GetValue()
	if want := 100 + testutil.ToFloat64(EntriesDeletedTotal); deleted != want {
		t.Errorf("After second write coco_entries_deleted_total = %v, expected %v", deleted, want)
	}
}

// TestWriteTextfileReplacesGarbage verifies an unparsable file does not block writing
func TestWriteTextfileReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coco.prom")
	if err := os.WriteFile(path, []byte("not { a textfile"), 0o644); err != nil {
		t.Fatalf("Failed to seed textfile: %v", err)
	}

	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	mfs := readFamilies(t, path)
	if _, ok := mfs["coco_last_run_timestamp"]; !ok {
		t.Error("Rewritten textfile missing coco_last_run_timestamp")
	}
}

// TestStandardBuckets verifies that bucket definitions are sorted
func TestStandardBuckets(t *testing.T) {
	for i := 1; i < len(DurationBuckets); i++ {
		if DurationBuckets[i] <= DurationBuckets[i-1] {
			t.Errorf("Duration bucket[%d] = %v is not above %v", i, DurationBuckets[i], DurationBuckets[i-1])
		}
	}
}
