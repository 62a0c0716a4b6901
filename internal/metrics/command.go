package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command metrics
var (
	// EntriesDeletedTotal tracks files, links and directories removed
	EntriesDeletedTotal prometheus.Counter

	// BytesDeletedTotal tracks the apparent size of removed files
	BytesDeletedTotal prometheus.Counter

	// EntriesListedTotal tracks entries reported by list
	EntriesListedTotal prometheus.Counter

	// CommandErrorsTotal tracks failed runs per command
	CommandErrorsTotal *prometheus.CounterVec

	// CommandDuration tracks how long each command run takes
	CommandDuration *prometheus.HistogramVec

	// LastRunTimestamp records Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge
)

func initCommandMetrics() {
	EntriesDeletedTotal = NewCounter(
		"coco_entries_deleted_total",
		"Total number of filesystem entries deleted by coco.",
	)

	BytesDeletedTotal = NewBytesCounter(
		"coco_bytes_deleted_total",
		"Total bytes of file content deleted by coco.",
	)

	EntriesListedTotal = NewCounter(
		"coco_entries_listed_total",
		"Total number of entries listed by coco.",
	)

	CommandErrorsTotal = NewCounterVec(
		"coco_command_errors_total",
		"Total number of failed command runs.",
		[]string{"command"},
	)

	CommandDuration = NewDurationHistogramVec(
		"coco_command_duration_seconds",
		"Duration of command runs in seconds.",
		[]string{"command"},
	)

	LastRunTimestamp = NewGauge(
		"coco_last_run_timestamp",
		"Timestamp of the last command run (Unix epoch seconds).",
	)
}

func registerCommandMetrics() {
	Registry.MustRegister(EntriesDeletedTotal)
	Registry.MustRegister(BytesDeletedTotal)
	Registry.MustRegister(EntriesListedTotal)
	Registry.MustRegister(CommandErrorsTotal)
	Registry.MustRegister(CommandDuration)
	Registry.MustRegister(LastRunTimestamp)
}

// RecordDeletion adds one delete target's outcome
func RecordDeletion(entries int, bytes int64) {
	Init()
	EntriesDeletedTotal.Add(float64(entries))
	BytesDeletedTotal.Add(float64(bytes))
}

// RecordListed adds entries reported by list
func RecordListed(entries int) {
	Init()
	EntriesListedTotal.Add(float64(entries))
}

// RecordRun observes a finished run of command and stamps the last run time
func RecordRun(command string, duration time.Duration, failed bool) {
	Init()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
	if failed {
		CommandErrorsTotal.WithLabelValues(command).Inc()
	}
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}
