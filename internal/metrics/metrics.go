package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Registry holds every coco metric. A private registry keeps the Go
	// runtime collectors out of the textfile output.
	Registry = prometheus.NewRegistry()
)

// Init initializes all metrics and registers them with Registry
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initCommandMetrics()
		registerCommandMetrics()

		// Present in the textfile before the first run completes
		LastRunTimestamp.Set(0)
	})
}
