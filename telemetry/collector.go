package telemetry

import (
	"sync"
	"time"

	"github.com/catalogd/catalogd/catalog"
)

// MetricsCollector periodically samples catalog.Catalog.Stats and updates
// the registry/log-size gauges. Per-operation metrics (delta build
// duration, lock waits, load latency) are recorded at their call sites
// instead, since they need to be observed exactly once per operation rather
// than sampled.
type MetricsCollector struct {
	cat      *catalog.Catalog
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(cat *catalog.Catalog, interval time.Duration) *MetricsCollector {
	return &MetricsCollector{
		cat:      cat,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic collection.
func (mc *MetricsCollector) Start() {
	mc.wg.Add(1)
	go mc.collectLoop()
}

// Stop stops the collector.
func (mc *MetricsCollector) Stop() {
	close(mc.stopCh)
	mc.wg.Wait()
}

func (mc *MetricsCollector) collectLoop() {
	defer mc.wg.Done()

	ticker := time.NewTicker(mc.interval)
	defer ticker.Stop()

	mc.collect()

	for {
		select {
		case <-ticker.C:
			mc.collect()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MetricsCollector) collect() {
	if mc.cat == nil {
		return
	}

	stats := mc.cat.Stats()
	for kind, count := range stats.ObjectsByKind {
		RegistryObjects.With(kind.String()).Set(float64(count))
	}
	CurrentVersion.Set(float64(stats.CurrentVersion))
	LastPublishedTopic.Set(float64(stats.LastPublishedTopic))
	DeleteLogSize.Set(float64(stats.DeleteLogSize))
	TopicUpdateLogSize.Set(float64(stats.TopicUpdateLogSize))
}
