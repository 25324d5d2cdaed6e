package telemetry

// Histogram bucket definitions for different latency profiles.
var (
	// DeltaBuildBuckets for full delta-builder passes (spec.md §4.4).
	DeltaBuildBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	// LoadBuckets for metastore table/view loads (spec.md §4.9).
	LoadBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	// SyncDDLBuckets for SYNC_DDL barrier waits (spec.md §4.7).
	SyncDDLBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

	// GateWaitBuckets for Partial Fetch Gate admission waits (spec.md §4.8).
	GateWaitBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

	// LockWaitBuckets for per-object lock acquisition (spec.md §4.2).
	LockWaitBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1}

	// QuorumAttemptBuckets covers the attempt-cap range used by the
	// SYNC_DDL barrier (spec.md §4.7 "max(5, |U|*(S+1))").
	QuorumAttemptBuckets = []float64{1, 2, 3, 5, 8, 13, 21, 34}
)

// Registry Metrics
var (
	// RegistryObjects tracks current object-registry size by kind
	// (spec.md Data Model "Object Registry (B)").
	RegistryObjects GaugeVec = noopGaugeVec{}

	// CurrentVersion tracks the Version Counter (A).
	CurrentVersion Gauge = NoopStat{}

	// LastPublishedTopic tracks the lock-free published-topic cursor.
	LastPublishedTopic Gauge = NoopStat{}

	// DeleteLogSize tracks the number of live tombstones in the Delete Log (C).
	DeleteLogSize Gauge = NoopStat{}

	// TopicUpdateLogSize tracks the number of tracked keys in the Topic
	// Update Log (D).
	TopicUpdateLogSize Gauge = NoopStat{}
)

// Delta Builder Metrics
var (
	// DeltaBuildsTotal counts delta-builder passes by result (ok, error).
	DeltaBuildsTotal CounterVec = noopCounterVec{}

	// DeltaBuildDurationSeconds measures delta-builder pass latency.
	DeltaBuildDurationSeconds Histogram = NoopStat{}

	// DeltaRecordsTotal counts emitted delta records by kind (updated, deleted).
	DeltaRecordsTotal CounterVec = noopCounterVec{}

	// TopicUpdateSkipsTotal counts heavy object publications skipped by the
	// starvation-avoidance counter (spec.md I5).
	TopicUpdateSkipsTotal Counter = NoopStat{}

	// TopicUpdateLogGCTotal counts entries garbage-collected from D.
	TopicUpdateLogGCTotal Counter = NoopStat{}
)

// Table Loader Metrics
var (
	// LoadQueueDepth tracks the Table Loader's pending request count
	// (spec.md §4.9 Priority Queue).
	LoadQueueDepth Gauge = NoopStat{}

	// LoadDurationSeconds measures metastore fetch latency by kind (table, view).
	LoadDurationSeconds HistogramVec = noopHistogramVec{}

	// LoadsTotal counts completed loads by kind and result (ok, failed).
	LoadsTotal CounterVec = noopCounterVec{}

	// ObjectLockWaitSeconds measures per-object lock acquisition latency
	// (spec.md §4.2 component E).
	ObjectLockWaitSeconds Histogram = NoopStat{}

	// ObjectLockTimeoutsTotal counts per-object lock acquisitions that timed out.
	ObjectLockTimeoutsTotal Counter = NoopStat{}
)

// SYNC_DDL Barrier Metrics
var (
	// SyncDDLWaitSeconds measures how long callers block in the barrier
	// (spec.md §4.7 component H).
	SyncDDLWaitSeconds Histogram = NoopStat{}

	// SyncDDLTimeoutsTotal counts barrier waits that exhausted their attempt budget.
	SyncDDLTimeoutsTotal Counter = NoopStat{}

	// SyncDDLAttempts measures the number of coverage-check attempts per wait.
	SyncDDLAttempts Histogram = NoopStat{}
)

// Partial Fetch Gate Metrics
var (
	// GateQueueDepth tracks callers currently queued for gate admission
	// (spec.md §4.8 component J).
	GateQueueDepth Gauge = NoopStat{}

	// GateWaitSeconds measures time spent waiting for gate admission.
	GateWaitSeconds Histogram = NoopStat{}

	// GateTimeoutsTotal counts admission attempts that exceeded their deadline.
	GateTimeoutsTotal Counter = NoopStat{}
)

// Northbound Sink Metrics
var (
	// SinkPublishTotal counts published records by sink namespace (full,
	// minimal) and result (ok, failed).
	SinkPublishTotal CounterVec = noopCounterVec{}
)

// InitMetrics initializes all Prometheus metrics.
// Must be called after InitializeTelemetry().
func InitMetrics() {
	// Registry Metrics
	RegistryObjects = NewGaugeVec(
		SubsystemRegistry,
		"objects",
		"Number of objects in the registry by kind",
		[]string{"kind"},
	)
	CurrentVersion = NewGauge(
		SubsystemRegistry,
		"current_version",
		"Current value of the version counter",
	)
	LastPublishedTopic = NewGauge(
		SubsystemRegistry,
		"last_published_topic",
		"Last topic version published to coordinators",
	)
	DeleteLogSize = NewGauge(
		SubsystemRegistry,
		"delete_log_size",
		"Number of live tombstones in the delete log",
	)
	TopicUpdateLogSize = NewGauge(
		SubsystemRegistry,
		"topic_update_log_size",
		"Number of tracked keys in the topic update log",
	)

	// Delta Builder Metrics
	DeltaBuildsTotal = NewCounterVec(
		SubsystemDeltaBuilder,
		"builds_total",
		"Delta builder passes by result",
		[]string{"result"},
	)
	DeltaBuildDurationSeconds = NewHistogramWithBuckets(
		SubsystemDeltaBuilder,
		"build_duration_seconds",
		"Delta builder pass duration in seconds",
		DeltaBuildBuckets,
	)
	DeltaRecordsTotal = NewCounterVec(
		SubsystemDeltaBuilder,
		"records_total",
		"Delta records emitted by kind",
		[]string{"kind"},
	)
	TopicUpdateSkipsTotal = NewCounter(
		SubsystemDeltaBuilder,
		"topic_update_skips_total",
		"Heavy object publications skipped by the starvation-avoidance counter",
	)
	TopicUpdateLogGCTotal = NewCounter(
		SubsystemDeltaBuilder,
		"topic_update_log_gc_total",
		"Topic update log entries garbage-collected",
	)

	// Table Loader Metrics
	LoadQueueDepth = NewGauge(
		SubsystemLoader,
		"queue_depth",
		"Number of pending table/view load requests",
	)
	LoadDurationSeconds = NewHistogramVec(
		SubsystemLoader,
		"duration_seconds",
		"Metastore load duration in seconds by kind",
		[]string{"kind"},
		LoadBuckets,
	)
	LoadsTotal = NewCounterVec(
		SubsystemLoader,
		"total",
		"Completed loads by kind and result",
		[]string{"kind", "result"},
	)
	ObjectLockWaitSeconds = NewHistogramWithBuckets(
		SubsystemLoader,
		"object_lock_wait_seconds",
		"Per-object lock acquisition latency in seconds",
		LockWaitBuckets,
	)
	ObjectLockTimeoutsTotal = NewCounter(
		SubsystemLoader,
		"object_lock_timeouts_total",
		"Per-object lock acquisitions that timed out",
	)

	// SYNC_DDL Barrier Metrics
	SyncDDLWaitSeconds = NewHistogramWithBuckets(
		SubsystemSyncDDL,
		"wait_seconds",
		"SYNC_DDL barrier wait duration in seconds",
		SyncDDLBuckets,
	)
	SyncDDLTimeoutsTotal = NewCounter(
		SubsystemSyncDDL,
		"timeouts_total",
		"SYNC_DDL barrier waits that exhausted their attempt budget",
	)
	SyncDDLAttempts = NewHistogramWithBuckets(
		SubsystemSyncDDL,
		"attempts",
		"Coverage-check attempts per SYNC_DDL wait",
		QuorumAttemptBuckets,
	)

	// Partial Fetch Gate Metrics
	GateQueueDepth = NewGauge(
		SubsystemGate,
		"queue_depth",
		"Callers currently queued for partial-fetch gate admission",
	)
	GateWaitSeconds = NewHistogramWithBuckets(
		SubsystemGate,
		"wait_seconds",
		"Partial-fetch gate admission wait duration in seconds",
		GateWaitBuckets,
	)
	GateTimeoutsTotal = NewCounter(
		SubsystemGate,
		"timeouts_total",
		"Partial-fetch gate admission attempts that exceeded their deadline",
	)

	// Northbound Sink Metrics
	SinkPublishTotal = NewCounterVec(
		SubsystemSink,
		"publish_total",
		"Published records by sink namespace and result",
		[]string{"sink", "result"},
	)
}
