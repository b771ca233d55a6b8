package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Provider health
	MetricGeocodeLatency = "geocode.provider_latency"
	MetricJourneyLatency = "journeys.provider_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSearchesRecorded    = "business.searches_recorded"
	MetricAggregationsStarted = "business.aggregations_started"
)
