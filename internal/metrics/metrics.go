package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcomes used as the "outcome" label of IngestionCycles.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeSchemaError    = "schema_error"
	OutcomeError          = "error"
)

var (
	IngestionCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainmap_ingestion_cycles_total",
		Help: "Number of ingestion cycles by outcome",
	}, []string{"feed_id", "outcome"})

	IngestionCycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trainmap_ingestion_cycle_duration_seconds",
		Help:    "Duration of one fetch, decode, normalize and enrich cycle",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"feed_id"})

	SkippedCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainmap_ingestion_skipped_cycles_total",
		Help: "Number of poll ticks skipped because the feed is backing off",
	}, []string{"feed_id"})
)

var (
	FeedEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trainmap_feed_entities",
		Help: "Number of entities in the last decoded GTFS-RT feed message",
	}, []string{"feed_id"})

	FeedHeaderTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trainmap_feed_header_timestamp_seconds",
		Help: "Header timestamp of the last decoded GTFS-RT feed message",
	}, []string{"feed_id"})

	VehiclePositions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trainmap_vehicle_positions",
		Help: "Number of vehicle positions produced by the last cycle",
	}, []string{"feed_id"})

	UnresolvedVehiclePositions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trainmap_vehicle_positions_unresolved",
		Help: "Number of vehicle positions whose next stop did not resolve to a station",
	}, []string{"feed_id"})

	VehiclePositionsWithoutCoordinates = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trainmap_vehicle_positions_without_coordinates",
		Help: "Number of vehicle positions reported at (0,0)",
	}, []string{"feed_id"})

	VehiclePositionsOutOfBounds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trainmap_vehicle_positions_out_of_bounds",
		Help: "Number of reported vehicle positions outside the station bounding box",
	}, []string{"feed_id"})
)

var (
	StationDirectoryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trainmap_station_directory_entries",
		Help: "Number of keys in the station directory, including directional variants",
	})

	StationDirectoryLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainmap_station_directory_loads_total",
		Help: "Number of station directory load attempts by result",
	}, []string{"result"})
)

var (
	// OutgoingLatency tracks the latency of outgoing HTTP requests made by the pooled client.
	OutgoingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trainmap_outgoing_http_request_duration_seconds",
		Help:    "Latency of outgoing HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"url", "method", "status"})
)

var (
	PublishedSnapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainmap_published_snapshots_total",
		Help: "Number of vehicle position snapshots published to NATS",
	}, []string{"subject"})

	PublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainmap_publish_errors_total",
		Help: "Number of failed NATS publishes",
	}, []string{"subject"})

	PublisherConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trainmap_publisher_connected",
		Help: "Whether the NATS connection is up (1) or down (0)",
	})
)
