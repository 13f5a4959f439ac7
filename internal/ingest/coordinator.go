// Package ingest runs ingestion cycles: fetch the realtime feed, normalize
// its entities and resolve each position against the station directory.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"trainmap.dev/internal/feed"
	"trainmap.dev/internal/geo"
	"trainmap.dev/internal/metrics"
	"trainmap.dev/internal/models"
	"trainmap.dev/internal/normalize"
	"trainmap.dev/internal/report"
	"trainmap.dev/internal/stations"
	"trainmap.dev/internal/utils"
)

// Fetcher retrieves and decodes one feed message.
type Fetcher interface {
	FetchAndDecode(ctx context.Context) (*feed.Feed, error)
}

// Coordinator owns the station directory and the feed fetcher for one feed.
// Concurrent RunCycle calls are serialized.
type Coordinator struct {
	Directory *stations.Directory
	Stations  stations.Source
	Fetcher   Fetcher
	FeedID    string
	Logger    *slog.Logger

	mu sync.Mutex
}

func NewCoordinator(dir *stations.Directory, src stations.Source, fetcher Fetcher, feedID string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		Directory: dir,
		Stations:  src,
		Fetcher:   fetcher,
		FeedID:    feedID,
		Logger:    logger,
	}
}

// RunCycle performs one ingestion cycle and returns a fresh slice of positions.
//
// The directory is loaded on the first call. Failures are returned as the
// typed error of the step that failed: *stations.SchemaError,
// *feed.TransportError or *feed.DecodeError. Positions whose next stop does
// not resolve are returned without station fields.
func (c *Coordinator) RunCycle(ctx context.Context) ([]models.VehiclePosition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	positions, err := c.runCycle(ctx)
	duration := time.Since(start)

	metrics.IngestionCycleDuration.WithLabelValues(c.FeedID).Observe(duration.Seconds())
	metrics.IngestionCycles.WithLabelValues(c.FeedID, Outcome(err)).Inc()

	if err != nil {
		c.Logger.Error("Ingestion cycle failed", "feed_id", c.FeedID, "error", err, "duration", duration)
		c.reportError(err)
		return nil, err
	}

	c.Logger.Info("Ingestion cycle completed", "feed_id", c.FeedID, "count", len(positions), "duration", duration)
	return positions, nil
}

func (c *Coordinator) runCycle(ctx context.Context) ([]models.VehiclePosition, error) {
	if err := c.Directory.Load(ctx, c.Stations); err != nil {
		return nil, err
	}

	msg, err := c.Fetcher.FetchAndDecode(ctx)
	if err != nil {
		return nil, err
	}
	metrics.FeedEntities.WithLabelValues(c.FeedID).Set(float64(len(msg.Entities)))
	metrics.FeedHeaderTimestamp.WithLabelValues(c.FeedID).Set(float64(msg.HeaderTimestamp))

	positions := normalize.Normalize(msg.Entities)
	for i := range positions {
		p := &positions[i]
		if p.NextStopID == "" {
			continue
		}
		if station, ok := c.Directory.Resolve(p.NextStopID); ok {
			Enrich(p, station)
		}
	}

	c.recordPositionMetrics(positions)
	return positions, nil
}

// Enrich copies the station identity and known coordinates onto p and, when p
// has a usable location, its distance to the station.
func Enrich(p *models.VehiclePosition, station models.Station) {
	p.StationID = station.ID
	p.StationName = station.Name
	if !station.HasCoordinates() {
		return
	}

	lat, lon := station.Latitude, station.Longitude
	p.StationLatitude = &lat
	p.StationLongitude = &lon

	if geo.IsValidLatLon(p.Latitude, p.Longitude) {
		d := geo.HaversineDistance(p.Latitude, p.Longitude, lat, lon)
		p.DistanceToStation = &d
	}
}

func (c *Coordinator) recordPositionMetrics(positions []models.VehiclePosition) {
	bbox, hasBounds := c.Directory.BoundingBox()

	var unresolved, withoutCoordinates, outOfBounds int
	for _, p := range positions {
		if !p.Resolved() {
			unresolved++
		}
		if !geo.IsValidLatLon(p.Latitude, p.Longitude) {
			withoutCoordinates++
			continue
		}
		if hasBounds && !bbox.Contains(p.Latitude, p.Longitude) {
			outOfBounds++
		}
	}

	metrics.VehiclePositions.WithLabelValues(c.FeedID).Set(float64(len(positions)))
	metrics.UnresolvedVehiclePositions.WithLabelValues(c.FeedID).Set(float64(unresolved))
	metrics.VehiclePositionsWithoutCoordinates.WithLabelValues(c.FeedID).Set(float64(withoutCoordinates))
	metrics.VehiclePositionsOutOfBounds.WithLabelValues(c.FeedID).Set(float64(outOfBounds))
}

func (c *Coordinator) reportError(err error) {
	opts := report.SentryReportOptions{
		Tags:  utils.MergeMaps(utils.MakeMap("feed_id", c.FeedID), utils.MakeMap("source", c.Stations.String())),
		Level: sentry.LevelError,
	}

	var transportErr *feed.TransportError
	if errors.As(err, &transportErr) {
		opts.Level = sentry.LevelWarning
		opts.ExtraContext = map[string]interface{}{
			"url":         transportErr.URL,
			"status_code": strconv.Itoa(transportErr.StatusCode),
		}
	}
	report.ReportErrorWithSentryOptions(err, opts)
}

// Outcome classifies a cycle result for the ingestion cycle counter.
func Outcome(err error) string {
	var (
		transportErr *feed.TransportError
		decodeErr    *feed.DecodeError
		schemaErr    *stations.SchemaError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &transportErr):
		return metrics.OutcomeTransportError
	case errors.As(err, &decodeErr):
		return metrics.OutcomeDecodeError
	case errors.As(err, &schemaErr):
		return metrics.OutcomeSchemaError
	default:
		return metrics.OutcomeError
	}
}
