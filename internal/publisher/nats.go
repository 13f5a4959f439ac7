// Package publisher sends vehicle position snapshots to NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"trainmap.dev/internal/metrics"
	"trainmap.dev/internal/models"
)

// conn is the subset of *nats.Conn used by the publisher.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// NATSPublisher publishes one message per successful ingestion cycle on
// "<prefix>.<feed id>".
type NATSPublisher struct {
	nc     conn
	prefix string
	logger *slog.Logger
}

// SnapshotMessage is the JSON payload of a published snapshot.
type SnapshotMessage struct {
	FeedID      string                   `json:"feedId"`
	PublishedAt time.Time                `json:"publishedAt"`
	Count       int                      `json:"count"`
	Positions   []models.VehiclePosition `json:"positions"`
}

func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("trainmap-ingester"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			metrics.PublisherConnected.Set(0)
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			metrics.PublisherConnected.Set(1)
			logger.Info("NATS reconnected", "url", c.ConnectedUrlRedacted())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			metrics.PublisherConnected.Set(0)
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	metrics.PublisherConnected.Set(1)
	return newPublisher(nc, prefix, logger), nil
}

func newPublisher(nc conn, prefix string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix, logger: logger}
}

// Subject returns the subject snapshots of feedID are published on.
func (p *NATSPublisher) Subject(feedID string) string {
	var tokens []string
	for _, t := range strings.Split(p.prefix, ".") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, subjectToken(t))
		}
	}
	return strings.Join(append(tokens, subjectToken(feedID)), ".")
}

// Publish sends positions as one SnapshotMessage.
func (p *NATSPublisher) Publish(ctx context.Context, feedID string, positions []models.VehiclePosition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := p.Subject(feedID)
	if positions == nil {
		positions = []models.VehiclePosition{}
	}
	b, err := json.Marshal(SnapshotMessage{
		FeedID:      feedID,
		PublishedAt: time.Now().UTC(),
		Count:       len(positions),
		Positions:   positions,
	})
	if err != nil {
		metrics.PublishErrors.WithLabelValues(subject).Inc()
		return fmt.Errorf("failed to encode snapshot for %s: %w", subject, err)
	}

	if err := p.nc.Publish(subject, b); err != nil {
		metrics.PublishErrors.WithLabelValues(subject).Inc()
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	metrics.PublishedSnapshots.WithLabelValues(subject).Inc()
	p.logger.Debug("Published snapshot", "subject", subject, "count", len(positions))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", "error", err)
	}
	p.nc.Close()
}

// subjectToken makes s usable as a single NATS subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
