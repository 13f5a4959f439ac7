package app

import (
	"log/slog"
	"net/http"

	"trainmap.dev/internal/config"
	"trainmap.dev/internal/feed"
	"trainmap.dev/internal/ingest"
	"trainmap.dev/internal/stations"
)

// Application wires the station directory, the ingestion pipeline and the
// HTTP handlers that read its results.
type Application struct {
	Config      *config.Config
	Directory   *stations.Directory
	Coordinator *ingest.Coordinator
	Snapshots   *ingest.SnapshotStore
	Poller      *ingest.Poller
	Logger      *slog.Logger
	Version     string
}

// New creates and wires all dependencies for the Application.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version string) *Application {
	settings := cfg.Settings

	directory := stations.NewDirectory()
	snapshots := ingest.NewSnapshotStore()
	decoder := feed.NewDecoder(settings.Feed, client, settings.FetchTimeout())
	coordinator := ingest.NewCoordinator(directory, StationSource(settings, client), decoder, settings.Feed.FeedID, logger)

	poller := ingest.NewPoller(coordinator, snapshots, settings.Feed.FeedID, settings.PollInterval(), logger)
	poller.DropUnresolved = settings.DropUnresolved

	return &Application{
		Config:      cfg,
		Directory:   directory,
		Coordinator: coordinator,
		Snapshots:   snapshots,
		Poller:      poller,
		Logger:      logger,
		Version:     version,
	}
}

// StationSource returns the station source selected by settings.
func StationSource(settings config.Settings, client *http.Client) stations.Source {
	s := settings.Stations
	switch {
	case s.BundleURL != "":
		return stations.BundleSource{URL: s.BundleURL, Client: client, MaxRetries: settings.MaxRetries}
	case s.URL != "":
		return stations.URLSource{URL: s.URL, Client: client, MaxRetries: settings.MaxRetries}
	default:
		return stations.FileSource{Path: s.Path}
	}
}
