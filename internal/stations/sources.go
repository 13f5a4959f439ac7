package stations

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	remoteGtfs "github.com/jamespfennell/gtfs"
	"trainmap.dev/internal/config"
	"trainmap.dev/internal/models"
)

// Source produces the rows of the station reference table.
type Source interface {
	Stations(ctx context.Context) ([]models.Station, error)
	fmt.Stringer
}

// ReaderSource parses a table from an already open reader.
// The reader is consumed, so the source can be read once.
type ReaderSource struct {
	Name   string
	Reader io.Reader
}

func (s ReaderSource) Stations(context.Context) ([]models.Station, error) {
	return ParseTable(s.Reader)
}

func (s ReaderSource) String() string {
	if s.Name == "" {
		return "reader"
	}
	return s.Name
}

// FileSource parses a stops.txt style table from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Stations(context.Context) ([]models.Station, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open station table: %w", err)
	}
	defer f.Close()
	return ParseTable(f)
}

func (s FileSource) String() string { return s.Path }

// URLSource downloads a stops.txt style table.
// Network errors and 5xx responses are retried with jittered backoff.
type URLSource struct {
	URL        string
	Client     *http.Client
	MaxRetries int
}

func (s URLSource) Stations(ctx context.Context) ([]models.Station, error) {
	body, err := download(ctx, s.Client, s.URL, s.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseTable(body)
}

func (s URLSource) String() string { return s.URL }

// BundleSource downloads a GTFS static bundle and reads its stops.
// Stops without coordinates get NaN latitude and longitude.
type BundleSource struct {
	URL        string
	Client     *http.Client
	MaxRetries int
}

func (s BundleSource) Stations(ctx context.Context) ([]models.Station, error) {
	body, err := download(ctx, s.Client, s.URL, s.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS bundle from %s: %w", s.URL, err)
	}

	staticBundle, err := remoteGtfs.ParseStatic(data, remoteGtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse GTFS static data from %s: %w", s.URL, err)
	}
	return StationsFromStops(staticBundle.Stops), nil
}

func (s BundleSource) String() string { return s.URL }

// StationsFromStops converts parsed GTFS stops to directory rows.
func StationsFromStops(stops []remoteGtfs.Stop) []models.Station {
	rows := make([]models.Station, 0, len(stops))
	for _, stop := range stops {
		if stop.Id == "" {
			continue
		}
		row := models.Station{
			ID:        stop.Id,
			Name:      stop.Name,
			Latitude:  math.NaN(),
			Longitude: math.NaN(),
		}
		if stop.Latitude != nil && stop.Longitude != nil {
			row.Latitude = *stop.Latitude
			row.Longitude = *stop.Longitude
		}
		rows = append(rows, row)
	}
	return rows
}

func download(ctx context.Context, client *http.Client, url string, maxRetries int) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if maxRetries <= 0 {
		maxRetries = config.DefaultMaxRetries
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := config.DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected response status %d when downloading %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
