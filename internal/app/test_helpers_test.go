package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gtfsproto "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
	"trainmap.dev/internal/config"
	"trainmap.dev/internal/models"
)

const testStationTable = "stop_id,stop_name,stop_lat,stop_lon\n" +
	"R16,Times Sq-42 St,40.754672,-73.986754\n" +
	"R17,34 St-Herald Sq,40.749567,-73.98795\n" +
	"X99,Unmapped Platform,,\n"

func testFeed(t *testing.T) []byte {
	t.Helper()
	stopped := gtfsproto.VehiclePosition_STOPPED_AT
	msg := &gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1700000000),
		},
		Entity: []*gtfsproto.FeedEntity{
			{
				Id: proto.String("train-1"),
				Vehicle: &gtfsproto.VehiclePosition{
					Trip:          &gtfsproto.TripDescriptor{TripId: proto.String("trip-1"), RouteId: proto.String("N")},
					Position:      &gtfsproto.Position{Latitude: proto.Float32(40.752), Longitude: proto.Float32(-73.987)},
					StopId:        proto.String("R16N"),
					Timestamp:     proto.Uint64(1700000000),
					CurrentStatus: &stopped,
				},
			},
			{
				Id: proto.String("train-2"),
				Vehicle: &gtfsproto.VehiclePosition{
					Trip:   &gtfsproto.TripDescriptor{TripId: proto.String("trip-2"), RouteId: proto.String("W")},
					StopId: proto.String("Z99S"),
				},
			},
		},
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal feed: %v", err)
	}
	return data
}

// newTestApplication wires an Application against a temporary station table
// and a feed server answering with status, and with testFeed on 200.
func newTestApplication(t *testing.T, feedStatus int, dropUnresolved bool) *Application {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stops.txt")
	if err := os.WriteFile(path, []byte(testStationTable), 0o600); err != nil {
		t.Fatalf("failed to write station table: %v", err)
	}

	body := testFeed(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if feedStatus != http.StatusOK {
			w.WriteHeader(feedStatus)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	settings := config.Settings{
		Feed:                models.FeedConfig{FeedID: "app-test", URL: server.URL},
		Stations:            config.StationsConfig{Path: path},
		PollIntervalSeconds: 15,
		FetchTimeoutSeconds: 5,
		MaxRetries:          1,
		DropUnresolved:      dropUnresolved,
	}
	cfg := config.NewConfig(4000, "testing", settings)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(cfg, logger, NewPooledClient(settings.FetchTimeout()), "test-version")
}

func serve(t *testing.T, app *Application, path string) *httptest.ResponseRecorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rr := httptest.NewRecorder()
	app.Routes(ctx).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}
