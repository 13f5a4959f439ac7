package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	gtfsproto "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
	"trainmap.dev/internal/models"
	"trainmap.dev/internal/stations"
)

const stationTable = "stop_id,stop_name,stop_lat,stop_lon\n" +
	"R16,Times Sq-42 St,40.754672,-73.986754\n" +
	"R17,34 St-Herald Sq,40.749567,-73.98795\n" +
	"X99,Unmapped Platform,,\n"

type tableSource struct {
	table string
	calls atomic.Int32
}

func (s *tableSource) Stations(context.Context) ([]models.Station, error) {
	s.calls.Add(1)
	return stations.ParseTable(strings.NewReader(s.table))
}

func (s *tableSource) String() string { return "test-table" }

func buildFeed(t *testing.T, entities ...*gtfsproto.FeedEntity) []byte {
	t.Helper()

	msg := &gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1700000000),
		},
		Entity: entities,
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal feed: %v", err)
	}
	return data
}

func trainEntity(id, routeID, stopID string, lat, lon float32, status gtfsproto.VehiclePosition_VehicleStopStatus) *gtfsproto.FeedEntity {
	return &gtfsproto.FeedEntity{
		Id: proto.String(id),
		Vehicle: &gtfsproto.VehiclePosition{
			Trip: &gtfsproto.TripDescriptor{
				TripId:  proto.String(id + "-trip"),
				RouteId: proto.String(routeID),
			},
			Position: &gtfsproto.Position{
				Latitude:  proto.Float32(lat),
				Longitude: proto.Float32(lon),
			},
			StopId:        proto.String(stopID),
			Timestamp:     proto.Uint64(1700000000),
			CurrentStatus: status.Enum(),
		},
	}
}

// setupFeedServer serves each response body of bodies in turn, repeating the last.
// A nil body is answered with 503.
func setupFeedServer(t *testing.T, bodies ...[]byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		if bodies[n] == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(bodies[n])
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

// setupBundleServer serves a minimal GTFS static bundle whose stops are given
// as stops.txt rows.
func setupBundleServer(t *testing.T, stopRows ...string) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"MTA NYCT,MTA New York City Transit,http://www.mta.info,America/New_York\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"N,MTA NYCT,N,Broadway Express,1\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
			strings.Join(stopRows, "\n") + "\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"Weekday,1,1,1,1,1,0,0,20250101,20251231\n",
		"trips.txt": "route_id,trip_id,service_id,direction_id\n" +
			"N,N_TRIP_1,Weekday,0\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"N_TRIP_1,08:00:00,08:00:00,R16N,1\n",
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close bundle: %v", err)
	}
	bundle := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(bundle)
	}))
	t.Cleanup(server.Close)
	return server
}
