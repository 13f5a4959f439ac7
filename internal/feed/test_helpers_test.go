package feed

import (
	"testing"

	gtfsproto "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
)

// buildFeed serializes a FeedMessage holding the given entities.
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

func vehicleEntity(id, routeID, stopID string, lat, lon float32, status int32) *gtfsproto.FeedEntity {
	code := gtfsproto.VehiclePosition_VehicleStopStatus(status)
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
			CurrentStatus: &code,
		},
	}
}
