package feed

import (
	"errors"
	"testing"

	gtfsproto "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

func TestDecode(t *testing.T) {
	tripOnly := &gtfsproto.FeedEntity{
		Id: proto.String("trip-update-only"),
		TripUpdate: &gtfsproto.TripUpdate{
			Trip: &gtfsproto.TripDescriptor{TripId: proto.String("t1")},
		},
	}
	noTrip := &gtfsproto.FeedEntity{
		Id:      proto.String("no-trip"),
		Vehicle: &gtfsproto.VehiclePosition{StopId: proto.String("R16N")},
	}

	data := buildFeed(t,
		vehicleEntity("000001N", "N", "R16N", 40.71, -73.93, 2),
		tripOnly,
		noTrip,
	)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.HeaderTimestamp != 1700000000 {
		t.Errorf("expected header timestamp 1700000000, got %d", got.HeaderTimestamp)
	}
	if len(got.Entities) != 3 {
		t.Fatalf("expected 3 entities, entities without vehicles must be kept, got %d", len(got.Entities))
	}

	first := got.Entities[0]
	if first.ID != "000001N" || first.Vehicle == nil {
		t.Fatalf("unexpected first entity %+v", first)
	}
	v := first.Vehicle
	if v.Trip == nil || v.Trip.RouteID != "N" || v.Trip.TripID != "000001N-trip" {
		t.Errorf("unexpected trip %+v", v.Trip)
	}
	if v.Position == nil || v.Position.Latitude != float64(float32(40.71)) || v.Position.Longitude != float64(float32(-73.93)) {
		t.Errorf("unexpected position %+v", v.Position)
	}
	if v.StopID != "R16N" || v.Timestamp != 1700000000 {
		t.Errorf("unexpected stop or timestamp %+v", v)
	}
	if v.StatusCode == nil || *v.StatusCode != 2 {
		t.Errorf("expected status code 2, got %v", v.StatusCode)
	}

	if got.Entities[1].ID != "trip-update-only" || got.Entities[1].Vehicle != nil {
		t.Errorf("expected entity without vehicle to be retained as is, got %+v", got.Entities[1])
	}

	third := got.Entities[2].Vehicle
	if third == nil || third.Trip != nil || third.Position != nil || third.StatusCode != nil {
		t.Errorf("expected absent fields to stay nil, got %+v", third)
	}
}

func TestDecodeStatusOutsideEnum(t *testing.T) {
	t.Run("out of range enum value", func(t *testing.T) {
		data := buildFeed(t, vehicleEntity("delayed", "Q", "Q05S", 40.77, -73.95, 3))

		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		code := got.Entities[0].Vehicle.StatusCode
		if code == nil || *code != 3 {
			t.Errorf("expected status code 3 to survive decoding, got %v", code)
		}
	})

	t.Run("status carried as unknown field", func(t *testing.T) {
		vehicle := &gtfsproto.VehiclePosition{
			Trip:   &gtfsproto.TripDescriptor{RouteId: proto.String("W")},
			StopId: proto.String("R01N"),
		}
		raw := protowire.AppendTag(nil, currentStatusField, protowire.VarintType)
		raw = protowire.AppendVarint(raw, 3)
		vehicle.ProtoReflect().SetUnknown(raw)

		data := buildFeed(t, &gtfsproto.FeedEntity{Id: proto.String("w1"), Vehicle: vehicle})

		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		code := got.Entities[0].Vehicle.StatusCode
		if code == nil || *code != 3 {
			t.Errorf("expected status code 3, got %v", code)
		}
	})
}

func TestDecodeMalformed(t *testing.T) {
	valid := buildFeed(t, vehicleEntity("000001N", "N", "R16N", 40.71, -73.93, 2))

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte{0xff, 0xff, 0xff, 0xff}},
		{"truncated", valid[:len(valid)-3]},
		{"empty body", nil},
		{"text body", []byte("<html>Service Unavailable</html>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decodeErr.Size != len(tt.data) {
				t.Errorf("expected size %d, got %d", len(tt.data), decodeErr.Size)
			}
		})
	}
}

func TestUnknownVarint(t *testing.T) {
	raw := protowire.AppendTag(nil, 1, protowire.BytesType)
	raw = protowire.AppendString(raw, "skip me")
	raw = protowire.AppendTag(raw, currentStatusField, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 3)
	raw = protowire.AppendTag(raw, 9, protowire.Fixed32Type)
	raw = protowire.AppendFixed32(raw, 7)

	got := unknownVarint(raw, currentStatusField)
	if got == nil || *got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
	if got := unknownVarint(raw, 6); got != nil {
		t.Errorf("expected nil for absent field, got %v", *got)
	}
}
