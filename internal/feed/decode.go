package feed

import (
	gtfsproto "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

// currentStatusField is the field number of VehiclePosition.current_status.
const currentStatusField protowire.Number = 4

// Decode parses a serialized FeedMessage.
// Every entity is kept in feed order, with or without a vehicle record.
func Decode(data []byte) (*Feed, error) {
	var msg gtfsproto.FeedMessage
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, &DecodeError{Size: len(data), Err: err}
	}

	out := &Feed{
		HeaderTimestamp: msg.GetHeader().GetTimestamp(),
		Entities:        make([]Entity, 0, len(msg.GetEntity())),
	}
	for _, e := range msg.GetEntity() {
		out.Entities = append(out.Entities, Entity{
			ID:      e.GetId(),
			Vehicle: vehicleRecord(e.GetVehicle()),
		})
	}
	return out, nil
}

func vehicleRecord(v *gtfsproto.VehiclePosition) *VehicleRecord {
	if v == nil {
		return nil
	}

	rec := &VehicleRecord{
		StopID:     v.GetStopId(),
		Timestamp:  v.GetTimestamp(),
		StatusCode: statusCode(v),
	}
	if t := v.GetTrip(); t != nil {
		rec.Trip = &TripRecord{
			TripID:  t.GetTripId(),
			RouteID: t.GetRouteId(),
		}
	}
	if p := v.GetPosition(); p != nil {
		rec.Position = &PositionRecord{
			Latitude:  float64(p.GetLatitude()),
			Longitude: float64(p.GetLongitude()),
		}
	}
	return rec
}

// statusCode returns the reported current_status.
//
// current_status is a closed proto2 enum, so values outside the published
// set (the subway feeds send 3 for a delayed train) are not stored in the
// field but kept in the unknown field set. They are read back from there.
func statusCode(v *gtfsproto.VehiclePosition) *int32 {
	if v.CurrentStatus != nil {
		code := int32(*v.CurrentStatus)
		return &code
	}
	return unknownVarint(v.ProtoReflect().GetUnknown(), currentStatusField)
}

// unknownVarint returns the last varint value recorded for field num, nil if none.
func unknownVarint(raw []byte, num protowire.Number) *int32 {
	var found *int32
	for len(raw) > 0 {
		n, typ, tagLen := protowire.ConsumeTag(raw)
		if tagLen < 0 {
			return found
		}
		raw = raw[tagLen:]

		if n == num && typ == protowire.VarintType {
			v, valLen := protowire.ConsumeVarint(raw)
			if valLen < 0 {
				return found
			}
			code := int32(v)
			found = &code
			raw = raw[valLen:]
			continue
		}

		valLen := protowire.ConsumeFieldValue(n, typ, raw)
		if valLen < 0 {
			return found
		}
		raw = raw[valLen:]
	}
	return found
}
