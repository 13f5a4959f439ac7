package feed

// Feed is one decoded feed message.
type Feed struct {
	HeaderTimestamp uint64
	Entities        []Entity
}

// Entity is one record of the feed message. Vehicle is nil for entities
// that carry no vehicle position, such as trip updates or alerts.
type Entity struct {
	ID      string
	Vehicle *VehicleRecord
}

// VehicleRecord holds the vehicle position fields as reported.
// Trip and Position are nil when absent on the wire.
type VehicleRecord struct {
	Trip      *TripRecord
	Position  *PositionRecord
	StopID    string
	Timestamp uint64
	// StatusCode is the raw current_status value, nil when not reported.
	StatusCode *int32
}

type TripRecord struct {
	TripID  string
	RouteID string
}

type PositionRecord struct {
	Latitude  float64
	Longitude float64
}
