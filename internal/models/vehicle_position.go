package models

// Direction of travel derived from the stop identifier suffix.
type Direction string

const (
	Northbound Direction = "N"
	Southbound Direction = "S"
)

// Status is the normalized vehicle stop status.
type Status string

const (
	StatusInTransit Status = "IN_TRANSIT"
	StatusStopped   Status = "STOPPED"
	StatusDelayed   Status = "DELAYED"
)

// VehiclePosition is the normalized, optionally enriched position of one train.
//
// The station fields are only set when NextStopID resolved against the
// station directory. StationLatitude and StationLongitude stay nil when the
// directory entry has unknown coordinates, and DistanceToStation is only
// computed when both the vehicle and the station positions are known.
type VehiclePosition struct {
	ID         string    `json:"id"`
	RouteID    string    `json:"routeId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Direction  Direction `json:"direction"`
	Timestamp  int64     `json:"timestamp"`
	NextStopID string    `json:"nextStop"`
	Status     Status    `json:"status"`

	StationID         string   `json:"stationId,omitempty"`
	StationName       string   `json:"stationName,omitempty"`
	StationLatitude   *float64 `json:"stationLat,omitempty"`
	StationLongitude  *float64 `json:"stationLon,omitempty"`
	DistanceToStation *float64 `json:"distanceToStationMeters,omitempty"`
}

// Resolved reports whether the position was matched to a station. A matched
// station may still have an empty name.
func (v VehiclePosition) Resolved() bool {
	return v.StationID != ""
}
