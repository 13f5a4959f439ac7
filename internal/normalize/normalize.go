// Package normalize maps decoded feed entities to vehicle positions.
package normalize

import (
	"math"
	"strings"

	"trainmap.dev/internal/feed"
	"trainmap.dev/internal/models"
)

// Normalize converts entities to vehicle positions, keeping feed order.
//
// An entity is kept when it has a vehicle record that carries trip
// information; an empty route identifier on that trip is still accepted.
// Positions without a stop or a location are emitted with zero values.
// Duplicate identifiers are not collapsed.
func Normalize(entities []feed.Entity) []models.VehiclePosition {
	positions := make([]models.VehiclePosition, 0, len(entities))
	for _, e := range entities {
		if p, ok := FromEntity(e); ok {
			positions = append(positions, p)
		}
	}
	return positions
}

// clampTimestamp saturates feed timestamps that do not fit in an int64.
func clampTimestamp(ts uint64) int64 {
	if ts > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(ts)
}

// FromEntity maps one entity. The boolean is false when the entity is filtered out.
func FromEntity(e feed.Entity) (models.VehiclePosition, bool) {
	v := e.Vehicle
	if v == nil || v.Trip == nil {
		return models.VehiclePosition{}, false
	}

	p := models.VehiclePosition{
		ID:         e.ID,
		RouteID:    v.Trip.RouteID,
		Direction:  DirectionFromStopID(v.StopID),
		Timestamp:  clampTimestamp(v.Timestamp),
		NextStopID: v.StopID,
		Status:     StatusFromCode(v.StatusCode),
	}
	if v.Position != nil {
		p.Latitude = v.Position.Latitude
		p.Longitude = v.Position.Longitude
	}
	return p, true
}

// StatusFromCode maps the feed's current_status value.
// A missing or unrecognized code is treated as in transit.
func StatusFromCode(code *int32) models.Status {
	if code == nil {
		return models.StatusInTransit
	}
	switch *code {
	case 0, 1: // INCOMING_AT, STOPPED_AT
		return models.StatusStopped
	case 2: // IN_TRANSIT_TO
		return models.StatusInTransit
	case 3:
		return models.StatusDelayed
	default:
		return models.StatusInTransit
	}
}

// DirectionFromStopID derives the direction from the last character of the
// stop identifier: "N" is northbound, anything else southbound.
func DirectionFromStopID(stopID string) models.Direction {
	if strings.HasSuffix(stopID, "N") {
		return models.Northbound
	}
	return models.Southbound
}
