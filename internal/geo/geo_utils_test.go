package geo

import (
	"math"
	"testing"

	"trainmap.dev/internal/models"
)

func TestComputeBoundingBox(t *testing.T) {
	tests := []struct {
		name     string
		stations []models.Station
		want     BoundingBox
		wantErr  bool
	}{
		{
			name:    "no stations",
			wantErr: true,
		},
		{
			name: "only unknown coordinates",
			stations: []models.Station{
				{ID: "A", Latitude: math.NaN(), Longitude: math.NaN()},
			},
			wantErr: true,
		},
		{
			name: "skips NaN coordinates",
			stations: []models.Station{
				{ID: "R16", Latitude: 40.754672, Longitude: -73.986754},
				{ID: "R17", Latitude: 40.749567, Longitude: -73.98795},
				{ID: "X", Latitude: math.NaN(), Longitude: -10},
				{ID: "R01", Latitude: 40.775036, Longitude: -73.912034},
			},
			want: BoundingBox{MinLat: 40.749567, MaxLat: 40.775036, MinLon: -73.98795, MaxLon: -73.912034},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeBoundingBox(tt.stations)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBoundingBoxContains(t *testing.T) {
	bbox := BoundingBox{MinLat: 40.5, MaxLat: 40.9, MinLon: -74.1, MaxLon: -73.7}

	if !bbox.Contains(40.71, -73.93) {
		t.Error("expected point inside the box")
	}
	if bbox.Contains(41.2, -73.93) {
		t.Error("expected point north of the box to be outside")
	}
	if bbox.Contains(0, 0) {
		t.Error("expected (0,0) to be outside")
	}
}

func TestIsValidLatLon(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{40.7, -73.9, true},
		{0, 0, false},
		{91, 0, false},
		{0, -181, false},
		{math.NaN(), -73.9, false},
	}
	for _, tt := range tests {
		if got := IsValidLatLon(tt.lat, tt.lon); got != tt.want {
			t.Errorf("IsValidLatLon(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestHaversineDistance(t *testing.T) {
	// Times Sq to 34 St-Herald Sq is a little under 600 meters.
	d := HaversineDistance(40.754672, -73.986754, 40.749567, -73.98795)
	if d < 550 || d > 650 {
		t.Errorf("unexpected distance %f", d)
	}
	if got := HaversineDistance(40.7, -73.9, 40.7, -73.9); got != 0 {
		t.Errorf("expected zero distance for identical points, got %f", got)
	}
}
