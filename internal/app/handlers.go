package app

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/julienschmidt/httprouter"
	"trainmap.dev/internal/models"
)

// HealthStatus is the body of /v1/healthcheck. Ready is true once the
// station directory has loaded.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	FeedID      string `json:"feedId"`
	Stations    int    `json:"stations"`
	Ready       bool   `json:"ready"`
	LastCycleAt string `json:"lastCycleAt,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

// errorResponse is written for every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// stationResponse renders unknown coordinates as null.
type stationResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func newStationResponse(s models.Station) stationResponse {
	resp := stationResponse{ID: s.ID, Name: s.Name}
	if s.HasCoordinates() {
		lat, lon := s.Latitude, s.Longitude
		resp.Latitude = &lat
		resp.Longitude = &lon
	}
	return resp
}

func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	ready := app.Directory.Loaded()

	status := HealthStatus{
		Status:      "available",
		Environment: app.Config.Env,
		Version:     app.Version,
		FeedID:      app.Config.Settings.Feed.FeedID,
		Stations:    app.Directory.Len(),
		Ready:       ready,
	}
	if snap := app.Snapshots.Get(); snap != nil {
		status.LastCycleAt = snap.CompletedAt.UTC().Format(time.RFC3339)
		if snap.Err != nil {
			status.LastError = snap.Err.Error()
		}
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	app.writeJSON(w, code, status)
}

// trainsHandler serves the positions of the latest ingestion cycle.
func (app *Application) trainsHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.Snapshots.Get()
	if snap == nil {
		app.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "Failed to fetch train data",
			Details: "no ingestion cycle has completed yet",
		})
		return
	}
	if snap.Err != nil {
		app.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "Failed to fetch train data",
			Details: snap.Err.Error(),
		})
		return
	}

	positions := snap.Positions
	if positions == nil {
		positions = []models.VehiclePosition{}
	}
	app.writeJSON(w, http.StatusOK, positions)
}

func (app *Application) stationsHandler(w http.ResponseWriter, r *http.Request) {
	if !app.Directory.Loaded() {
		app.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Failed to load stops data"})
		return
	}

	resp := make([]stationResponse, 0, app.Directory.Len())
	for s := range app.Directory.All() {
		resp = append(resp, newStationResponse(s))
	}
	slices.SortFunc(resp, func(a, b stationResponse) int {
		return cmp.Compare(a.ID, b.ID)
	})
	app.writeJSON(w, http.StatusOK, resp)
}

func (app *Application) stationHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	s, ok := app.Directory.Resolve(id)
	if !ok {
		app.writeJSON(w, http.StatusNotFound, errorResponse{Error: "station not found", Details: id})
		return
	}
	app.writeJSON(w, http.StatusOK, newStationResponse(s))
}

func (app *Application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("Failed to write response", "error", err)
	}
}
