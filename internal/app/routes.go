package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"trainmap.dev/internal/middleware"
)

// Routes registers every endpoint and wraps the router in the Sentry and
// security header middlewares. ctx bounds the metrics cache refresh loop.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/v1/trains", app.trainsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stations", app.stationsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stations/:id", app.stationHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.SentryMiddleware(router)
	return middleware.SecurityHeaders(handler)
}
