package router

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/debugflag/debugflag/config"
	"codeberg.org/debugflag/debugflag/server/metrics"
	"codeberg.org/debugflag/debugflag/server/middleware"
	"codeberg.org/debugflag/debugflag/server/routes"
)

// DefineRoutes sets up all the routes for the application using our custom Router.
//
// Pages that honor the debug toggle get a DebugFilter. Operational routes
// (health, metrics, pprof) do not.
func (router *Router) DefineRoutes() {
	debugFilter := middleware.NewDebugFilter(&config.Global)

	// Index page routes
	// /{$} matches only the root path
	router.HandleFunc("GET /{$}", middleware.CatchError(routes.IndexPage, debugFilter))

	router.HandleFunc("GET /healthz", middleware.CatchError(routes.HealthPage))

	if config.Global.Metrics.Enabled {
		router.Handle("GET "+config.Global.Metrics.Path, metrics.Handler())
	}

	// Anything else is a 404 page, which can still toggle debug mode.
	router.HandleFunc("/", middleware.CatchError(func(w http.ResponseWriter, r *http.Request) error {
		http.NotFound(w, r)

		return nil
	}, debugFilter))

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)

	if !flightRecorder.Enabled() {
		if err := flightRecorder.Start(); err != nil {
			log.Err(err).Msg("Failed to start flight recorder, /debug/flight is disabled")

			return
		}
	}

	router.HandleFunc("GET /debug/flight", middleware.CatchError(FlightRecording))
}

// FlightRecording writes a snapshot of the runtime/trace flight recorder.
//
// The snapshot is written to the buffered response, so a failure becomes a 500.
func FlightRecording(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="flight.trace"`)

	if _, err := flightRecorder.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write flight recording: %w", err)
	}

	return nil
}
