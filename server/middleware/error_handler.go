// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"

	"codeberg.org/debugflag/debugflag/config"
	"codeberg.org/debugflag/debugflag/core/audit"
	"codeberg.org/debugflag/debugflag/server/filter"
	"codeberg.org/debugflag/debugflag/server/metrics"
	"codeberg.org/debugflag/debugflag/server/request_context"
	"codeberg.org/debugflag/debugflag/server/routes"
)

// CatchError wraps a FallibleHandler, providing centralized error handling,
// response buffering, action filters and request logging.
//
// It operates as follows:
//  1. It times the request for logging purposes.
//  2. It calls OnActionExecuting on each filter, in order.
//  3. It runs the handler against an httptest.ResponseRecorder and stores
//     any returned error in the request context.
//  4. It calls OnActionExecuted on each filter, in reverse order, with the
//     buffered response header. Filters run even when the handler failed.
//
// After the filters run, it decides on the final response:
//   - If the handler returned an error without writing an HTTP error status
//     code (i.e., status < 400), the buffered response is discarded and a
//     500 Internal Server Error page is rendered.
//   - If the handler wrote a 404 Not Found status, the buffered response is
//     also discarded and replaced with the generic error page.
//   - In all other cases the buffered response is written to the client.
//
// Cookies set on the buffered response, by the handler or by a filter, are
// sent in every case.
//
// Finally, it logs the completed request details via the audit package and
// counts the response.
func CatchError(handler FallibleHandler, filters ...filter.Filter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			RequestID: ctx.RequestID,
			Method:    r.Method,
			URL:       r.URL.String(),
		}

		r = r.WithContext(span.Begin(r.Context()))
		defer span.End()

		for _, f := range filters {
			f.OnActionExecuting(&filter.ExecutingContext{Request: r})
		}

		recorder := httptest.NewRecorder()

		// Execute the handler, capturing its output and any returned error.
		ctx.RequestError = handler(recorder, r)

		executed := filter.NewExecutedContext(r, recorder.Header(), ctx.RequestError)
		for _, f := range slices.Backward(filters) {
			f.OnActionExecuted(executed)
		}

		// Server-Timing is written with the header, so the span must end first.
		span.End()

		switch {
		case (ctx.RequestError != nil && recorder.Code < http.StatusBadRequest) || (recorder.Code == http.StatusNotFound):
			if recorder.Code == http.StatusNotFound {
				ctx.StatusCode = http.StatusNotFound
			} else {
				ctx.StatusCode = http.StatusInternalServerError
			}

			executed.Cookies.CopyTo(w.Header())
			routes.ErrorPage(w, r) // ErrorPage uses ctx.RequestError and ctx.StatusCode

		default:
			// This is a successful response or a handled error. We trust the recorder's output.
			ctx.StatusCode = recorder.Code
			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				request_context.Logger(r).Err(err).Msg("Failed to write response body")
			}
		}

		metrics.ObserveResponse(ctx.StatusCode)

		span.StatusCode = ctx.StatusCode
		span.Error = ctx.RequestError
		span.Debug = ctx.Debug
		span.Toggle = ctx.DebugToggle

		// Log the application response if not excluded.
		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log(request_context.Logger(r))
		}
	}
}
