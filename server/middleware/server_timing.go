package middleware

import (
	"net/http"

	"github.com/mitchellh/go-server-timing"

	"codeberg.org/debugflag/debugflag/config"
)

// WithServerTiming adds a Server-Timing header to responses for requests in
// debug mode, when debug.serverTiming is enabled.
func WithServerTiming(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if !config.Global.Debug.ServerTiming || !isDebugRequest(r) {
		next.ServeHTTP(w, r)

		return
	}

	servertiming.Middleware(next, nil).ServeHTTP(w, r)
}
