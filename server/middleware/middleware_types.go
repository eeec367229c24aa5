package middleware

import (
	"net/http"
	"slices"
)

type Middleware func(w http.ResponseWriter, r *http.Request, next http.Handler)

// FallibleHandler is a route handler that may fail. See CatchError.
type FallibleHandler func(w http.ResponseWriter, r *http.Request) error

func Wrap(m Middleware, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m(w, r, next)
	}
}

// Chain wraps h in ms. ms[0] is the outermost middleware.
func Chain(h http.Handler, ms ...Middleware) http.Handler {
	for _, m := range slices.Backward(ms) {
		h = Wrap(m, h)
	}

	return h
}
