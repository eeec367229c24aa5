// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"sync"

	"codeberg.org/debugflag/debugflag/server/middleware"
)

// Router wraps http.ServeMux and provides middleware chaining functionality.
type Router struct {
	*http.ServeMux

	middlewares []middleware.Middleware

	buildOnce sync.Once
	handler   http.Handler
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{
		ServeMux: http.NewServeMux(),
	}
}

// Use adds a middleware to the router's chain.
//
// Middleware added after the first request is served are ignored.
func (router *Router) Use(m middleware.Middleware) {
	router.middlewares = append(router.middlewares, m)
}

// ServeHTTP runs the middleware chain, then the matching route.
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.buildOnce.Do(func() {
		router.handler = middleware.Chain(router.ServeMux, router.middlewares...)
	})

	router.handler.ServeHTTP(w, r)
}
