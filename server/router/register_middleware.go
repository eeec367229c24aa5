package router

import (
	"codeberg.org/debugflag/debugflag/config"
	"codeberg.org/debugflag/debugflag/server/middleware"
	"codeberg.org/debugflag/debugflag/server/middleware/limiter"
	"codeberg.org/debugflag/debugflag/server/middleware/set_request_context"
)

func (router *Router) RegisterMiddleware() {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)                // handle trailing slashes
	router.Use(set_request_context.WithRequestContext) // needed for everything else
	router.Use(middleware.DebugMode)                   // reads the debug cookie, before anything logs
	router.Use(middleware.SetResponseHeaders)          // all pages need this

	if config.Global.Limiter.Enabled {
		router.Use(limiter.New(limiter.OptionsFromConfig(&config.Global)).Evaluate)
	}
}
