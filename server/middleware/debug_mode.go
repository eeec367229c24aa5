// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	"codeberg.org/debugflag/debugflag/config"
	"codeberg.org/debugflag/debugflag/core/cookie"
	"codeberg.org/debugflag/debugflag/core/debugflag"
	"codeberg.org/debugflag/debugflag/core/untrusted"
	"codeberg.org/debugflag/debugflag/server/request_context"
)

// DebugRequestIDHeader carries the request ID on responses in debug mode.
const DebugRequestIDHeader = "X-Debug-Request-Id"

// DebugMode marks requests that carry debug=1, as a cookie or in the query,
// as being in debug mode. ?debug=0 wins over the cookie.
//
// Requires set_request_context.WithRequestContext to run first.
func DebugMode(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := request_context.FromRequest(r)

	ctx.Debug = isDebugRequest(r)
	if !ctx.Debug {
		next.ServeHTTP(w, r)

		return
	}

	logger := request_context.Logger(r).
		Level(config.Global.DebugLogLevel()).
		With().
		Bool("debug", true).
		Logger()

	w.Header().Set(DebugRequestIDHeader, ctx.RequestID)

	next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
}

func isDebugRequest(r *http.Request) bool {
	return debugflag.Enabled(r.URL.Query(), untrusted.GetCookie(r, cookie.DebugCookie))
}
