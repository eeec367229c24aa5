// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"codeberg.org/debugflag/debugflag/config"
	"codeberg.org/debugflag/debugflag/core/cookie"
	"codeberg.org/debugflag/debugflag/core/debugflag"
	"codeberg.org/debugflag/debugflag/core/untrusted"
	"codeberg.org/debugflag/debugflag/server/filter"
	"codeberg.org/debugflag/debugflag/server/metrics"
	"codeberg.org/debugflag/debugflag/server/request_context"
)

// DebugFilter is the action filter that toggles the debug cookie.
//
// After the handler has run, ?debug=1 sets debug=1 on the response and
// ?debug=0 removes it. Any other value leaves the response cookies alone.
type DebugFilter struct {
	// ScopeToHost sets the cookie's Domain to the request host.
	ScopeToHost bool

	// ExpireClientCookie makes ?debug=0 also send a deletion cookie when the
	// request carried a debug cookie.
	ExpireClientCookie bool
}

// NewDebugFilter returns a DebugFilter configured from cfg.
func NewDebugFilter(cfg *config.ServerConfig) *DebugFilter {
	return &DebugFilter{
		ScopeToHost:        cfg.Debug.ScopeCookieToHost,
		ExpireClientCookie: cfg.Debug.ExpireClientCookie,
	}
}

// OnActionExecuting does nothing.
func (*DebugFilter) OnActionExecuting(*filter.ExecutingContext) {}

// OnActionExecuted applies the request's debug toggle to the response cookies.
func (f *DebugFilter) OnActionExecuted(ctx *filter.ExecutedContext) {
	r := ctx.Request

	action := debugflag.Parse(r.URL.Query())
	if action == debugflag.NoChange {
		return
	}

	c := untrusted.NewCookie(r, cookie.DebugCookie, cookie.DebugCookieValue, f.ScopeToHost)
	debugflag.Apply(ctx.Cookies, action, c)

	expired := false
	if action == debugflag.Disable && f.ExpireClientCookie && untrusted.HasCookie(r, cookie.DebugCookie) {
		ctx.Cookies.Expire(untrusted.NewDeletionCookie(r, cookie.DebugCookie, f.ScopeToHost))

		expired = true
	}

	request_context.FromRequest(r).DebugToggle = action.String()
	metrics.ObserveToggle(action.String())

	request_context.Logger(r).Debug().
		Str("action", action.String()).
		Bool("expired_client_cookie", expired).
		Msg("Debug cookie toggled")
}
