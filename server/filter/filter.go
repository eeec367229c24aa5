// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package filter defines action filters: hooks that run before and after a
route handler.

Filters are attached per route through middleware.CatchError. They run in
registration order before the handler and in reverse order after it, around
a buffered response, so OnActionExecuted can still change headers and
cookies.
*/
package filter

import (
	"net/http"

	"codeberg.org/debugflag/debugflag/server/cookies"
)

// Filter is invoked around a single handler execution.
type Filter interface {
	// OnActionExecuting runs before the handler.
	OnActionExecuting(ctx *ExecutingContext)

	// OnActionExecuted runs after the handler, even when it failed.
	OnActionExecuted(ctx *ExecutedContext)
}

// ExecutingContext is passed to OnActionExecuting.
type ExecutingContext struct {
	Request *http.Request
}

// ExecutedContext is passed to OnActionExecuted.
type ExecutedContext struct {
	Request *http.Request

	// Header is the response header of the buffered response.
	Header http.Header

	// Cookies is the cookie collection over Header.
	Cookies *cookies.ResponseCookies

	// Error is what the handler returned.
	Error error
}

// NewExecutedContext builds an ExecutedContext over a buffered response header.
func NewExecutedContext(r *http.Request, header http.Header, err error) *ExecutedContext {
	return &ExecutedContext{
		Request: r,
		Header:  header,
		Cookies: cookies.New(header),
		Error:   err,
	}
}

// Funcs adapts a pair of functions to Filter. Either may be nil.
type Funcs struct {
	Executing func(ctx *ExecutingContext)
	Executed  func(ctx *ExecutedContext)
}

func (f Funcs) OnActionExecuting(ctx *ExecutingContext) {
	if f.Executing != nil {
		f.Executing(ctx)
	}
}

func (f Funcs) OnActionExecuted(ctx *ExecutedContext) {
	if f.Executed != nil {
		f.Executed(ctx)
	}
}
