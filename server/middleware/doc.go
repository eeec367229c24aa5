// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware chain and the action filter
runner.

Middleware have the Middleware signature and are chained by router.Router.
Route handlers are FallibleHandler values wrapped with CatchError, which also
runs the route's action filters, such as DebugFilter.
*/
package middleware
