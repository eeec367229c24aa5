// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
This package defines the cookie names used by this application.
*/
package cookie

type CookieName string

// Cookie names defined as constants.
//
// NOTE: We don't use the `__Host-` prefix; it forbids the Domain attribute
// and requires Secure, which breaks non-HTTPS deployments.
const (
	// DebugCookie turns on per-request debug mode for the browser holding it.
	DebugCookie CookieName = "debug"
)

// DebugCookieValue is the only value DebugCookie is ever set to.
const DebugCookieValue = "1"

// AllCookieNames defines all cookies that can be set by this application.
var AllCookieNames = []CookieName{
	DebugCookie,
}

// IsHttpOnly reports whether scripts should be denied access to the cookie.
//
// The debug cookie stays readable from scripts.
func IsHttpOnly(name CookieName) bool {
	switch name {
	case DebugCookie:
		return false
	default:
		return true
	}
}
