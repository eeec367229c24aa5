// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package debugflag decides what a request's "debug" query parameter does to
the debug cookie of the response.

The decision is keyed purely by the current query value:

	?debug=1   the response carries debug=1
	?debug=0   the response carries no debug cookie
	otherwise  the response cookies are left alone
*/
package debugflag

import (
	"net/http"
	"net/url"

	"codeberg.org/debugflag/debugflag/core/cookie"
)

// QueryParam is the query string key that toggles debug mode.
const QueryParam = "debug"

// Query values understood by Parse.
const (
	EnableValue  = "1"
	DisableValue = "0"
)

// Action is the effect a request has on the debug cookie.
type Action int

const (
	NoChange Action = iota
	Enable
	Disable
)

func (a Action) String() string {
	switch a {
	case Enable:
		return "enable"
	case Disable:
		return "disable"
	default:
		return "none"
	}
}

// CookieJar is the mutable set of cookies of an outgoing response.
type CookieJar interface {
	Get(name string) *http.Cookie
	Set(c *http.Cookie)
	Remove(name string)
}

// Parse maps a query string to an Action.
//
// Values other than "0" and "1" are ignored.
func Parse(query url.Values) Action {
	switch query.Get(QueryParam) {
	case EnableValue:
		return Enable
	case DisableValue:
		return Disable
	default:
		return NoChange
	}
}

// Apply performs action on jar. c is the cookie to store on Enable; only its
// name is used on Disable. Enable leaves jar alone when it already holds a
// cookie with the same name, value, path and domain.
//
// Apply is idempotent: applying the same action twice leaves jar as applying
// it once.
func Apply(jar CookieJar, action Action, c *http.Cookie) {
	switch action {
	case Enable:
		if existing := jar.Get(c.Name); existing != nil && sameCookie(existing, c) {
			return
		}

		jar.Set(c)
	case Disable:
		jar.Remove(c.Name)
	case NoChange:
	}
}

func sameCookie(a, b *http.Cookie) bool {
	return a.Value == b.Value && a.Path == b.Path && a.Domain == b.Domain
}

// Enabled reports whether a request is in debug mode: an explicit query value
// wins, otherwise the cookie the user agent sent decides.
func Enabled(query url.Values, cookieValue string) bool {
	switch Parse(query) {
	case Enable:
		return true
	case Disable:
		return false
	default:
		return cookieValue == cookie.DebugCookieValue
	}
}
