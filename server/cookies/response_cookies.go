// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package cookies exposes the Set-Cookie values of a response as a mutable
collection of named cookies.

It only works on headers that have not been written yet, which is why action
filters run against the buffered response in middleware.CatchError.
*/
package cookies

import (
	"net/http"
	"time"
)

const setCookieHeader = "Set-Cookie"

// timeNow is replaced in tests.
var timeNow = time.Now

// ResponseCookies is a view over the Set-Cookie values of h.
//
// Values that fail to parse are kept as they are and are never reported.
type ResponseCookies struct {
	header http.Header
}

// New returns the cookie collection backed by h.
func New(h http.Header) *ResponseCookies {
	return &ResponseCookies{header: h}
}

// All returns every live cookie in header order.
func (rc *ResponseCookies) All() []*http.Cookie {
	var all []*http.Cookie

	for _, line := range rc.header.Values(setCookieHeader) {
		c, err := http.ParseSetCookie(line)
		if err != nil || !isLive(c) {
			continue
		}

		all = append(all, c)
	}

	return all
}

// Get returns the last live cookie named name, or nil.
func (rc *ResponseCookies) Get(name string) *http.Cookie {
	var found *http.Cookie

	for _, c := range rc.All() {
		if c.Name == name {
			found = c
		}
	}

	return found
}

// Set replaces every entry named c.Name with c.
func (rc *ResponseCookies) Set(c *http.Cookie) {
	rc.drop(c.Name)
	rc.add(c)
}

// Remove drops every entry named name, including deletion markers.
func (rc *ResponseCookies) Remove(name string) {
	rc.drop(name)
}

// Expire replaces every entry named c.Name with a deletion marker built from
// c, so that the user agent forgets the cookie. Get does not report it.
func (rc *ResponseCookies) Expire(c *http.Cookie) {
	marker := *c
	marker.Value = ""
	marker.MaxAge = -1

	rc.drop(c.Name)
	rc.add(&marker)
}

// CopyTo adds every Set-Cookie value, live or not, to dst.
func (rc *ResponseCookies) CopyTo(dst http.Header) {
	for _, line := range rc.header.Values(setCookieHeader) {
		dst.Add(setCookieHeader, line)
	}
}

func (rc *ResponseCookies) add(c *http.Cookie) {
	if v := c.String(); v != "" {
		rc.header.Add(setCookieHeader, v)
	}
}

func (rc *ResponseCookies) drop(name string) {
	lines := rc.header.Values(setCookieHeader)
	if len(lines) == 0 {
		return
	}

	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if c, err := http.ParseSetCookie(line); err == nil && c.Name == name {
			continue
		}

		kept = append(kept, line)
	}

	rc.header.Del(setCookieHeader)

	for _, line := range kept {
		rc.header.Add(setCookieHeader, line)
	}
}

// isLive reports whether a user agent would keep c.
func isLive(c *http.Cookie) bool {
	if c.MaxAge < 0 {
		return false
	}

	if !c.Expires.IsZero() && c.MaxAge == 0 && c.Expires.Before(timeNow()) {
		return false
	}

	return true
}
