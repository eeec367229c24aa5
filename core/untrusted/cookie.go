// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package untrusted

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/debugflag/debugflag/core/cookie"
	"codeberg.org/debugflag/debugflag/server/utils"
)

// SameSite=Lax allows cookies on top-level navigations, so a debug link
// followed from another site keeps working.
const CookieSameSite = http.SameSiteLaxMode

// Cookies will expire in 30 days from when they are set.
const cookieMaxAge = 30 * 24 * time.Hour

// Clear a cookie by setting its expiration date to this
var cookieExpireDelete = time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)

// timeNow is replaced in tests.
var timeNow = time.Now

// GetCookie returns the unescaped value of a request cookie, or "" if it is
// missing or malformed.
func GetCookie(r *http.Request, name cookie.CookieName) string {
	c, err := r.Cookie(string(name))
	if err != nil {
		return ""
	}

	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}

	return value
}

// HasCookie reports whether the user agent sent a cookie named name, whatever
// its value.
func HasCookie(r *http.Request, name cookie.CookieName) bool {
	_, err := r.Cookie(string(name))

	return err == nil
}

// HasDebugCookie reports whether the user agent sent debug=1.
func HasDebugCookie(r *http.Request) bool {
	return GetCookie(r, cookie.DebugCookie) == cookie.DebugCookieValue
}

// NewCookie builds a response cookie for name.
//
// When scopeToHost is set, the cookie's Domain is the host the request was
// addressed to.
func NewCookie(r *http.Request, name cookie.CookieName, value string, scopeToHost bool) *http.Cookie {
	return &http.Cookie{
		Name:     string(name),
		Value:    url.QueryEscape(value),
		Path:     "/",
		Domain:   cookieDomain(r, scopeToHost),
		Expires:  timeNow().Add(cookieMaxAge),
		Secure:   utils.IsConnectionSecure(r),
		HttpOnly: cookie.IsHttpOnly(name),
		SameSite: CookieSameSite,
	}
}

// NewDeletionCookie builds a cookie that makes the user agent drop name.
func NewDeletionCookie(r *http.Request, name cookie.CookieName, scopeToHost bool) *http.Cookie {
	c := NewCookie(r, name, "", scopeToHost)
	c.Expires = cookieExpireDelete
	c.MaxAge = -1

	return c
}

func cookieDomain(r *http.Request, scopeToHost bool) string {
	if !scopeToHost {
		return ""
	}

	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	// IPv6 literals are not valid cookie domains; the cookie stays host-only.
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return ""
	}

	return host
}
