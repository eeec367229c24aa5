// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strings"
	"sync"

	"codeberg.org/debugflag/debugflag/config"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// Debugflag-Version and Debugflag-Revision are added dynamically in SetResponseHeaders.
	baseHeaders = http.Header{
		"Referrer-Policy":         {"no-referrer"},
		"X-Frame-Options":         {"DENY"},
		"X-Content-Type-Options":  {"nosniff"},
		"Content-Security-Policy": {strings.Join(baseCSP, "; ") + ";"},
		"Permissions-Policy":      {strings.Join(defaultPermissionsPolicy, ", ")},
		"Vary":                    {"Cookie"},
	}

	baseCSP = []string{
		"base-uri 'none'",
		"default-src 'none'",
		"frame-ancestors 'none'",
		"form-action 'none'",
	}

	defaultPermissionsPolicy = []string{
		"camera=()",
		"geolocation=()",
		"microphone=()",
		"payment=()",
		"usb=()",
	}
)

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	if config.Global.Development.InDevelopment {
		invalidateCacheInDevelopment(headers)
	}

	headers.Set("Debugflag-Version", config.BuildVersion)
	headers.Set("Debugflag-Revision", config.Global.Build.Revision())

	next.ServeHTTP(w, r)
}

var clearSiteDataOnce sync.Once

// clear cache in development, on the first response only
func invalidateCacheInDevelopment(headers http.Header) {
	clearSiteDataOnce.Do(func() {
		headers.Set("Clear-Site-Data", `"cache"`)
	})
}
