// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"strings"
)

// NormalizeURL redirects paths with a trailing slash (except root) to the
// same path without it. The query string, including any debug toggle, is kept.
func NormalizeURL(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if !hasTrailingSlash(r) {
		next.ServeHTTP(w, r)

		return
	}

	target := *r.URL

	// A leading "//" would make the Location protocol-relative.
	target.Path = "/" + strings.Trim(target.Path, "/")
	target.RawPath = ""

	target.Scheme = ""
	target.Host = ""
	target.User = nil

	http.Redirect(w, r, target.String(), http.StatusPermanentRedirect)
}

func hasTrailingSlash(r *http.Request) bool {
	return r.URL.Path != "/" && strings.HasSuffix(r.URL.Path, "/")
}
