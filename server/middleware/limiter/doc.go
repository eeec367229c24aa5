// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter provides network-based rate limiting for HTTP requests.

Clients are grouped by their IP network (an IPv4 /24 or IPv6 /48 by default)
and each network shares one token bucket. Requests that find their bucket
empty get 429 Too Many Requests. Buckets that have not been used for
Limiter.Expiry are dropped on the next cleanup pass.
*/
package limiter
