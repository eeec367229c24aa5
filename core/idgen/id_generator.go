// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen makes short, roughly sortable request IDs.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

const entropyBytes = 6

// Make returns an ID made of the current UTC time of day (HHMMSS) followed by
// 8 URL-safe characters of entropy.
func Make() string {
	return makeAt(time.Now())
}

func makeAt(t time.Time) string {
	var entropy [entropyBytes]byte

	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(entropy[:])

	return t.UTC().Format("150405") + base64.RawURLEncoding.EncodeToString(entropy[:])
}
