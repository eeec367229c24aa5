// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DoCleanup drops expired buckets in the background at most once per
// CleanupInterval.
func (l *Limiter) DoCleanup() {
	now := l.timeNow()

	l.cleanupMu.Lock()
	defer l.cleanupMu.Unlock()

	if l.lastCleanupAt.IsZero() {
		l.lastCleanupAt = now

		return
	}

	if now.Sub(l.lastCleanupAt) < l.opts.CleanupInterval {
		return
	}

	l.lastCleanupAt = now

	go func() {
		removed := l.cleanupExpired(now)

		log.Debug().
			Time("start", now).
			Dur("dur", time.Since(now)).
			Int("removed", removed).
			Msg("limiter cleanup")
	}()
}

// cleanupExpired removes buckets idle for longer than Expiry and returns how
// many were removed.
func (l *Limiter) cleanupExpired(now time.Time) int {
	removed := 0

	l.buckets.Range(func(key, value any) bool {
		b, ok := value.(*bucket)
		if !ok {
			l.buckets.Delete(key)

			return true
		}

		b.mu.Lock()
		idle := now.Sub(b.lastAccess)
		b.mu.Unlock()

		if idle > l.opts.Expiry {
			l.buckets.Delete(key)

			removed++
		}

		return true
	})

	return removed
}

// Len returns the number of tracked networks.
func (l *Limiter) Len() int {
	n := 0

	l.buckets.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}
