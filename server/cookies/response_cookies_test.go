// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cookies

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCookies_SetReplaces(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	rc := New(h)

	rc.Set(&http.Cookie{Name: "debug", Value: "1", Path: "/"})
	rc.Set(&http.Cookie{Name: "debug", Value: "1", Path: "/"})
	rc.Set(&http.Cookie{Name: "session", Value: "abc"})

	assert.Len(t, h.Values("Set-Cookie"), 2)

	got := rc.Get("debug")
	require.NotNil(t, got)
	assert.Equal(t, "1", got.Value)
	assert.Equal(t, "/", got.Path)
}

func TestResponseCookies_Remove(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Add("Set-Cookie", "debug=1; Path=/")
	h.Add("Set-Cookie", "session=abc")
	h.Add("Set-Cookie", "debug=1; Path=/other")

	rc := New(h)
	rc.Remove("debug")

	assert.Nil(t, rc.Get("debug"))
	assert.Equal(t, []string{"session=abc"}, h.Values("Set-Cookie"))

	// removing again is a no-op
	rc.Remove("debug")
	assert.Equal(t, []string{"session=abc"}, h.Values("Set-Cookie"))
}

func TestResponseCookies_RemoveOnEmptyHeader(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	New(h).Remove("debug")

	assert.Empty(t, h.Values("Set-Cookie"))
}

func TestResponseCookies_KeepsUnparseable(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Add("Set-Cookie", "=novalue")

	rc := New(h)
	rc.Set(&http.Cookie{Name: "debug", Value: "1"})
	rc.Remove("debug")

	assert.Equal(t, []string{"=novalue"}, h.Values("Set-Cookie"))
	assert.Empty(t, rc.All())
}

func TestResponseCookies_Expire(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	rc := New(h)

	rc.Set(&http.Cookie{Name: "debug", Value: "1", Path: "/"})
	rc.Expire(&http.Cookie{Name: "debug", Path: "/"})

	assert.Nil(t, rc.Get("debug"), "deletion markers are not live")

	lines := h.Values("Set-Cookie")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Max-Age=0")

	// Remove also drops the marker
	rc.Remove("debug")
	assert.Empty(t, h.Values("Set-Cookie"))
}

func TestResponseCookies_ExpiredByDate(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	rc := New(h)

	rc.Set(&http.Cookie{Name: "old", Value: "1", Expires: time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)})
	rc.Set(&http.Cookie{Name: "new", Value: "1", Expires: time.Now().Add(time.Hour)})

	assert.Nil(t, rc.Get("old"))
	assert.NotNil(t, rc.Get("new"))
}

func TestResponseCookies_CopyTo(t *testing.T) {
	t.Parallel()

	src := http.Header{}
	rc := New(src)
	rc.Set(&http.Cookie{Name: "debug", Value: "1"})
	rc.Expire(&http.Cookie{Name: "gone"})

	dst := http.Header{}
	rc.CopyTo(dst)

	assert.Equal(t, src.Values("Set-Cookie"), dst.Values("Set-Cookie"))
}
