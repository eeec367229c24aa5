// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/debugflag/debugflag/config"
	"codeberg.org/debugflag/debugflag/core/debugflag"
	"codeberg.org/debugflag/debugflag/server/request_context"
	"codeberg.org/debugflag/debugflag/server/utils"
)

// IndexPage is the handler for the / page.
//
// It reports the instance version and whether the request is in debug mode.
// Its debug toggle is handled by the route's DebugFilter.
func IndexPage(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Cache-Control", "private, no-cache")

	ctx := request_context.FromRequest(r)

	var b strings.Builder

	fmt.Fprintf(&b, "debugflag %s (%s)\n", config.BuildVersion, config.Global.Build.Revision())
	fmt.Fprintf(&b, "started: %s UTC\n", config.Global.Instance.StartingTime)
	fmt.Fprintf(&b, "debug mode: %s\n", onOff(ctx.Debug))

	if ctx.Debug {
		fmt.Fprintf(&b, "request id: %s\n", ctx.RequestID)
	}

	fmt.Fprintf(&b, "\nenable with ?%s=%s, disable with ?%s=%s\n",
		debugflag.QueryParam, debugflag.EnableValue,
		debugflag.QueryParam, debugflag.DisableValue)

	return utils.WriteText(w, http.StatusOK, b.String())
}

func onOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}
