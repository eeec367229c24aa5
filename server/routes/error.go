package routes

import (
	"net/http"

	"codeberg.org/debugflag/debugflag/server/request_context"
	"codeberg.org/debugflag/debugflag/server/utils"
)

// ErrorPage renders an error page for the status code in the request context.
//
// The error itself is only shown to requests in debug mode.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	ctx := request_context.FromRequest(r)

	body := http.StatusText(ctx.StatusCode)
	if ctx.Debug && ctx.RequestError != nil {
		body += ": " + ctx.RequestError.Error()
	}

	if err := utils.WriteText(w, ctx.StatusCode, body+"\n"); err != nil {
		request_context.Logger(r).Err(err).Msg("Failed to write error page")
	}
}
