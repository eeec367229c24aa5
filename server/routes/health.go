package routes

import (
	"net/http"

	"codeberg.org/debugflag/debugflag/server/utils"
)

// HealthPage is the handler for /healthz.
func HealthPage(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")

	return utils.WriteText(w, http.StatusOK, "ok\n")
}
