package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	The credential store and the session signer gate readiness; Google sign-in is informational
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	signerCheck func() error,
	googleEnabled bool,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
			Google:   "disabled",
		}
		if googleEnabled {
			checks.Google = "ok"
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := signerCheck(); err != nil {
			checks.Signer = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
