package httpkit

import (
	"time"

	"orderlens/internal/platform/config"
	"orderlens/internal/platform/net/middleware"
)

const apiV1 = "/api/v1"

// CommonStack is the middleware every /api route runs under, configured from API_*
func CommonStack(cfg config.Conf) []middleware.Middleware {
	c := cfg.Prefix("API_")
	return []middleware.Middleware{
		middleware.RequestID,
		middleware.RealIP,
		middleware.AccessLogZerolog(c.MayDuration("SLOW_REQUEST", 500*time.Millisecond)),
		middleware.RecoverJSON,
		middleware.CORS(c.MayCSV("CORS_ORIGINS", nil)...),
		middleware.NoCache,
		middleware.Compress(),
		middleware.Heartbeat(apiV1 + "/health"),
		middleware.StripSlashes,
		// job runs are detached from the request and outlive this
		middleware.Timeout(c.MayDuration("REQUEST_TIMEOUT", 30*time.Second)),
	}
}

// MountAPIV1 scopes mount under /api/v1 with mw applied
func MountAPIV1(r Router, mw []middleware.Middleware, mount func(Router)) {
	r.Route(apiV1, func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}
