package middleware

import (
	"net/http"
	"runtime/debug"

	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/logger"
	pnet "orderlens/internal/platform/net"
	phttp "orderlens/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into the standard 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			err := perr.PanicErrf("internal error")
			phttp.JSON(w, http.StatusInternalServerError, phttp.Envelope{
				StatusCode: http.StatusInternalServerError,
				Status:     http.StatusText(http.StatusInternalServerError),
				Code:       perr.CodeOf(err),
				Error:      err.Error(),
				RequestID:  pnet.RequestID(r.Context()),
			})
		}()
		next.ServeHTTP(w, r)
	})
}
