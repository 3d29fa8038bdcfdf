// Package middleware names the handler wrappers the API stack is built from so
// modules never import chi directly
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	pstrings "orderlens/internal/platform/strings"
)

// Middleware is the usual func(http.Handler) http.Handler
type Middleware = func(http.Handler) http.Handler

var (
	RequestID    Middleware = chimw.RequestID
	RealIP       Middleware = chimw.RealIP
	NoCache      Middleware = chimw.NoCache
	StripSlashes Middleware = chimw.StripSlashes
)

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// Timeout cancels the request context after d and answers 504 if nothing was written
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Compress gzips JSON and CSV responses at the fastest level
func Compress() Middleware {
	return chimw.Compress(flate.BestSpeed, "application/json", "text/csv", "text/plain")
}

// CORS opens the API to the listed browser origins; no origins means any
func CORS(origins ...string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins: pstrings.IfEmpty(origins, []string{"*"}),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}
