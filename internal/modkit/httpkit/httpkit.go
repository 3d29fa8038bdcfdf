// Package httpkit is what feature modules import for HTTP: the router seam,
// return-style responses and the shared middleware stack
package httpkit

import (
	"net/http"

	phttp "orderlens/internal/platform/net/http"
)

type (
	Router   = phttp.Router
	Response = phttp.Response
	Envelope = phttp.Envelope
)

func OK(data any) Response       { return phttp.OK(data) }
func Accepted(data any) Response { return phttp.Accepted(data) }
func Error(err error) Response   { return phttp.Error(err) }

// Handle adapts a return-style handler
func Handle(fn func(*http.Request) Response) phttp.Handler { return phttp.Handle(fn) }

// Get mounts a read handler: a nil error answers 200 with v as data
func Get(r Router, pattern string, fn func(*http.Request) (any, error)) {
	r.Get(pattern, phttp.Handle(func(req *http.Request) Response {
		v, err := fn(req)
		if err != nil {
			return phttp.Error(err)
		}
		return phttp.OK(v)
	}))
}

// Param reads a {name} path segment
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }
