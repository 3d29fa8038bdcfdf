package http

import (
	"encoding/json"
	"net/http"

	perr "orderlens/internal/platform/errors"
	pnet "orderlens/internal/platform/net"
)

// Envelope wraps every JSON body the API writes
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v with status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce. An error Body picks the status itself
type Response struct {
	Status int
	Body   any
	Header http.Header
}

func OK(data any) Response       { return Response{Status: http.StatusOK, Body: data} }
func Accepted(data any) Response { return Response{Status: http.StatusAccepted, Body: data} }
func Error(err error) Response   { return Response{Body: err} }

// Handle turns a return-style handler into a Handler
func Handle(fn func(*http.Request) Response) Handler {
	return func(w http.ResponseWriter, r *http.Request) { fn(r).writeTo(w, r) }
}

func (resp Response) writeTo(w http.ResponseWriter, r *http.Request) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	env := Envelope{StatusCode: resp.Status, RequestID: pnet.RequestID(r.Context())}
	switch body := resp.Body.(type) {
	case error:
		wire := perr.WireFrom(body)
		env.StatusCode = perr.HTTPStatus(body)
		env.Code, env.Error, env.Field = wire.Code, wire.Message, wire.Field
	default:
		if env.StatusCode == 0 {
			env.StatusCode = http.StatusOK
		}
		env.Data = body
	}
	env.Status = http.StatusText(env.StatusCode)
	JSON(w, env.StatusCode, env)
}
