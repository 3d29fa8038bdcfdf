package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "orderlens/internal/platform/errors"
	pnet "orderlens/internal/platform/net"
	phttp "orderlens/internal/platform/net/http"
)

func serve(t *testing.T, resp phttp.Response) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-1"))
	rec := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response { return resp })(rec, req)

	var env phttp.Envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestResponses(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		resp phttp.Response
		code int
		err  perr.ErrorCode
	}{
		{"ok", phttp.OK(map[string]int{"n": 1}), http.StatusOK, 0},
		{"accepted", phttp.Accepted("queued"), http.StatusAccepted, 0},
		{"zero status", phttp.Response{Body: "x"}, http.StatusOK, 0},
		{"not found", phttp.Error(perr.NotFoundf("job %s", "x")), http.StatusNotFound, perr.ErrorCodeNotFound},
		{"no data", phttp.Error(perr.New(perr.ErrorCodeNoData, "empty window")), http.StatusUnprocessableEntity, perr.ErrorCodeNoData},
		{"foreign", phttp.Error(http.ErrBodyNotAllowed), http.StatusInternalServerError, perr.ErrorCodeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			rec, env := serve(t, c.resp)
			if rec.Code != c.code || env.StatusCode != c.code {
				t.Fatalf("code = %d/%d, want %d", rec.Code, env.StatusCode, c.code)
			}
			if env.RequestID != "rid-1" || env.Status != http.StatusText(c.code) {
				t.Fatalf("envelope = %+v", env)
			}
			if env.Code != c.err {
				t.Fatalf("error code = %v, want %v", env.Code, c.err)
			}
			if c.err == 0 && env.Data == nil {
				t.Fatal("missing data")
			}
		})
	}
}

func TestHeadersCarried(t *testing.T) {
	t.Parallel()
	resp := phttp.OK("x")
	resp.Header = http.Header{"X-Job": {"7"}}
	rec, _ := serve(t, resp)
	if rec.Header().Get("X-Job") != "7" || rec.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Fatalf("headers = %v", rec.Header())
	}
}

func TestErrorFieldTravels(t *testing.T) {
	t.Parallel()
	_, env := serve(t, phttp.Error(perr.WithField(perr.InvalidArgf("bad"), "end_date")))
	if env.Field != "end_date" || env.Error != "bad" {
		t.Fatalf("envelope = %+v", env)
	}
}
