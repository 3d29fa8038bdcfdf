package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/net/middleware"
	phttp "orderlens/internal/platform/net/http"
	kit "orderlens/internal/platform/testkit"
)

func chain(h http.Handler, mws ...middleware.Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	kit.Swap(t, logger.Get(), logger.Get().Output(&buf).Level(zerolog.InfoLevel))

	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "made")
	}), middleware.RequestID, middleware.AccessLogZerolog(time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
	req.Header.Set("X-Request-Id", "req-77")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated || rec.Body.String() != "made" {
		t.Fatalf("response = %d %q", rec.Code, rec.Body.String())
	}
	line := buf.String()
	for _, want := range []string{`"request_id":"req-77"`, `"status":201`, `"bytes":4`, `"path":"/jobs"`, `"level":"info"`} {
		kit.MustContain(t, line, want)
	}
}

func TestAccessLogSlowIsWarn(t *testing.T) {
	var buf bytes.Buffer
	kit.Swap(t, logger.Get(), logger.Get().Output(&buf).Level(zerolog.InfoLevel))

	h := middleware.AccessLogZerolog(time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	kit.MustContain(t, buf.String(), `"level":"warn"`)
	kit.MustContain(t, buf.String(), `"status":200`)
}

func TestRecoverJSON(t *testing.T) {
	kit.Swap(t, logger.Get(), logger.Get().Output(io.Discard))

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		middleware.RequestID, middleware.RecoverJSON)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || env.Code != perr.ErrorCodePanic || env.RequestID == "" {
		t.Fatalf("envelope = %d %+v", rec.Code, env)
	}

	abort := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) }))
	kit.MustPanic(t, func() { abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)) })
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	h := middleware.CORS("https://shop.example")(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analysis/jobs", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "https://shop.example" {
		t.Fatalf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("allow methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCompressJSON(t *testing.T) {
	t.Parallel()
	h := middleware.Compress()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, strings.Repeat(`{"item":"곰탕"}`, 200))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding = %q", rec.Header().Get("Content-Encoding"))
	}
}
