package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestAdaptChiRoutesAndParams(t *testing.T) {
	t.Parallel()
	mux := chi.NewRouter()
	r := AdaptChi(mux)

	var order []string
	tag := func(s string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, s)
				next.ServeHTTP(w, req)
			})
		}
	}
	r.Route("/jobs", func(sub Router) {
		sub.Use(tag("a"), tag("b"))
		sub.Get("/{id}", func(w http.ResponseWriter, req *http.Request) { _, _ = w.Write([]byte(Param(req, "id"))) })
		sub.Post("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	})
	r.Handle("/raw", http.NotFoundHandler())

	cases := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/jobs/42", http.StatusOK, "42"},
		{http.MethodPost, "/jobs/", http.StatusCreated, ""},
		{http.MethodPost, "/jobs/42", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/raw", http.StatusNotFound, "404 page not found\n"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(c.method, c.path, nil))
		if rec.Code != c.code {
			t.Errorf("%s %s = %d, want %d", c.method, c.path, rec.Code, c.code)
		}
		if c.body != "" && rec.Body.String() != c.body {
			t.Errorf("%s %s body = %q", c.method, c.path, rec.Body.String())
		}
	}
	if strings.Join(order[:2], "") != "ab" {
		t.Fatalf("middleware order = %v", order)
	}
}

func TestMountProfiler(t *testing.T) {
	t.Parallel()
	off := chi.NewRouter()
	MountProfiler(AdaptChi(off), "/debug", false)
	rec := httptest.NewRecorder()
	off.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled profiler answered %d", rec.Code)
	}

	on := chi.NewRouter()
	MountProfiler(AdaptChi(on), "/debug", true)
	rec = httptest.NewRecorder()
	on.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("profiler index = %d", rec.Code)
	}
}
