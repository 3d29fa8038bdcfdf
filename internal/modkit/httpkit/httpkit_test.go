package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"orderlens/internal/platform/config"
	perr "orderlens/internal/platform/errors"
	phttp "orderlens/internal/platform/net/http"
)

func TestMountAPIV1WithStack(t *testing.T) {
	t.Setenv("HTTPKIT_API_CORS_ORIGINS", "https://shop.example")
	mux := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(mux), CommonStack(config.New().Prefix("HTTPKIT_")), func(api Router) {
		Get(api, "/jobs/{id}", func(r *http.Request) (any, error) {
			if id := Param(r, "id"); id != "7" {
				return nil, perr.NotFoundf("job %s not found", id)
			}
			return map[string]string{"id": "7"}, nil
		})
		Get(api, "/boom", func(*http.Request) (any, error) { panic(errors.New("boom")) })
	})

	cases := []struct {
		path string
		code int
	}{
		{"/api/v1/jobs/7", http.StatusOK},
		{"/api/v1/jobs/7/", http.StatusOK},
		{"/api/v1/jobs/8", http.StatusNotFound},
		{"/api/v1/boom", http.StatusInternalServerError},
		{"/api/v1/health", http.StatusOK},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		if rec.Code != c.code {
			t.Errorf("GET %s = %d, want %d", c.path, rec.Code, c.code)
		}
		if rec.Header().Get("Cache-Control") == "" {
			t.Errorf("GET %s: NoCache not applied", c.path)
		}
		if c.path == "/api/v1/health" {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("GET %s: %v", c.path, err)
		}
		if env.RequestID == "" {
			t.Errorf("GET %s: request id missing", c.path)
		}
	}
}
