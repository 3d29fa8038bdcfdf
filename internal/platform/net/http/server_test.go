package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderlens/internal/platform/config"
)

func TestServerConfigAndMux(t *testing.T) {
	t.Setenv("SRVTEST_API_PORT", ":0")
	t.Setenv("SRVTEST_API_READ_HEADER_TIMEOUT", "3s")
	s := NewServer(config.New().Prefix("SRVTEST_"))
	if s.Addr() != ":0" || s.srv.ReadHeaderTimeout != 3*time.Second {
		t.Fatalf("addr %q timeout %v", s.Addr(), s.srv.ReadHeaderTimeout)
	}

	s.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("ping = %d", rec.Code)
	}
}

func TestServerRunStopsOnShutdown(t *testing.T) {
	t.Setenv("SRVRUN_API_PORT", "127.0.0.1:0")
	s := NewServer(config.New().Prefix("SRVRUN_"))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
