package net_test

import (
	"context"
	"testing"

	pnet "orderlens/internal/platform/net"
)

func TestWithRequest_And_Getters(t *testing.T) {
	base := context.Background()

	t.Run("sets request id", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "req-123")
		if got := pnet.RequestID(ctx); got != "req-123" {
			t.Fatalf("RequestID got %q want %q", got, "req-123")
		}
	})

	t.Run("empty id leaves ctx untouched", func(t *testing.T) {
		if ctx := pnet.WithRequest(base, ""); ctx != base {
			t.Fatalf("expected same context back")
		}
		if got := pnet.RequestID(base); got != "" {
			t.Fatalf("RequestID got %q want empty", got)
		}
	})
}
