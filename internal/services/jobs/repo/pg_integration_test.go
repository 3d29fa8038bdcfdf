//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"orderlens/internal/core/order"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/store"
	kit "orderlens/internal/platform/testkit"
	"orderlens/internal/services/jobs/domain"
)

func TestPGRepo_Integration(t *testing.T) {
	dsn := kit.Postgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "orderlens-jobs-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	if err := EnsureSchema(ctx, st.PG); err != nil {
		t.Fatalf("schema: %v", err)
	}
	// idempotent
	if err := EnsureSchema(ctx, st.PG); err != nil {
		t.Fatalf("schema again: %v", err)
	}

	r := NewPG().Bind(st.PG)
	started := time.Now().UTC().Truncate(time.Millisecond)

	done := uuid.NewString()
	if err := r.Create(ctx, domain.Job{ID: done, Status: domain.StatusProcessing, StartedAt: started, ShopName: "우국상", ConversationLength: 42}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.SetStatus(ctx, done, domain.StatusAnalyzing); err != nil {
		t.Fatalf("set status: %v", err)
	}
	res := order.Result{ShopName: "우국상", TimeBasedOrders: []order.Record{{Time: "2024-07-01 10:00", Customer: "김철수", Item: "곰탕", Quantity: 2}}}
	if err := r.Complete(ctx, done, res, started.Add(time.Second)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := r.Get(ctx, done)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.Result == nil || len(got.Result.TimeBasedOrders) != 1 || got.Result.TimeBasedOrders[0].Customer != "김철수" {
		t.Fatalf("round trip = %+v", got)
	}
	if err := r.Fail(ctx, done, "late", started); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("fail after complete err = %v", err)
	}

	failed := uuid.NewString()
	if err := r.Create(ctx, domain.Job{ID: failed, Status: domain.StatusProcessing, StartedAt: started.Add(time.Minute)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Fail(ctx, failed, "boom", started.Add(2*time.Minute)); err != nil {
		t.Fatalf("fail: %v", err)
	}

	list, err := r.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != failed || list[0].HasResult || !list[1].HasResult {
		t.Fatalf("list = %+v", list)
	}

	if _, err := r.Get(ctx, uuid.NewString()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown job err = %v", err)
	}
	if _, err := r.Get(ctx, "not-a-uuid"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("malformed id err = %v", err)
	}
	if err := r.SetStatus(ctx, uuid.NewString(), domain.StatusAnalyzing); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing transition err = %v", err)
	}
}
