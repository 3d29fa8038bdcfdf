package version

import "testing"

func TestInfo(t *testing.T) {
	t.Parallel()
	b := Info("orderlens-api")
	if b.Service != "orderlens-api" || b.Version != "dev" || b.Commit != "none" {
		t.Fatalf("info = %+v", b)
	}
	if b.RulesVersion <= 0 {
		t.Fatalf("rules version not reported: %+v", b)
	}
}
