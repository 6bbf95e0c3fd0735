package relay

import (
	"context"
	"testing"
)

// TestMemoryCredentialStore tests the in-memory store contract
func TestMemoryCredentialStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCredentialStore()

	if got, err := store.Get(ctx, "absent"); err != nil || got != "" {
		t.Errorf("Get on empty store = %q, %v", got, err)
	}

	if err := store.Set(ctx, "client-a", "JSESSIONID=aaa"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "client-b", "JSESSIONID=bbb"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got, _ := store.Get(ctx, "client-a"); got != "JSESSIONID=aaa" {
		t.Errorf("client-a credential = %q", got)
	}
	if got, _ := store.Get(ctx, "client-b"); got != "JSESSIONID=bbb" {
		t.Errorf("client-b credential = %q", got)
	}

	if err := store.Delete(ctx, "client-a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := store.Get(ctx, "client-a"); got != "" {
		t.Errorf("deleted credential still present: %q", got)
	}
	if got, _ := store.Get(ctx, "client-b"); got != "JSESSIONID=bbb" {
		t.Error("delete touched an unrelated client")
	}
}
