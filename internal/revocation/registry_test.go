package revocation

import (
	"context"
	"testing"
	"time"
)

func TestRevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())

	revoked, err := reg.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("token revoked before any Revoke call")
	}

	if err := reg.Revoke(ctx, "token-a", nil); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = reg.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("token not revoked after Revoke")
	}

	// Other tokens are unaffected.
	if revoked, _ := reg.IsRevoked(ctx, "token-b"); revoked {
		t.Fatal("unrelated token reported revoked")
	}
}

func TestRevokeIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())

	exp := time.Now().Add(time.Hour)
	if err := reg.Revoke(ctx, "token-a", &exp); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := reg.Revoke(ctx, "token-a", &exp); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if revoked, _ := reg.IsRevoked(ctx, "token-a"); !revoked {
		t.Fatal("token not revoked")
	}
}

func TestCleanupExpiredRemovesOnlyPastExpiries(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	if err := reg.Revoke(ctx, "expired", &past); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := reg.Revoke(ctx, "live", &future); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := reg.Revoke(ctx, "permanent", nil); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	removed, err := reg.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed record, got %d", removed)
	}

	if revoked, _ := reg.IsRevoked(ctx, "expired"); revoked {
		t.Fatal("expired record survived cleanup")
	}
	if revoked, _ := reg.IsRevoked(ctx, "live"); !revoked {
		t.Fatal("not-yet-expired record was removed")
	}
	if revoked, _ := reg.IsRevoked(ctx, "permanent"); !revoked {
		t.Fatal("permanent record was removed")
	}

	// Re-running the sweep over an already clean table removes nothing.
	removed, err = reg.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed on second sweep, got %d", removed)
	}
}
