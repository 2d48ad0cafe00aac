// Package revocation rejects bearer credentials before their natural
// expiry. Tokens are stored and looked up by SHA-256 digest only; a raw
// token never reaches a store or a log line.
package revocation

import (
	"context"
	"time"

	"workbridge/api/internal/security"
)

// Record is one revoked credential. A nil ExpiresAt means the revocation
// is permanent and the cleanup sweep leaves it alone.
type Record struct {
	TokenHash string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Store persists revocation records keyed by token hash.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Registry is the request-facing API. It owns the hashing so callers hand
// it raw tokens and stores only ever see digests.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Revoke records the token as rejected. Revoking an already revoked token
// is a no-op. Pass the token's natural expiry so the sweep can drop the
// record once the token would have died anyway; pass nil for a permanent
// revocation.
func (r *Registry) Revoke(ctx context.Context, token string, expiresAt *time.Time) error {
	return r.store.Put(ctx, Record{
		TokenHash: security.HashToken(token),
		ExpiresAt: expiresAt,
	})
}

// IsRevoked reports whether the token has been revoked.
func (r *Registry) IsRevoked(ctx context.Context, token string) (bool, error) {
	return r.store.Exists(ctx, security.HashToken(token))
}

// CleanupExpired removes records whose expiry has passed and returns how
// many were deleted. Permanent records are never removed.
func (r *Registry) CleanupExpired(ctx context.Context) (int64, error) {
	return r.store.DeleteExpired(ctx, time.Now())
}
