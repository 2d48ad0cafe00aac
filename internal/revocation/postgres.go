package revocation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps revocation records in the revoked_tokens table. token_hash
// carries a unique index so lookups are exact-match point reads.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Put(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO revoked_tokens (token_hash, expires_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token_hash) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query, rec.TokenHash, rec.ExpiresAt)
	return err
}

func (s *PGStore) Exists(ctx context.Context, tokenHash string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_hash = $1)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PGStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at IS NOT NULL AND expires_at < $1`
	cmd, err := s.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
