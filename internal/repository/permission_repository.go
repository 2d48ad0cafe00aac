package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbridge/api/internal/models"
)

var ErrPermissionNotFound = errors.New("permission not found")

type PermissionRepository struct {
	pool *pgxpool.Pool
}

func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

func (r *PermissionRepository) Create(ctx context.Context, perm models.Permission) error {
	const query = `
		INSERT INTO permissions (id, code, active, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, perm.ID, perm.Code, perm.Active, perm.Default)
	return err
}

func (r *PermissionRepository) GetByID(ctx context.Context, id string) (models.Permission, error) {
	const query = `
		SELECT id, code, active, is_default, created_at, updated_at
		FROM permissions WHERE id = $1
	`
	var perm models.Permission
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&perm.ID,
		&perm.Code,
		&perm.Active,
		&perm.Default,
		&perm.CreatedAt,
		&perm.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Permission{}, ErrPermissionNotFound
		}
		return models.Permission{}, err
	}
	return perm, nil
}

// SetActive toggles whether the permission contributes to effective sets.
// Deactivating leaves role and user links in place so reactivation restores
// prior grants.
func (r *PermissionRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE permissions SET active = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPermissionNotFound
	}
	return nil
}

func (r *PermissionRepository) List(ctx context.Context) ([]models.Permission, error) {
	const query = `
		SELECT id, code, active, is_default, created_at, updated_at
		FROM permissions ORDER BY code
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var perm models.Permission
		if err := rows.Scan(&perm.ID, &perm.Code, &perm.Active, &perm.Default, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}
