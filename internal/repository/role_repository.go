package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbridge/api/internal/models"
)

var (
	ErrRoleNotFound = errors.New("role not found")
	ErrSystemRole   = errors.New("system role is immutable")
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) Create(ctx context.Context, role models.Role) error {
	const query = `
		INSERT INTO roles (id, code, active, is_system, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, role.ID, role.Code, role.Active, role.System)
	return err
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (models.Role, error) {
	const query = `
		SELECT id, code, active, is_system, is_default, created_at, updated_at
		FROM roles WHERE id = $1
	`
	return r.scanRole(r.pool.QueryRow(ctx, query, id))
}

// FindDefault returns the role new registrations are assigned to, if one is
// configured.
func (r *RoleRepository) FindDefault(ctx context.Context) (models.Role, error) {
	const query = `
		SELECT id, code, active, is_system, is_default, created_at, updated_at
		FROM roles WHERE is_default LIMIT 1
	`
	return r.scanRole(r.pool.QueryRow(ctx, query))
}

func (r *RoleRepository) scanRole(row pgx.Row) (models.Role, error) {
	var role models.Role
	if err := row.Scan(
		&role.ID,
		&role.Code,
		&role.Active,
		&role.System,
		&role.Default,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Role{}, ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return role, nil
}

// SetDefault marks the role as the registration default. Any previous
// default is unset in the same transaction, keeping the at-most-one-default
// invariant under concurrent assignments.
func (r *RoleRepository) SetDefault(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE roles SET is_default = false, updated_at = NOW() WHERE is_default AND id <> $1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `UPDATE roles SET is_default = true, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}

	return tx.Commit(ctx)
}

// UpdateCode renames a role. System roles keep their code forever.
func (r *RoleRepository) UpdateCode(ctx context.Context, id string, code string) error {
	role, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.System {
		return ErrSystemRole
	}

	const query = `UPDATE roles SET code = $2, updated_at = NOW() WHERE id = $1 AND NOT is_system`
	cmd, err := r.pool.Exec(ctx, query, id, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// Delete removes a role. System roles cannot be deleted.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	role, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.System {
		return ErrSystemRole
	}

	const query = `DELETE FROM roles WHERE id = $1 AND NOT is_system`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE roles SET active = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) AddPermission(ctx context.Context, roleID string, permissionID string) error {
	const query = `
		INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, roleID, permissionID)
	return err
}

func (r *RoleRepository) RemovePermission(ctx context.Context, roleID string, permissionID string) error {
	const query = `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`
	_, err := r.pool.Exec(ctx, query, roleID, permissionID)
	return err
}
