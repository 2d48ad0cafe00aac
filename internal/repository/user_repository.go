package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbridge/api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, active, failed_attempts, locked_until, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, 0, NULL, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Active,
	)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, active, failed_attempts, locked_until, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByID loads a user with roles and permissions eagerly attached, as the
// auth gateway needs them for permission resolution on every request.
func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, active, failed_attempts, locked_until, created_at, updated_at
		FROM users WHERE id = $1
	`
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.User{}, err
	}

	if user.Permissions, err = r.directPermissions(ctx, id); err != nil {
		return models.User{}, err
	}
	if user.Roles, err = r.rolesWithPermissions(ctx, id); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.FailedAttempts,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) directPermissions(ctx context.Context, userID string) ([]models.Permission, error) {
	const query = `
		SELECT p.id, p.code, p.active, p.is_default, p.created_at, p.updated_at
		FROM permissions p
		JOIN user_permissions up ON up.permission_id = p.id
		WHERE up.user_id = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Code, &p.Active, &p.Default, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *UserRepository) rolesWithPermissions(ctx context.Context, userID string) ([]models.Role, error) {
	const rolesQuery = `
		SELECT r.id, r.code, r.active, r.is_system, r.is_default, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
	`
	rows, err := r.pool.Query(ctx, rolesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	index := make(map[string]int)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Active, &role.System, &role.Default, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		index[role.ID] = len(roles)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, nil
	}

	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	const permsQuery = `
		SELECT rp.role_id, p.id, p.code, p.active, p.is_default, p.created_at, p.updated_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ANY($1)
	`
	permRows, err := r.pool.Query(ctx, permsQuery, roleIDs)
	if err != nil {
		return nil, err
	}
	defer permRows.Close()

	for permRows.Next() {
		var roleID string
		var p models.Permission
		if err := permRows.Scan(&roleID, &p.ID, &p.Code, &p.Active, &p.Default, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[roleID]; ok {
			roles[i].Permissions = append(roles[i].Permissions, p)
		}
	}
	return roles, permRows.Err()
}

// RecordFailedAttempt increments the failed-attempt counter and, when the
// counter reaches threshold, sets locked_until to the given timestamp. The
// whole transition is a single conditional UPDATE so concurrent failures on
// the same account cannot race. Accounts already under lockout are left
// untouched: probing during a lockout must not extend it.
func (r *UserRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) error {
	const query = `
		UPDATE users SET
			failed_attempts = failed_attempts + 1,
			locked_until = CASE WHEN failed_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
			updated_at = NOW()
		WHERE id = $1 AND (locked_until IS NULL OR locked_until <= NOW())
	`
	_, err := r.pool.Exec(ctx, query, id, threshold, lockUntil)
	return err
}

// ResetLockout clears the failed-attempt counter and any lockout timestamp
// after a successful authentication.
func (r *UserRepository) ResetLockout(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET failed_attempts = 0, locked_until = NULL, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetPassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) AssignRole(ctx context.Context, userID string, roleID string) error {
	const query = `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, roleID)
	return err
}

func (r *UserRepository) RemoveRole(ctx context.Context, userID string, roleID string) error {
	const query = `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, roleID)
	return err
}

func (r *UserRepository) GrantPermission(ctx context.Context, userID string, permissionID string) error {
	const query = `
		INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2)
		ON CONFLICT (user_id, permission_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, permissionID)
	return err
}

func (r *UserRepository) RemovePermission(ctx context.Context, userID string, permissionID string) error {
	const query = `DELETE FROM user_permissions WHERE user_id = $1 AND permission_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, permissionID)
	return err
}
