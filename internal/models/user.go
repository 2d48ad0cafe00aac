package models

import (
	"time"

	"workbridge/api/internal/security"
)

// Permission is an atomic capability identified by a globally unique code,
// e.g. "applications:update". Inactive permissions stay linked to roles and
// users but never contribute to an effective permission set.
type Permission struct {
	ID        string
	Code      string
	Active    bool
	Default   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a named bundle of permissions. System roles cannot be renamed or
// deleted. At most one role carries the Default flag at a time.
type Role struct {
	ID          string
	Code        string
	Active      bool
	System      bool
	Default     bool
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User is the identity record the authorization core operates on. The
// password hash is write-only and is never serialized. FailedAttempts and
// LockedUntil belong to the lockout policy; a LockedUntil in the future
// makes the account unauthenticable regardless of credential validity.
type User struct {
	ID             string
	Email          string
	PasswordHash   []byte
	Active         bool
	FailedAttempts int
	LockedUntil    *time.Time
	Permissions    []Permission
	Roles          []Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetPassword hashes the plaintext immediately and stores the result on the
// aggregate. Hashing never happens implicitly on save.
func (u *User) SetPassword(plain string) error {
	hash, err := security.HashPassword(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// Locked reports whether the account is under an active lockout at t.
func (u User) Locked(t time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(t)
}
