// Package authz computes and checks effective permission sets.
//
// Resolution is deliberately recomputed on every request: administrative
// changes to roles and permissions must take effect on the very next
// request, so nothing in this package caches across calls.
package authz

import (
	"sort"

	"workbridge/api/internal/models"
)

// PermissionSet is a set of permission codes. Presence is binary; a code
// granted through several paths appears once.
type PermissionSet map[string]struct{}

func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Missing returns the required codes not present in the set, sorted for
// stable diagnostics.
func (s PermissionSet) Missing(required []string) []string {
	var missing []string
	for _, code := range required {
		if !s.Has(code) {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	return missing
}

// Codes returns the set as a sorted slice.
func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Resolve computes the effective permission set for a user: the union of
// the user's active direct permissions and the active permissions of the
// user's active roles. Inactive permissions never count, even while still
// linked to a role or user.
func Resolve(user models.User) PermissionSet {
	set := make(PermissionSet)
	for _, perm := range user.Permissions {
		if perm.Active {
			set[perm.Code] = struct{}{}
		}
	}
	for _, role := range user.Roles {
		if !role.Active {
			continue
		}
		for _, perm := range role.Permissions {
			if perm.Active {
				set[perm.Code] = struct{}{}
			}
		}
	}
	return set
}
