package authz

// Principal is the per-request projection of an authenticated user: the
// subject id, email and effective permission codes. It is built fresh for
// every request and is never persisted or cached.
type Principal struct {
	UserID      string
	Email       string
	Permissions PermissionSet
}
