package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"workbridge/api/internal/config"
	"workbridge/api/internal/models"
	"workbridge/api/internal/repository"
	"workbridge/api/internal/security"
)

const testSecret = "auth-test-secret"

type fakeUsers struct {
	users map[string]models.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[token], nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:    testSecret,
			JWTAccessTTL: 15 * time.Minute,
		},
	}
}

func newAuthRouter(users UserSource, revoked RevocationChecker, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{Auth(testConfig(), users, revoked)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		principal, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"id":          principal.UserID,
			"permissions": principal.Permissions.Codes(),
		})
	})
	router.GET("/protected", chain...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func activeUser(id string) models.User {
	return models.User{ID: id, Email: id + "@example.com", Active: true}
}

func issueToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := security.GenerateAccessToken(testSecret, userID, userID+"@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return token
}

func TestAuthMissingOrMalformedHeader(t *testing.T) {
	router := newAuthRouter(&fakeUsers{}, &fakeRevocations{})

	for _, header := range []string{"", "Basic abc", "Bearer ", "token-without-scheme"} {
		rec := doRequest(router, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "missing_or_malformed_credential") {
			t.Fatalf("header %q: unexpected body %s", header, rec.Body.String())
		}
	}
}

func TestAuthRevokedToken(t *testing.T) {
	token := issueToken(t, "u1")
	users := &fakeUsers{users: map[string]models.User{"u1": activeUser("u1")}}
	router := newAuthRouter(users, &fakeRevocations{revoked: map[string]bool{token: true}})

	rec := doRequest(router, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "revoked_credential") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthInvalidSignature(t *testing.T) {
	forged, err := security.GenerateAccessToken("some-other-secret", "u1", "u1@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	router := newAuthRouter(&fakeUsers{}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+forged)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_credential") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthExpiredToken(t *testing.T) {
	expired, err := security.GenerateAccessToken(testSecret, "u1", "u1@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	router := newAuthRouter(&fakeUsers{}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+expired)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_credential") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthPrincipalNotFound(t *testing.T) {
	router := newAuthRouter(&fakeUsers{users: map[string]models.User{}}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+issueToken(t, "ghost"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "principal_not_found") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthLockedAccount(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)
	user := activeUser("u1")
	user.LockedUntil = &until
	router := newAuthRouter(&fakeUsers{users: map[string]models.User{"u1": user}}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+issueToken(t, "u1"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "account_locked") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthElapsedLockoutDoesNotBlock(t *testing.T) {
	until := time.Now().Add(-time.Minute)
	user := activeUser("u1")
	user.LockedUntil = &until
	router := newAuthRouter(&fakeUsers{users: map[string]models.User{"u1": user}}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+issueToken(t, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after lockout elapsed, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthInactiveAccount(t *testing.T) {
	user := activeUser("u1")
	user.Active = false
	router := newAuthRouter(&fakeUsers{users: map[string]models.User{"u1": user}}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+issueToken(t, "u1"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "account_inactive") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthStoreFailureIsNot401(t *testing.T) {
	router := newAuthRouter(&fakeUsers{err: errors.New("connection refused")}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+issueToken(t, "u1"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("store failure must map to 500, got %d", rec.Code)
	}
}

func TestAuthAttachesResolvedPrincipal(t *testing.T) {
	user := activeUser("u1")
	user.Roles = []models.Role{{
		Code:   "admin",
		Active: true,
		Permissions: []models.Permission{
			{Code: "users:delete", Active: true},
			{Code: "users:read", Active: false},
		},
	}}
	router := newAuthRouter(&fakeUsers{users: map[string]models.User{"u1": user}}, &fakeRevocations{})

	rec := doRequest(router, "Bearer "+issueToken(t, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "users:delete") {
		t.Fatalf("active permission missing from principal: %s", body)
	}
	if strings.Contains(body, "users:read") {
		t.Fatalf("inactive permission leaked into principal: %s", body)
	}
}

// Deactivating a permission must take effect on the very next request, so
// resolution cannot be cached across requests.
func TestPermissionChangeTakesEffectImmediately(t *testing.T) {
	user := activeUser("u1")
	user.Roles = []models.Role{{
		Code:        "admin",
		Active:      true,
		Permissions: []models.Permission{{Code: "users:delete", Active: true}},
	}}
	users := &fakeUsers{users: map[string]models.User{"u1": user}}
	router := newAuthRouter(users, &fakeRevocations{}, RequirePermissions("users:delete"))

	token := "Bearer " + issueToken(t, "u1")

	if rec := doRequest(router, token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 before deactivation, got %d", rec.Code)
	}

	user.Roles[0].Permissions[0].Active = false
	users.users["u1"] = user

	rec := doRequest(router, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after deactivation, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "insufficient_permission") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
