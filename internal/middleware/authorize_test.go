package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"workbridge/api/internal/authz"
)

func newEnforcerRouter(principal *authz.Principal, required ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/resource",
		func(c *gin.Context) {
			if principal != nil {
				c.Set(principalKey, *principal)
			}
			c.Next()
		},
		RequirePermissions(required...),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		},
	)
	return router
}

func enforce(router *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resource", nil))
	return rec
}

func principalWith(codes ...string) *authz.Principal {
	set := make(authz.PermissionSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return &authz.Principal{UserID: "u1", Email: "u1@example.com", Permissions: set}
}

func TestRequirePermissionsAllowsSuperset(t *testing.T) {
	router := newEnforcerRouter(principalWith("offers:read", "offers:create", "extra:perm"), "offers:read", "offers:create")
	if rec := enforce(router); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermissionsAllSemantics(t *testing.T) {
	// Holding some but not all of the required codes is not enough.
	router := newEnforcerRouter(principalWith("offers:read"), "offers:read", "offers:create")
	rec := enforce(router)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "offers:create") {
		t.Fatalf("missing permission not named: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"offers:read"`) {
		t.Fatalf("held permission reported missing: %s", rec.Body.String())
	}
}

func TestRemovingOnePermissionFlipsDecision(t *testing.T) {
	allowed := newEnforcerRouter(principalWith("a", "b"), "a", "b")
	if rec := enforce(allowed); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rejected := newEnforcerRouter(principalWith("a"), "a", "b")
	if rec := enforce(rejected); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after dropping one permission, got %d", rec.Code)
	}
}

func TestRequirePermissionsEmptyRequirement(t *testing.T) {
	router := newEnforcerRouter(principalWith())
	if rec := enforce(router); rec.Code != http.StatusOK {
		t.Fatalf("empty requirement with principal should pass, got %d", rec.Code)
	}
}

func TestRequirePermissionsNoPrincipal(t *testing.T) {
	router := newEnforcerRouter(nil, "offers:read")
	if rec := enforce(router); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rec.Code)
	}
}
