package routes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartclass/middleware"
	"smartclass/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoles map[string]models.Role

func (f fakeRoles) RoleByEmail(_ context.Context, email string) (models.Role, error) {
	if r, ok := f[email]; ok {
		return r, nil
	}
	return "", models.ErrNotFound
}

func policyOf(t *testing.T, table []Route, method, path string) middleware.Policy {
	t.Helper()
	for _, rt := range table {
		if rt.Method == method && rt.Path == path {
			return rt.Policy
		}
	}
	t.Fatalf("route %s %s not registered", method, path)
	return middleware.Policy{}
}

func TestTablePolicies(t *testing.T) {
	table := Table(&Deps{})

	admin := [][2]string{
		{http.MethodGet, "/classes-manage"},
		{http.MethodPut, "/change-status/:id"},
		{http.MethodGet, "/users"},
		{http.MethodDelete, "/delete-user/:id"},
		{http.MethodPut, "/update-user/:id"},
		{http.MethodGet, "/admin-stats"},
	}
	for _, r := range admin {
		assert.Equal(t, middleware.AdminOnly, policyOf(t, table, r[0], r[1]), r[1])
	}

	instructor := []string{"/classes/:email", "/approved-classes/:email", "/pending-classes/:email"}
	for _, p := range instructor {
		assert.Equal(t, middleware.InstructorOrAdmin, policyOf(t, table, http.MethodGet, p), p)
	}
	assert.Equal(t, middleware.InstructorOrAdmin, policyOf(t, table, http.MethodPost, "/new-class"))

	public := []string{"/classes", "/approved-classes", "/class/:id", "/users/:id", "/instructors", "/popular_classes", "/popular-instructors"}
	for _, p := range public {
		assert.Equal(t, middleware.Public, policyOf(t, table, http.MethodGet, p), p)
	}

	owned := []string{"/payment-history/:email", "/payment-history-length/:email", "/enrolled-classes/:email", "/cart/:email"}
	for _, p := range owned {
		assert.Equal(t, "email", policyOf(t, table, http.MethodGet, p).OwnerParam, p)
	}

	limited := map[string]bool{}
	for _, rt := range table {
		if rt.Limited {
			limited[rt.Path] = true
		}
	}
	assert.Equal(t, map[string]bool{
		"/api/set-token":         true,
		"/jwt":                   true,
		"/create-payment-intent": true,
		"/payment-info":          true,
	}, limited)
}

func TestRouterEnforcesPolicies(t *testing.T) {
	tokens := middleware.NewTokenService("secret", time.Hour)
	roles := fakeRoles{"s@x.io": models.RoleStudent, "t@x.io": models.RoleInstructor}
	gate := middleware.NewGate(tokens, roles, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := httprouter.New()
	RoutesWrapper(router, &Deps{Gate: gate})

	get := func(path, email string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if email != "" {
			tok, err := tokens.Sign(middleware.Claims{Email: email})
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, get("/users", ""))
	assert.Equal(t, http.StatusForbidden, get("/users", "s@x.io"))
	assert.Equal(t, http.StatusForbidden, get("/users", "t@x.io"))
	assert.Equal(t, http.StatusForbidden, get("/classes/t@x.io", "s@x.io"))
	assert.Equal(t, http.StatusForbidden, get("/payment-history/t@x.io", "s@x.io"))
	assert.Equal(t, http.StatusOK, get("/", ""))
	assert.Equal(t, http.StatusOK, get("/metrics", ""))
}

func TestHealth(t *testing.T) {
	router := httprouter.New()
	AddMiscRoutes(router, func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	router = httprouter.New()
	AddMiscRoutes(router, func(context.Context) error { return nil })
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
