package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"smartclass/globals"
	"smartclass/metrics"
	"smartclass/models"
	"smartclass/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	msgNoCredentials = "unauthorized access: no credentials"
	msgForbidden     = "forbidden access"
	msgRole          = "unauthorized role"
)

// RoleLookup resolves a user's stored role. A missing user is models.ErrNotFound.
type RoleLookup interface {
	RoleByEmail(ctx context.Context, email string) (models.Role, error)
}

// Policy declares what a route requires. The zero value is public.
type Policy struct {
	Authenticated bool
	Roles         []models.Role
	// OwnerParam names a path parameter that must equal the requester's email
	// unless the requester is an admin.
	OwnerParam string
}

var (
	Public            = Policy{}
	Authenticated     = Policy{Authenticated: true}
	InstructorOrAdmin = Policy{Authenticated: true, Roles: []models.Role{models.RoleInstructor, models.RoleAdmin}}
	AdminOnly         = Policy{Authenticated: true, Roles: []models.Role{models.RoleAdmin}}
)

// Owner returns a copy of p that also requires ownership of the named email parameter.
func (p Policy) Owner(param string) Policy {
	p.Authenticated = true
	p.OwnerParam = param
	return p
}

// Gate evaluates route policies: authentication first, then role and ownership.
type Gate struct {
	tokens  *TokenService
	roles   RoleLookup
	log     *slog.Logger
	timeout time.Duration
}

func NewGate(tokens *TokenService, roles RoleLookup, log *slog.Logger) *Gate {
	return &Gate{tokens: tokens, roles: roles, log: log, timeout: 5 * time.Second}
}

// Enforce returns the middleware for p.
func (g *Gate) Enforce(p Policy) Middleware {
	if !p.Authenticated && len(p.Roles) == 0 && p.OwnerParam == "" {
		return nil
	}
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			claims, ok := g.authenticate(w, r)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), globals.ClaimsKey, claims)
			ctx = context.WithValue(ctx, globals.EmailKey, claims.Email)
			r = r.WithContext(ctx)

			var role models.Role
			if len(p.Roles) > 0 {
				if role, ok = g.lookupRole(w, r, claims.Email); !ok {
					return
				}
				r = withRole(r, role)
				if !slices.Contains(p.Roles, role) {
					g.reject(w, http.StatusForbidden, "role", msgRole)
					return
				}
			}

			if p.OwnerParam != "" && ps.ByName(p.OwnerParam) != claims.Email {
				if role == "" {
					if role, ok = g.lookupRole(w, r, claims.Email); !ok {
						return
					}
					r = withRole(r, role)
				}
				if role != models.RoleAdmin {
					g.reject(w, http.StatusForbidden, "owner", msgRole)
					return
				}
			}

			next(w, r, ps)
		}
	}
}

func (g *Gate) authenticate(w http.ResponseWriter, r *http.Request) (*Claims, bool) {
	token, err := BearerToken(r)
	// Browsers cannot set headers on websocket upgrades.
	if errors.Is(err, ErrNoCredentials) && websocket.IsWebSocketUpgrade(r) {
		if q := r.URL.Query().Get("token"); q != "" {
			token, err = q, nil
		}
	}
	if errors.Is(err, ErrNoCredentials) {
		g.reject(w, http.StatusUnauthorized, "missing", msgNoCredentials)
		return nil, false
	}
	if err != nil {
		g.reject(w, http.StatusForbidden, "token", msgForbidden)
		return nil, false
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.log.Warn("token verification failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", utils.GetRequestID(r)),
			slog.Any("error", err))
		g.reject(w, http.StatusForbidden, "token", msgForbidden)
		return nil, false
	}
	if claims.Email == "" {
		g.reject(w, http.StatusForbidden, "token", msgForbidden)
		return nil, false
	}
	return claims, true
}

func (g *Gate) lookupRole(w http.ResponseWriter, r *http.Request, email string) (models.Role, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()

	role, err := g.roles.RoleByEmail(ctx, email)
	switch {
	case errors.Is(err, models.ErrNotFound):
		g.reject(w, http.StatusForbidden, "unknown_user", msgRole)
		return "", false
	case err != nil:
		g.log.Error("role lookup failed", slog.String("email", email), slog.Any("error", err))
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return "", false
	}
	return role.Effective(), true
}

func (g *Gate) reject(w http.ResponseWriter, code int, reason, msg string) {
	metrics.GateRejections.WithLabelValues(reason).Inc()
	utils.RespondWithError(w, code, msg)
}

func withRole(r *http.Request, role models.Role) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), globals.RoleKey, role))
}

// RequesterRole returns the role the gate resolved for r, or looks it up when
// the route's policy did not need one.
func RequesterRole(r *http.Request, roles RoleLookup) (models.Role, error) {
	if role, ok := r.Context().Value(globals.RoleKey).(models.Role); ok {
		return role, nil
	}
	email := utils.GetEmailFromRequest(r)
	if email == "" {
		return "", ErrNoCredentials
	}
	role, err := roles.RoleByEmail(r.Context(), email)
	if errors.Is(err, models.ErrNotFound) {
		return models.RoleStudent, nil
	}
	if err != nil {
		return "", err
	}
	return role.Effective(), nil
}

// ClaimsFromRequest returns the claims attached by the gate, or nil.
func ClaimsFromRequest(r *http.Request) *Claims {
	c, _ := r.Context().Value(globals.ClaimsKey).(*Claims)
	return c
}
