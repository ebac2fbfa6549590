// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/identity"
	"inkwell/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey contextKey = "principal"

	// authFailureKey holds why a presented token was rejected.
	authFailureKey contextKey = "auth_failure"
)

// Authentication failure messages.
const (
	msgNoToken     = "No token, authorization denied"
	msgInvalid     = "Invalid token"
	msgExpired     = "Token expired"
	msgUnknownUser = "User not found"
	msgInactive    = "User account is deactivated"
)

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(raw string) (*models.Principal, error)
}

// UserFinder looks up the account a token names.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate verifies the bearer token, if any, and stores the principal
// in the request context. The principal's role is taken from the stored
// account, which must exist and be active. This middleware does NOT
// enforce authentication; a rejected token is remembered for RequireAuth.
func Authenticate(verifier TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			p, failure := resolvePrincipal(r.Context(), verifier, users, raw)
			ctx := r.Context()
			if failure != "" {
				ctx = context.WithValue(ctx, authFailureKey, failure)
			} else {
				ctx = WithPrincipal(ctx, p)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolvePrincipal(ctx context.Context, verifier TokenVerifier, users UserFinder, raw string) (*models.Principal, string) {
	p, err := verifier.Verify(raw)
	if err != nil {
		if identity.IsExpired(err) {
			return nil, msgExpired
		}
		return nil, msgInvalid
	}

	u, err := users.FindByID(ctx, p.ID)
	if err != nil {
		slog.Error("authenticate: user lookup failed", "user_id", p.ID, "error", err)
		return nil, msgInvalid
	}
	if u == nil {
		return nil, msgUnknownUser
	}
	if !u.IsActive {
		return nil, msgInactive
	}
	return &models.Principal{ID: u.ID, Role: u.Role}, ""
}

// RequireAuth rejects requests without an authenticated principal with a
// JSON 401. Must be applied after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromCtx(r.Context()) == nil {
			msg, _ := r.Context().Value(authFailureKey).(string)
			if msg == "" {
				msg = msgNoToken
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PrincipalFromCtx extracts the authenticated principal from the request
// context. Returns nil if the request is anonymous.
func PrincipalFromCtx(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(PrincipalKey).(*models.Principal)
	return p
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
