// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/blog"
	"inkwell/internal/handlers"
	"inkwell/internal/identity"
	"inkwell/internal/memstore"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// app is a fully wired router over the memory store.
type app struct {
	handler http.Handler
	store   *memstore.Store
	auth    *identity.Authority
	mr      *miniredis.Miniredis
}

func newApp(t *testing.T, writeLimit int) *app {
	t.Helper()
	st := memstore.New()
	auth := identity.New("router-test-secret", "inkwell")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := New(Deps{
		Posts:      handlers.NewPosts(blog.NewPostService(st.Posts(), st.Categories(), st.Users(), 0)),
		Categories: handlers.NewCategories(blog.NewCategoryService(st.Categories(), st.Posts(), st.Users())),
		Verifier:   auth,
		Users:      st.Users(),
		Limiter:    middleware.NewRateLimiter(client, writeLimit, time.Minute),
	})
	return &app{handler: h, store: st, auth: auth, mr: mr}
}

func (a *app) token(t *testing.T, username string, role models.Role, active bool) string {
	t.Helper()
	u, err := a.store.Users().Create(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: active,
	})
	require.NoError(t, err)
	tok, err := a.auth.Issue(u, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *app) do(t *testing.T, token, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:4711"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr, out
}

func TestEndToEndScenario(t *testing.T) {
	a := newApp(t, 100)
	admin := a.token(t, "admin", models.RoleAdmin, true)
	u := a.token(t, "u", models.RoleUser, true)
	v := a.token(t, "v", models.RoleUser, true)

	rr, got := a.do(t, admin, http.MethodPost, "/categories", `{"name":"Tech"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cat := got["category"].(map[string]any)
	assert.Equal(t, "tech", cat["slug"])

	rr, got = a.do(t, u, http.MethodPost, "/posts",
		`{"title":"Hello World","content":"short text","category":"`+cat["id"].(string)+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	post := got["post"].(map[string]any)
	id := post["id"].(string)
	assert.Equal(t, "hello-world", post["slug"])
	assert.Equal(t, "short text", post["excerpt"])
	assert.Equal(t, false, post["isPublished"])
	assert.EqualValues(t, 0, post["viewCount"])

	_, got = a.do(t, "", http.MethodGet, "/posts/hello-world", "")
	assert.EqualValues(t, 1, got["post"].(map[string]any)["viewCount"])
	_, got = a.do(t, "", http.MethodGet, "/posts/hello-world", "")
	assert.EqualValues(t, 2, got["post"].(map[string]any)["viewCount"])

	rr, _ = a.do(t, v, http.MethodPut, "/posts/"+id, `{"title":"Mine now"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = a.do(t, u, http.MethodPut, "/posts/"+id, `{"isPublished":true}`)
	require.Equal(t, http.StatusOK, rr.Code)

	_, got = a.do(t, "", http.MethodGet, "/posts", "")
	posts := got["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello World", posts[0].(map[string]any)["title"])
}

func TestMutationsRequireAuth(t *testing.T) {
	a := newApp(t, 100)
	inactive := a.token(t, "gone", models.RoleUser, false)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/categories"},
		{http.MethodPut, "/categories/00000000-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/categories/00000000-0000-0000-0000-000000000001"},
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/00000000-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/posts/00000000-0000-0000-0000-000000000001"},
		{http.MethodPost, "/posts/00000000-0000-0000-0000-000000000001/comments"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr, got := a.do(t, "", rt.method, rt.path, `{}`)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "No token, authorization denied", got["error"])

			rr, got = a.do(t, inactive, rt.method, rt.path, `{}`)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "User account is deactivated", got["error"])
		})
	}
}

func TestReadsArePublic(t *testing.T) {
	a := newApp(t, 100)

	for _, path := range []string{"/categories", "/posts", "/posts/search?q=go"} {
		rr, got := a.do(t, "", http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, true, got["success"], path)
	}
}

func TestWriteRateLimit(t *testing.T) {
	a := newApp(t, 2)
	admin := a.token(t, "admin", models.RoleAdmin, true)

	for _, name := range []string{"One", "Two"} {
		rr, _ := a.do(t, admin, http.MethodPost, "/categories", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, got := a.do(t, admin, http.MethodPost, "/categories", `{"name":"Three"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Too many requests", got["error"])

	// Reads are never throttled.
	rr, _ = a.do(t, "", http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWriteRateLimitFailsOpen(t *testing.T) {
	a := newApp(t, 1)
	admin := a.token(t, "admin", models.RoleAdmin, true)
	a.mr.Close()

	for _, name := range []string{"One", "Two", "Three"} {
		rr, _ := a.do(t, admin, http.MethodPost, "/categories", `{"name":"`+name+`"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
}

func TestInfrastructureRoutes(t *testing.T) {
	a := newApp(t, 100)

	rr, got := a.do(t, "", http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", got["status"])

	a.do(t, "", http.MethodGet, "/posts", "")
	rr, _ = a.do(t, "", http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "inkwell_http_requests_total")

	rr, got = a.do(t, "", http.MethodGet, "/nowhere/at/all", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route not found", got["error"])

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}
