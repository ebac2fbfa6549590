package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/backend"
	"inkwell/internal/config"
	"inkwell/internal/identity"
	"inkwell/internal/memstore"
	"inkwell/internal/models"
)

// memoryOpener returns an openFunc that always hands out the same
// in-memory store.
func memoryOpener() (openFunc, *memstore.Store, *config.Config) {
	ms := memstore.New()
	cfg := &config.Config{StoreDriver: config.DriverMemory, JWTSecret: "ctl-test-secret", JWTIssuer: "inkwell"}
	return func(context.Context) (*backend.Backend, *config.Config, error) {
		return backend.NewMemory(ms), cfg, nil
	}, ms, cfg
}

func execute(t *testing.T, open openFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandStructure(t *testing.T) {
	open, _, _ := memoryOpener()
	cmd := newRootCmd(open)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "user", "token"} {
		assert.True(t, names[want], "missing command: %s", want)
	}
}

func TestSeedAndToken(t *testing.T) {
	open, _, cfg := memoryOpener()

	out, err := execute(t, open, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seed complete")

	out, err = execute(t, open, "token", "ADMIN")
	require.NoError(t, err)

	p, err := identity.New(cfg.JWTSecret, cfg.JWTIssuer).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
}

func TestUserAdd(t *testing.T) {
	open, ms, _ := memoryOpener()

	out, err := execute(t, open, "user", "add", "carol", "--email", "carol@example.com", "--role", "admin", "--name", "Carol")
	require.NoError(t, err)
	assert.Contains(t, out, "created carol (admin)")

	u, err := ms.Users().FindByUsername(context.Background(), "carol")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Carol", u.Name)
	assert.True(t, u.IsActive)

	_, err = execute(t, open, "user", "add", "carol", "--email", "other@example.com")
	assert.Error(t, err, "duplicate username")
}

func TestUserAddValidation(t *testing.T) {
	open, _, _ := memoryOpener()

	_, err := execute(t, open, "user", "add", "dave", "--email", "dave@example.com", "--role", "root")
	assert.ErrorContains(t, err, "role must be")

	_, err = execute(t, open, "user", "add", "dave")
	assert.ErrorContains(t, err, "--email is required")
}

func TestTokenErrors(t *testing.T) {
	open, ms, _ := memoryOpener()

	_, err := execute(t, open, "token", "nobody")
	assert.ErrorContains(t, err, "not found")

	_, err = ms.Users().Create(context.Background(), &models.User{
		Username: "ghost", Email: "ghost@example.com", Role: models.RoleUser, IsActive: false,
	})
	require.NoError(t, err)
	_, err = execute(t, open, "token", "ghost")
	assert.ErrorContains(t, err, "deactivated")
}

func TestMigrateRequiresPostgres(t *testing.T) {
	open, _, _ := memoryOpener()

	for _, sub := range []string{"up", "status", "down"} {
		_, err := execute(t, open, "migrate", sub)
		assert.ErrorIs(t, err, backend.ErrNotPostgres, sub)
	}
}
