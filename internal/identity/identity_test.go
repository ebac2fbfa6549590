package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	a := New("test-secret", "inkwell")
	u := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	token, err := a.Issue(u, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	p, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.True(t, p.IsAdmin())
}

func TestVerifyRejects(t *testing.T) {
	a := New("test-secret", "inkwell")
	u := &models.User{ID: uuid.New(), Role: models.RoleUser}

	valid, err := a.Issue(u, time.Hour)
	require.NoError(t, err)

	otherSecret, err := New("other-secret", "inkwell").Issue(u, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := New("test-secret", "someone-else").Issue(u, time.Hour)
	require.NoError(t, err)

	past := New("test-secret", "inkwell")
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := past.Issue(u, time.Hour)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    "inkwell",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "inkwell",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             "user",
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID.String(), Issuer: "inkwell"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"expired":      expired,
		"unknown role": badRole,
		"bad subject":  badSubject,
		"no expiry":    noExpiry,
		"tampered":     valid + "A",
	}
	_, err = a.Verify(expired)
	assert.True(t, IsExpired(err))
	_, err = a.Verify(otherSecret)
	assert.False(t, IsExpired(err))

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(token)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestIssueDefaultTTL(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := New("s", "")
	a.now = func() time.Time { return fixed }

	token, err := a.Issue(&models.User{ID: uuid.New(), Role: models.RoleUser}, 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(DefaultTTL), claims.ExpiresAt.Time.UTC())
	assert.NotEmpty(t, claims.ID)
}
