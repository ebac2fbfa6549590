// Package identity adapts HS256 bearer tokens to the Principal the blog
// services consume. Tokens carry the user id as subject and the role as a
// private claim; issuing them is an operator task (`inkwellctl token`).
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inkwell/internal/models"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is the lifetime of issued tokens when none is given.
const DefaultTTL = 24 * time.Hour

// Claims are the JWT claims inkwell issues and accepts.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authority issues and verifies tokens signed with a shared secret.
type Authority struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// New returns an Authority for secret. issuer is written to issued tokens
// and, when non-empty, required on verified ones.
func New(secret, issuer string) *Authority {
	return &Authority{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for u valid for ttl (DefaultTTL when zero).
func (a *Authority) Issue(u *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	jti, err := newJTI()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	now := a.now()
	claims := &Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and issuer of raw and returns the
// principal it names.
func (a *Authority) Verify(raw string) (*models.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return &models.Principal{ID: id, Role: role}, nil
}

// IsExpired reports whether err came from verifying an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// newJTI returns a random 128-bit token id.
func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
