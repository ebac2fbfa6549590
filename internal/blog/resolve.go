package blog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Resolve looks an entity up by a token that is either its identifier or its
// slug. Identifier-shaped tokens are tried as an id first and fall back to a
// slug lookup; the first match wins. Lookups return (nil, nil) on a miss.
// Returns models.ErrNotFound when neither lookup matches.
func Resolve[T any](
	ctx context.Context,
	token string,
	byID func(context.Context, uuid.UUID) (*T, error),
	bySlug func(context.Context, string) (*T, error),
) (*T, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrNotFound
	}

	if id, err := uuid.Parse(token); err == nil {
		v, err := byID(ctx, id)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}

	v, err := bySlug(ctx, token)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, models.ErrNotFound
	}
	return v, nil
}
