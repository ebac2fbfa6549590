// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, models.RoleAdmin)

	if u.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role: got %q, want %q", u.Role, models.RoleAdmin)
	}
	if u.ProfileImage != models.DefaultProfileImage {
		t.Errorf("profile image: got %q, want %q", u.ProfileImage, models.DefaultProfileImage)
	}
	if !u.IsActive {
		t.Error("expected active user")
	}
}

func TestUserStoreFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	user, err := s.FindByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("FindByID (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created := testUser(t, db, models.RoleUser)

	user, err = s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if user == nil || user.Username != created.Username {
		t.Fatalf("FindByID: got %+v, want %s", user, created.Username)
	}

	user, err = s.FindByUsername(ctx, strings.ToUpper(created.Username))
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if user == nil || user.ID != created.ID {
		t.Errorf("FindByUsername should ignore case")
	}

	other := testUser(t, db, models.RoleUser)
	users, err := s.FindByIDs(ctx, []uuid.UUID{created.ID, other.ID, uuid.New()})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("FindByIDs: got %d users, want 2", len(users))
	}

	none, err := s.FindByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("FindByIDs(nil): got %v, %v", none, err)
	}
}

func TestUserStoreDuplicateUsername(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	existing := testUser(t, db, models.RoleUser)

	_, err := s.Create(context.Background(), &models.User{
		Username: strings.ToUpper(existing.Username),
		Email:    "other-" + existing.Email,
	})
	if !errors.Is(err, models.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}
