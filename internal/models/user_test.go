package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleUser, true},
		{RoleAdmin, true},
		{Role("editor"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestPrincipalIsAdmin(t *testing.T) {
	var nilPrincipal *Principal
	if nilPrincipal.IsAdmin() {
		t.Error("nil principal must not be admin")
	}
	if (&Principal{ID: uuid.New(), Role: RoleUser}).IsAdmin() {
		t.Error("user principal must not be admin")
	}
	if !(&Principal{ID: uuid.New(), Role: RoleAdmin}).IsAdmin() {
		t.Error("admin principal should be admin")
	}
}

func TestUserSummary(t *testing.T) {
	u := &User{
		ID:           uuid.New(),
		Username:     "ada",
		Email:        "ada@example.com",
		Name:         "Ada Lovelace",
		ProfileImage: DefaultProfileImage,
		Role:         RoleAdmin,
	}
	s := u.Summary()
	if s.ID != u.ID || s.Username != "ada" || s.Name != "Ada Lovelace" {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.ProfileImage != DefaultProfileImage {
		t.Errorf("profile image: got %q", s.ProfileImage)
	}
}
