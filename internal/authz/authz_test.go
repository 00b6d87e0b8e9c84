package authz

import (
	"testing"

	"carhive/api/internal/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		id       Identity
		required []models.UserRole
		want     bool
	}{
		{"user in set", Identity{UserID: "u1", Role: models.UserRoleUser}, []models.UserRole{models.UserRoleUser, models.UserRoleAdmin}, true},
		{"admin in set", Identity{UserID: "a1", Role: models.UserRoleAdmin}, []models.UserRole{models.UserRoleAdmin}, true},
		{"user not in admin-only set", Identity{UserID: "u1", Role: models.UserRoleUser}, []models.UserRole{models.UserRoleAdmin}, false},
		{"empty set denies", Identity{UserID: "u1", Role: models.UserRoleUser}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.id, tt.required...); got != tt.want {
				t.Errorf("Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOwnerOrAdmin(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		ownerID string
		want    bool
	}{
		{"owner", Identity{UserID: "u1", Role: models.UserRoleUser}, "u1", true},
		{"admin non-owner", Identity{UserID: "a1", Role: models.UserRoleAdmin}, "u1", true},
		{"stranger", Identity{UserID: "u2", Role: models.UserRoleUser}, "u1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OwnerOrAdmin(tt.id, tt.ownerID); got != tt.want {
				t.Errorf("OwnerOrAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScopeFor(t *testing.T) {
	admin := ScopeFor(Identity{UserID: "a1", Role: models.UserRoleAdmin})
	if admin.UserID != "" {
		t.Errorf("admin scope should be unrestricted, got %q", admin.UserID)
	}

	user := ScopeFor(Identity{UserID: "u1", Role: models.UserRoleUser})
	if user.UserID != "u1" {
		t.Errorf("user scope = %q, want u1", user.UserID)
	}
}
