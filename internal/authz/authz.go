// Package authz holds the role and ownership checks shared by every
// resource handler.
package authz

import "carhive/api/internal/models"

// Identity is the authenticated actor resolved from a session credential.
type Identity struct {
	UserID string
	Role   models.UserRole
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.UserRoleAdmin
}

// Allowed reports whether the identity's role is one of required.
func Allowed(id Identity, required ...models.UserRole) bool {
	for _, role := range required {
		if id.Role == role {
			return true
		}
	}
	return false
}

// OwnerOrAdmin is the single mutation predicate for owned resources: the
// actor must own the resource or be an admin.
func OwnerOrAdmin(id Identity, ownerID string) bool {
	return id.UserID == ownerID || id.IsAdmin()
}

// BookingScope is the listing filter derived from an identity: admins see
// every booking, everyone else only their own.
type BookingScope struct {
	UserID string // empty means unrestricted
}

func ScopeFor(id Identity) BookingScope {
	if id.IsAdmin() {
		return BookingScope{}
	}
	return BookingScope{UserID: id.UserID}
}
