package auth

import (
	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

// CanMutate reports whether caller owns the record owned by owner.
func CanMutate(owner uuid.UUID, caller Identity) bool {
	return owner != uuid.Nil && owner == caller.ID
}

// RequireOwner returns an authorization error carrying message unless caller owns the record.
func RequireOwner(owner uuid.UUID, caller Identity, message string) error {
	if CanMutate(owner, caller) {
		return nil
	}
	return httpx.Authorization(message)
}
