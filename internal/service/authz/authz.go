package authz

import (
	"github.com/google/uuid"

	"github.com/clinichq/clinic-api/internal/model"
)

// CanAccess is the single ownership policy for patient and appointment
// records. Admins and secretaries are unrestricted; a doctor may only touch
// records whose doctor id is their own. A record without an assigned doctor
// is visible to staff but owned by nobody.
func CanAccess(principal model.Principal, ownerID *uuid.UUID) bool {
	switch principal.Role {
	case model.RoleAdmin, model.RoleSecretary:
		return true
	case model.RoleDoctor:
		return ownerID != nil && *ownerID == principal.UserID
	}
	return false
}

// Owns is CanAccess for records with a mandatory owner.
func Owns(principal model.Principal, ownerID uuid.UUID) bool {
	return CanAccess(principal, &ownerID)
}
