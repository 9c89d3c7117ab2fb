package rental

import (
	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/shared"
)

// Landlord is the account holder that operates the bot over chat.
// Landlords are provisioned outside the bot and are read-only here.
type Landlord struct {
	shared.BaseEntity
	Name  string `json:"name"`
	Phone string `json:"phone"` // canonical digits, see NormalizePhone
	Email string `json:"email"`
}

// HasEmail reports whether the landlord has a contact email
func (l *Landlord) HasEmail() bool {
	return l.Email != ""
}

// Property is a rental unit or building owned by exactly one landlord
type Property struct {
	shared.BaseEntity
	Address    string    `json:"address"`
	LandlordID uuid.UUID `json:"landlord_id"`
}

// Tenant is a person whose rent payments are tracked
type Tenant struct {
	shared.BaseEntity
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	PropertyID uuid.UUID `json:"property_id"`
}
