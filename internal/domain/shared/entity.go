package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity shared by landlords, properties and tenants.
// Those rows are provisioned outside the bot and never change once created.
type BaseEntity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
