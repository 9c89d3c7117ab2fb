package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// BaseModel holds the id and creation time every rental table carries.
// Rows are append-only, so there is no updated_at or soft delete column.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an id to rows inserted without one
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
}
