package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/rental"
)

// LandlordModel is the persistence model for the Landlord domain entity.
type LandlordModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null"`
	Phone string `gorm:"type:varchar(32);not null;uniqueIndex:idx_landlords_phone"`
	Email string `gorm:"type:varchar(200);not null;default:''"`
}

// TableName returns the table name for GORM
func (LandlordModel) TableName() string {
	return "landlords"
}

// ToDomain converts the persistence model to a domain Landlord entity.
func (m *LandlordModel) ToDomain() *rental.Landlord {
	return &rental.Landlord{
		BaseEntity: m.BaseModel.entity(),
		Name:       m.Name,
		Phone:      m.Phone,
		Email:      m.Email,
	}
}

// FromDomain populates the persistence model from a domain Landlord entity.
func (m *LandlordModel) FromDomain(l *rental.Landlord) {
	m.setEntity(l.BaseEntity)
	m.Name = l.Name
	m.Phone = l.Phone
	m.Email = l.Email
}

// PropertyModel is the persistence model for the Property domain entity.
type PropertyModel struct {
	BaseModel
	Address    string         `gorm:"type:text;not null"`
	LandlordID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Landlord   *LandlordModel `gorm:"foreignKey:LandlordID"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property entity.
func (m *PropertyModel) ToDomain() *rental.Property {
	return &rental.Property{
		BaseEntity: m.BaseModel.entity(),
		Address:    m.Address,
		LandlordID: m.LandlordID,
	}
}

// FromDomain populates the persistence model from a domain Property entity.
func (m *PropertyModel) FromDomain(p *rental.Property) {
	m.setEntity(p.BaseEntity)
	m.Address = p.Address
	m.LandlordID = p.LandlordID
}

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	BaseModel
	Name       string         `gorm:"type:varchar(200);not null"`
	Phone      string         `gorm:"type:varchar(32);not null;default:''"`
	PropertyID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Property   *PropertyModel `gorm:"foreignKey:PropertyID"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *rental.Tenant {
	return &rental.Tenant{
		BaseEntity: m.BaseModel.entity(),
		Name:       m.Name,
		Phone:      m.Phone,
		PropertyID: m.PropertyID,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *rental.Tenant) {
	m.setEntity(t.BaseEntity)
	m.Name = t.Name
	m.Phone = t.Phone
	m.PropertyID = t.PropertyID
}

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	BaseModel
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_payments_tenant_period,priority:1"`
	Amount          int64                `gorm:"not null"`
	Period          string               `gorm:"type:char(7);not null;index:idx_payments_tenant_period,priority:2"`
	RecordedAt      time.Time            `gorm:"not null"`
	PaymentMethod   rental.PaymentMethod `gorm:"type:varchar(20);not null;default:'whatsapp_bot'"`
	SourceMessageID *string              `gorm:"type:varchar(128)"`
	Tenant          *TenantModel         `gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *rental.Payment {
	p := &rental.Payment{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Amount:     m.Amount,
		Period:     rental.Period(m.Period),
		RecordedAt: m.RecordedAt,
		Method:     m.PaymentMethod,
	}
	if m.SourceMessageID != nil {
		p.SourceMessageID = *m.SourceMessageID
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *rental.Payment) {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.Amount = p.Amount
	m.Period = p.Period.String()
	m.RecordedAt = p.RecordedAt
	m.PaymentMethod = p.Method
	m.SourceMessageID = nil
	if p.SourceMessageID != "" {
		id := p.SourceMessageID
		m.SourceMessageID = &id
	}
}

// ReceiptDetails converts a payment loaded with Tenant.Property.Landlord
// into the joined domain view. It returns false when any link is missing.
func (m *PaymentModel) ReceiptDetails() (*rental.ReceiptDetails, bool) {
	if m.Tenant == nil || m.Tenant.Property == nil || m.Tenant.Property.Landlord == nil {
		return nil, false
	}
	return &rental.ReceiptDetails{
		Payment:  *m.ToDomain(),
		Tenant:   *m.Tenant.ToDomain(),
		Property: *m.Tenant.Property.ToDomain(),
		Landlord: *m.Tenant.Property.Landlord.ToDomain(),
	}, true
}

// RentalModels lists the models in dependency order, for AutoMigrate in tests
func RentalModels() []any {
	return []any{&LandlordModel{}, &PropertyModel{}, &TenantModel{}, &PaymentModel{}}
}
