package rental

import (
	"context"

	"github.com/google/uuid"
)

// LandlordRepository defines read access to landlords
type LandlordRepository interface {
	// FindByPhone finds a landlord by canonical phone.
	// Returns shared.ErrNotFound when no landlord is registered for it.
	FindByPhone(ctx context.Context, phone string) (*Landlord, error)
}

// TenantRepository defines landlord-scoped read access to tenants
type TenantRepository interface {
	// SearchByName returns tenants on the landlord's properties whose name
	// contains fragment, case-insensitively. Zero matches is not an error.
	SearchByName(ctx context.Context, landlordID uuid.UUID, fragment string) ([]Tenant, error)
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	// Create inserts a new payment row
	Create(ctx context.Context, payment *Payment) error
	// FindForPeriod finds the payment for a tenant and period.
	// Returns shared.ErrNotFound when the tenant has not paid.
	FindForPeriod(ctx context.Context, tenantID uuid.UUID, period Period) (*Payment, error)
	// FindReceiptDetails loads payment, tenant, property and landlord.
	// Returns shared.ErrNotFound for an unknown payment ID.
	FindReceiptDetails(ctx context.Context, paymentID uuid.UUID) (*ReceiptDetails, error)
}
