package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLandlordRepository implements rental.LandlordRepository using GORM
type GormLandlordRepository struct {
	db *gorm.DB
}

// NewGormLandlordRepository creates a new GormLandlordRepository
func NewGormLandlordRepository(db *gorm.DB) *GormLandlordRepository {
	return &GormLandlordRepository{db: db}
}

// FindByPhone finds a landlord by canonical phone number
func (r *GormLandlordRepository) FindByPhone(ctx context.Context, phone string) (*rental.Landlord, error) {
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}
	var model models.LandlordModel
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("landlord")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormTenantRepository implements rental.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// SearchByName returns the landlord's tenants whose name contains fragment,
// case-insensitively, oldest first. LIKE wildcards in fragment match literally.
func (r *GormTenantRepository) SearchByName(ctx context.Context, landlordID uuid.UUID, fragment string) ([]rental.Tenant, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}

	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	var rows []models.TenantModel
	err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Joins("JOIN properties ON properties.id = tenants.property_id").
		Where("properties.landlord_id = ?", landlordID).
		Where(`LOWER(tenants.name) LIKE ? ESCAPE '\'`, pattern).
		Order("tenants.created_at ASC, tenants.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tenants := make([]rental.Tenant, len(rows))
	for i := range rows {
		tenants[i] = *rows[i].ToDomain()
	}
	return tenants, nil
}

// escapeLike escapes LIKE metacharacters with a backslash
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GormPaymentRepository implements rental.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment row
func (r *GormPaymentRepository) Create(ctx context.Context, payment *rental.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	if err := r.db.WithContext(ctx).Omit("Tenant").Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// FindForPeriod returns the latest payment a tenant recorded for period
func (r *GormPaymentRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, period rental.Period) (*rental.Payment, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period = ?", tenantID, period.String()).
		Order("recorded_at DESC, id DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("payment for period")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindReceiptDetails loads a payment with its tenant, property and landlord
func (r *GormPaymentRepository) FindReceiptDetails(ctx context.Context, paymentID uuid.UUID) (*rental.ReceiptDetails, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).
		Preload("Tenant.Property.Landlord").
		Where("id = ?", paymentID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("payment")
		}
		return nil, err
	}

	details, ok := model.ReceiptDetails()
	if !ok {
		return nil, fmt.Errorf("payment %s has an incomplete tenant/property/landlord chain", paymentID)
	}
	return details, nil
}

var (
	_ rental.LandlordRepository = (*GormLandlordRepository)(nil)
	_ rental.TenantRepository   = (*GormTenantRepository)(nil)
	_ rental.PaymentRepository  = (*GormPaymentRepository)(nil)
)
