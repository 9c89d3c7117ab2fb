package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentModel_SourceMessageID(t *testing.T) {
	p := &rental.Payment{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		Amount:     500000,
		Period:     "2026-10",
		RecordedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
		Method:     rental.PaymentMethodWhatsAppBot,
	}

	var m PaymentModel
	m.FromDomain(p)
	assert.Nil(t, m.SourceMessageID, "empty message id is stored as NULL")

	p.SourceMessageID = "3EB0C767D26A"
	m.FromDomain(p)
	require.NotNil(t, m.SourceMessageID)
	assert.Equal(t, "3EB0C767D26A", *m.SourceMessageID)
	assert.Equal(t, p, m.ToDomain())
}

func TestPaymentModel_ReceiptDetails(t *testing.T) {
	landlord := &LandlordModel{BaseModel: BaseModel{ID: uuid.New()}, Name: "Grace", Phone: "256700123456"}
	property := &PropertyModel{BaseModel: BaseModel{ID: uuid.New()}, Address: "Plot 12", LandlordID: landlord.ID}
	tenant := &TenantModel{BaseModel: BaseModel{ID: uuid.New()}, Name: "Kamau", PropertyID: property.ID}
	payment := &PaymentModel{BaseModel: BaseModel{ID: uuid.New()}, TenantID: tenant.ID, Amount: 1, Period: "2026-10"}

	t.Run("incomplete chain", func(t *testing.T) {
		_, ok := payment.ReceiptDetails()
		assert.False(t, ok)

		payment.Tenant = tenant
		_, ok = payment.ReceiptDetails()
		assert.False(t, ok)
	})

	t.Run("complete chain", func(t *testing.T) {
		property.Landlord = landlord
		tenant.Property = property
		payment.Tenant = tenant

		d, ok := payment.ReceiptDetails()
		require.True(t, ok)
		assert.Equal(t, "Kamau", d.Tenant.Name)
		assert.Equal(t, "Plot 12", d.Property.Address)
		assert.Equal(t, "Grace", d.Landlord.Name)
		assert.Equal(t, rental.Period("2026-10"), d.Payment.Period)
	})
}

func TestBaseModel_BeforeCreate(t *testing.T) {
	var m LandlordModel
	require.NoError(t, m.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, m.ID)

	id := uuid.New()
	m = LandlordModel{BaseModel: BaseModel{ID: id}}
	require.NoError(t, m.BeforeCreate(nil))
	assert.Equal(t, id, m.ID, "explicit ids are kept")
}

func TestLandlordModel_RoundTrip(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l := &rental.Landlord{Name: "Grace Auma", Phone: "256700123456", Email: "grace@example.com"}
	l.ID = uuid.New()
	l.CreatedAt = created

	var m LandlordModel
	m.FromDomain(l)
	assert.Equal(t, l.ID, m.ID)
	assert.Equal(t, created, m.CreatedAt)
	assert.Equal(t, l, m.ToDomain())
}
