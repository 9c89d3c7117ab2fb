package rental

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/shared"
)

// PaymentMethod tags where a payment record came from
type PaymentMethod string

const (
	PaymentMethodWhatsAppBot PaymentMethod = "whatsapp_bot" // recorded from a chat message
	PaymentMethodManual      PaymentMethod = "manual"       // entered by hand
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodWhatsAppBot, PaymentMethodManual:
		return true
	}
	return false
}

// Label returns the human label printed on receipts
func (m PaymentMethod) Label() string {
	if m == PaymentMethodWhatsAppBot {
		return "Cash/Mobile Money"
	}
	return "Manual Entry"
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is a recorded rent transaction. Payments are created once and
// never updated or deleted by the bot.
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	TenantID        uuid.UUID     `json:"tenant_id"`
	Amount          int64         `json:"amount"` // whole currency units
	Period          Period        `json:"period"`
	RecordedAt      time.Time     `json:"recorded_at"`
	Method          PaymentMethod `json:"payment_method"`
	SourceMessageID string        `json:"source_message_id,omitempty"`
}

// NewPayment creates a payment for a tenant
func NewPayment(tenantID uuid.UUID, amount int64, period Period, method PaymentMethod, recordedAt time.Time) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Payment period must be YYYY-MM")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}
	return &Payment{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Amount:     amount,
		Period:     period,
		RecordedAt: recordedAt,
		Method:     method,
	}, nil
}

// ReceiptNumber is the short identifier printed on the receipt
func (p *Payment) ReceiptNumber() string {
	return strings.ToUpper(p.ID.String()[:8])
}

// ReceiptDetails is a payment joined with everything a receipt shows
type ReceiptDetails struct {
	Payment  Payment
	Tenant   Tenant
	Property Property
	Landlord Landlord
}
