// Package intent describes what a landlord asked for in a chat message,
// as extracted by the language model.
package intent

import (
	"errors"

	"github.com/rentbot/backend/internal/domain/rental"
)

// Action identifies what the landlord wants the bot to do
type Action string

const (
	ActionRecordPayment Action = "record_payment"
	ActionCheckStatus   Action = "check_status"
	ActionUnknown       Action = "unknown"
)

// IsValid checks if the action is one the bot understands
func (a Action) IsValid() bool {
	switch a {
	case ActionRecordPayment, ActionCheckStatus, ActionUnknown:
		return true
	}
	return false
}

// String returns the string representation of Action
func (a Action) String() string {
	return string(a)
}

// ErrMalformedExtraction means the extraction service answered, but not with
// a payload of the expected shape.
var ErrMalformedExtraction = errors.New("malformed extraction response")

// ExtractedIntent is produced fresh for every inbound message and discarded
// after use. Absent slots are nil.
type ExtractedIntent struct {
	Action     Action
	TenantName *string
	Amount     *int64
	Period     *rental.Period
}

// HasTenant reports whether a non-empty tenant name was extracted
func (i *ExtractedIntent) HasTenant() bool {
	return i.TenantName != nil && *i.TenantName != ""
}

// HasAmount reports whether a positive amount was extracted
func (i *ExtractedIntent) HasAmount() bool {
	return i.Amount != nil && *i.Amount > 0
}

// Tenant returns the tenant name or ""
func (i *ExtractedIntent) Tenant() string {
	if i.TenantName == nil {
		return ""
	}
	return *i.TenantName
}

// AmountOrZero returns the amount or 0
func (i *ExtractedIntent) AmountOrZero() int64 {
	if i.Amount == nil {
		return 0
	}
	return *i.Amount
}

// PeriodOr returns the extracted period, or def when none was extracted
func (i *ExtractedIntent) PeriodOr(def rental.Period) rental.Period {
	if i.Period == nil || *i.Period == "" {
		return def
	}
	return *i.Period
}
