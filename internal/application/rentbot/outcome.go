package rentbot

// Outcome classifies how a message was handled; it labels metrics and spans
type Outcome string

const (
	OutcomeDuplicate       Outcome = "duplicate"
	OutcomeUnregistered    Outcome = "unregistered"
	OutcomeDatabaseError   Outcome = "database_error"
	OutcomeNotUnderstood   Outcome = "not_understood"
	OutcomeUnknownAction   Outcome = "unknown_action"
	OutcomeMissingFields   Outcome = "missing_fields"
	OutcomeTenantNotFound  Outcome = "tenant_not_found"
	OutcomeAmbiguousTenant Outcome = "ambiguous_tenant"
	OutcomeRecordFailed    Outcome = "record_failed"
	OutcomeReceiptFailed   Outcome = "receipt_failed"
	OutcomePaymentRecorded Outcome = "payment_recorded"
	OutcomePaid            Outcome = "paid"
	OutcomeNotPaid         Outcome = "not_paid"
	OutcomeFailed          Outcome = "failed"
)
