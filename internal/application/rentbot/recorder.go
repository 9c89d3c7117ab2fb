package rentbot

import (
	"context"

	"github.com/rentbot/backend/internal/domain/intent"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RecordPayment stores the payment described by a record_payment intent,
// triggers the tenant's receipt and returns the reply for the landlord.
// A failed receipt never undoes the stored payment.
func (s *Service) RecordPayment(ctx context.Context, landlord *rental.Landlord, in *intent.ExtractedIntent, messageID string) string {
	reply, _ := s.recordPayment(ctx, landlord, in, messageID)
	return reply
}

func (s *Service) recordPayment(ctx context.Context, landlord *rental.Landlord, in *intent.ExtractedIntent, messageID string) (string, Outcome) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rentbot", "record_payment",
		telemetry.ID(telemetry.AttrLandlordID, landlord.ID))
	defer span.End()

	if !in.HasTenant() || !in.HasAmount() {
		return replyMissingPaymentFields, OutcomeMissingFields
	}

	tenant, reply, outcome := s.selectTenant(ctx, landlord, in.Tenant())
	if tenant == nil {
		return reply, outcome
	}

	period := in.PeriodOr(s.currentPeriod())
	payment, err := rental.NewPayment(tenant.ID, in.AmountOrZero(), period, rental.PaymentMethodWhatsAppBot, s.now())
	if err != nil {
		logger.L(ctx).Warn("Rejected payment", zap.Error(err))
		return replyRecordFailed, OutcomeRecordFailed
	}
	payment.SourceMessageID = messageID

	if err := s.payments.Create(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Payment insert failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
		return replyRecordFailed, OutcomeRecordFailed
	}

	telemetry.SetAttributes(span,
		telemetry.ID(telemetry.AttrPaymentID, payment.ID),
		telemetry.ID(telemetry.AttrTenantID, tenant.ID),
		telemetry.AttrAmount.Int64(payment.Amount),
		telemetry.AttrPeriod.String(string(payment.Period)))
	logger.L(ctx).Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tenant", tenant.Name),
		zap.Int64("amount", payment.Amount),
		zap.String("period", string(payment.Period)))

	amount := rental.FormatAmount(payment.Amount)

	start := s.now()
	err = s.receipts.ComposeAndSend(ctx, payment.ID, tenant.Phone)
	s.metrics.ObserveReceipt(s.now().Sub(start), err)
	if err != nil {
		logger.L(ctx).Error("Receipt failed after payment was recorded",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
		return replyReceiptFailed(amount, s.currency, tenant.Name, payment.Period), OutcomeReceiptFailed
	}

	return replyPaymentRecorded(amount, s.currency, tenant.Name, payment.Period, tenant.Phone), OutcomePaymentRecorded
}
