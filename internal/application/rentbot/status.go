package rentbot

import (
	"context"
	"errors"

	"github.com/rentbot/backend/internal/domain/intent"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckStatus answers whether a tenant has paid for a period (default: the
// current month). It never writes.
func (s *Service) CheckStatus(ctx context.Context, landlord *rental.Landlord, in *intent.ExtractedIntent) string {
	reply, _ := s.checkStatus(ctx, landlord, in)
	return reply
}

func (s *Service) checkStatus(ctx context.Context, landlord *rental.Landlord, in *intent.ExtractedIntent) (string, Outcome) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rentbot", "check_status",
		telemetry.ID(telemetry.AttrLandlordID, landlord.ID))
	defer span.End()

	if !in.HasTenant() {
		return replyMissingTenant, OutcomeMissingFields
	}

	tenant, reply, outcome := s.selectTenant(ctx, landlord, in.Tenant())
	if tenant == nil {
		return reply, outcome
	}

	period := in.PeriodOr(s.currentPeriod())
	payment, err := s.payments.FindForPeriod(ctx, tenant.ID, period)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return replyNotPaid(tenant.Name, period), OutcomeNotPaid
		}
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Payment lookup failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("period", string(period)),
			zap.Error(err))
		return replyDatabaseError, OutcomeDatabaseError
	}

	paidOn := rental.FormatShortDate(payment.RecordedAt.In(s.location))
	return replyPaid(tenant.Name, rental.FormatAmount(payment.Amount), s.currency, period, paidOn), OutcomePaid
}
