// Package rentbot is the message pipeline of the rent bot: it resolves the
// sending landlord, asks the extractor what the landlord wants, records or
// looks up payments, and replies over the chat channel.
package rentbot

import (
	"context"
	"strings"
	"time"

	"github.com/rentbot/backend/internal/domain/intent"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const dedupeKeyPrefix = "rentbot:msg:"

// ServiceConfig holds the collaborators of the pipeline
type ServiceConfig struct {
	Landlords rental.LandlordRepository
	Tenants   rental.TenantRepository
	Payments  rental.PaymentRepository
	Extractor IntentExtractor
	Receipts  ReceiptSender
	Channel   Channel

	// Dedupe drops redelivered messages by channel message id. Nil disables it.
	Dedupe    shared.IdempotencyStore
	DedupeTTL time.Duration

	TenantMatch TenantMatchPolicy
	Currency    string
	Location    *time.Location
	Metrics     Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// Service runs the message pipeline
type Service struct {
	landlords   rental.LandlordRepository
	tenants     rental.TenantRepository
	payments    rental.PaymentRepository
	extractor   IntentExtractor
	receipts    ReceiptSender
	channel     Channel
	dedupe      shared.IdempotencyStore
	dedupeTTL   time.Duration
	tenantMatch TenantMatchPolicy
	currency    string
	location    *time.Location
	metrics     Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new Service
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		landlords:   cfg.Landlords,
		tenants:     cfg.Tenants,
		payments:    cfg.Payments,
		extractor:   cfg.Extractor,
		receipts:    cfg.Receipts,
		channel:     cfg.Channel,
		dedupe:      cfg.Dedupe,
		dedupeTTL:   cfg.DedupeTTL,
		tenantMatch: cfg.TenantMatch,
		currency:    cfg.Currency,
		location:    cfg.Location,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}

	if s.dedupeTTL <= 0 {
		s.dedupeTTL = shared.DefaultIdempotencyTTL
	}
	if !s.tenantMatch.IsValid() {
		s.tenantMatch = TenantMatchPrompt
	}
	if s.currency == "" {
		s.currency = rental.DefaultCurrency
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// HandleMessage processes one inbound message and sends the reply to its
// sender. Group messages, own messages and empty texts are ignored silently.
// It never panics and never returns an error: failures end in an apology
// reply, and a failed apology is only logged.
func (s *Service) HandleMessage(ctx context.Context, msg InboundMessage) {
	if msg.IsGroup || msg.FromMe || strings.TrimSpace(msg.Text) == "" {
		return
	}

	ctx = logger.WithContext(ctx, s.logger)
	ctx = logger.WithMessageID(ctx, msg.ID)
	log := logger.L(ctx).With(zap.String("from", rental.MaskPhone(msg.From)))

	if s.seenBefore(ctx, msg) {
		log.Info("Duplicate message ignored")
		s.metrics.ObserveMessage(string(OutcomeDuplicate), 0)
		return
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "rentbot", "handle_message",
		telemetry.AttrMessageID.String(msg.ID))
	defer span.End()

	log.Info("Message received", zap.String("text", msg.Text))

	start := s.now()
	reply, outcome := s.safeProcess(ctx, msg)
	s.metrics.ObserveMessage(string(outcome), s.now().Sub(start))
	telemetry.SetAttributes(span, telemetry.AttrOutcome.String(string(outcome)))

	if err := s.channel.SendText(ctx, msg.From, reply); err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to send reply", zap.Error(err))
		if reply == replyApology {
			return
		}
		if err := s.channel.SendText(ctx, msg.From, replyApology); err != nil {
			log.Error("Failed to send apology", zap.Error(err))
		}
		return
	}

	log.Info("Replied", zap.String("outcome", string(outcome)), zap.String("reply", reply))
}

// Process runs the pipeline for one message and returns the reply text
// without sending it.
func (s *Service) Process(ctx context.Context, msg InboundMessage) string {
	reply, _ := s.safeProcess(ctx, msg)
	return reply
}

// seenBefore marks msg in the dedupe store and reports whether it was already there.
// Store failures let the message through.
func (s *Service) seenBefore(ctx context.Context, msg InboundMessage) bool {
	if s.dedupe == nil || msg.ID == "" {
		return false
	}
	fresh, err := s.dedupe.MarkProcessed(ctx, dedupeKeyPrefix+msg.ID, s.dedupeTTL)
	if err != nil {
		logger.L(ctx).Warn("Dedupe store unavailable, processing anyway", zap.Error(err))
		return false
	}
	return !fresh
}

func (s *Service) safeProcess(ctx context.Context, msg InboundMessage) (reply string, outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.L(ctx).Error("Panic while processing message",
				zap.Any("panic", r),
				zap.Stack("stacktrace"))
			reply, outcome = replyApology, OutcomeFailed
		}
	}()
	return s.process(ctx, msg)
}

func (s *Service) process(ctx context.Context, msg InboundMessage) (string, Outcome) {
	landlord, err := s.ResolveLandlord(ctx, msg.From)
	if err != nil {
		if isNotRegistered(err) {
			return replyNotRegistered(rental.NormalizePhone(msg.From)), OutcomeUnregistered
		}
		logger.L(ctx).Error("Landlord lookup failed", zap.Error(err))
		return replyDatabaseError, OutcomeDatabaseError
	}

	ctx = logger.WithLandlordID(ctx, landlord.ID.String())
	logger.L(ctx).Debug("Landlord resolved", zap.String("landlord", landlord.Name))

	extracted, err := s.extract(ctx, msg.Text)
	if err != nil {
		return replyNotUnderstood, OutcomeNotUnderstood
	}

	switch extracted.Action {
	case intent.ActionRecordPayment:
		return s.recordPayment(ctx, landlord, extracted, msg.ID)
	case intent.ActionCheckStatus:
		return s.checkStatus(ctx, landlord, extracted)
	default:
		return replyHelp, OutcomeUnknownAction
	}
}

func (s *Service) extract(ctx context.Context, text string) (*intent.ExtractedIntent, error) {
	start := s.now()
	extracted, err := s.extractor.Extract(ctx, text, s.currentPeriod())
	if err == nil && extracted == nil {
		err = intent.ErrMalformedExtraction
	}
	s.metrics.ObserveExtraction(s.now().Sub(start), err)

	if err != nil {
		logger.L(ctx).Warn("Intent extraction failed", zap.Error(err))
		return nil, err
	}

	logger.L(ctx).Debug("Intent extracted",
		zap.String("action", extracted.Action.String()),
		zap.String("tenant", extracted.Tenant()),
		zap.Int64("amount", extracted.AmountOrZero()))
	return extracted, nil
}

// currentPeriod is the month of now in the bot's time zone
func (s *Service) currentPeriod() rental.Period {
	return rental.PeriodOf(s.now().In(s.location))
}
