package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	tagsKey
)

// tags are the conversation identifiers attached to every log line of a
// message's handling
type tags struct {
	messageID  string
	landlordID string
}

func tagsFrom(ctx context.Context) tags {
	t, _ := ctx.Value(tagsKey).(tags)
	return t
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithMessageID tags the context with the inbound chat message id
func WithMessageID(ctx context.Context, messageID string) context.Context {
	t := tagsFrom(ctx)
	t.messageID = messageID
	return context.WithValue(ctx, tagsKey, t)
}

// WithLandlordID tags the context with the resolved landlord
func WithLandlordID(ctx context.Context, landlordID string) context.Context {
	t := tagsFrom(ctx)
	t.landlordID = landlordID
	return context.WithValue(ctx, tagsKey, t)
}

// MessageID returns the message id ctx was tagged with
func MessageID(ctx context.Context) string {
	return tagsFrom(ctx).messageID
}

// LandlordID returns the landlord id ctx was tagged with
func LandlordID(ctx context.Context) string {
	return tagsFrom(ctx).landlordID
}

// L returns the logger stored in ctx with the trace, message and landlord
// ids of ctx attached.
//
//	logger.L(ctx).Info("Payment recorded", zap.String("payment_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithLogger(ctx, FromContext(ctx))
}

// WithLogger attaches the ids of ctx to an explicit logger
func WithLogger(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	if fields := contextFields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.Stringer("trace_id", sc.TraceID()),
			zap.Stringer("span_id", sc.SpanID()),
		)
	}
	t := tagsFrom(ctx)
	if t.messageID != "" {
		fields = append(fields, zap.String("message_id", t.messageID))
	}
	if t.landlordID != "" {
		fields = append(fields, zap.String("landlord_id", t.landlordID))
	}
	return fields
}
