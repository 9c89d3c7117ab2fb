package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of pipeline spans
const TracerName = "rentbot"

// Span attribute keys
const (
	AttrMessageID  = attribute.Key("rentbot.message_id")
	AttrLandlordID = attribute.Key("rentbot.landlord_id")
	AttrTenantID   = attribute.Key("rentbot.tenant_id")
	AttrPaymentID  = attribute.Key("rentbot.payment_id")
	AttrAction     = attribute.Key("rentbot.intent.action")
	AttrPeriod     = attribute.Key("rentbot.period")
	AttrAmount     = attribute.Key("rentbot.amount")
	AttrOutcome    = attribute.Key("rentbot.outcome")
)

// ID renders an entity id as a span attribute
func ID(key attribute.Key, id uuid.UUID) attribute.KeyValue {
	return key.String(id.String())
}

// StartServiceSpan starts an internal span named {component}.{operation}.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "rentbot", "record_payment",
//		telemetry.ID(telemetry.AttrLandlordID, landlord.ID))
//	defer span.End()
func StartServiceSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// SetAttributes adds attrs to span. A nil span is ignored.
func SetAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// RecordError records err on span and marks the span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
