package rentbot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/intent"
	"github.com/rentbot/backend/internal/domain/rental"
)

// InboundMessage is one chat message delivered by the channel adapter
type InboundMessage struct {
	ID        string // channel message id, used as the dedupe key
	From      string // sender channel address
	Text      string // body, extended text or image caption
	IsGroup   bool
	FromMe    bool
	Timestamp time.Time
}

// Document is a file attachment sent over the channel
type Document struct {
	Data     []byte
	FileName string
	MimeType string
	Caption  string
}

// Channel sends outbound messages. Addresses may be raw phone numbers or
// channel addresses; the adapter normalizes them.
type Channel interface {
	SendText(ctx context.Context, to, text string) error
	SendDocument(ctx context.Context, to string, doc Document) error
}

// IntentExtractor turns free text into a structured intent.
// currentPeriod is the default for messages that name no month.
type IntentExtractor interface {
	Extract(ctx context.Context, text string, currentPeriod rental.Period) (*intent.ExtractedIntent, error)
}

// ReceiptSender renders and delivers the receipt for a recorded payment
type ReceiptSender interface {
	ComposeAndSend(ctx context.Context, paymentID uuid.UUID, tenantAddress string) error
}

// ReceiptArchive keeps a copy of every delivered receipt. Optional.
type ReceiptArchive interface {
	Archive(ctx context.Context, key string, pdf []byte) (location string, err error)
}

// Metrics receives pipeline observations
type Metrics interface {
	ObserveMessage(outcome string, d time.Duration)
	ObserveExtraction(d time.Duration, err error)
	ObserveReceipt(d time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveMessage(string, time.Duration)    {}
func (nopMetrics) ObserveExtraction(time.Duration, error) {}
func (nopMetrics) ObserveReceipt(time.Duration, error)    {}
