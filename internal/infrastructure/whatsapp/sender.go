package whatsapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rentbot/backend/internal/application/rentbot"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

const defaultDocumentMime = "application/pdf"

// messenger is the part of *whatsmeow.Client used for sending
type messenger interface {
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	Upload(ctx context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error)
}

// Sender delivers text and documents
type Sender struct {
	wa messenger
}

var _ rentbot.Channel = (*Sender)(nil)

// SendText sends a plain text message
func (s *Sender) SendText(ctx context.Context, to, text string) error {
	jid, err := ToJID(to)
	if err != nil {
		return err
	}
	if _, err := s.wa.SendMessage(ctx, jid, textMessage(text)); err != nil {
		return fmt.Errorf("failed to send text to %s: %w", jid.User, err)
	}
	return nil
}

// SendDocument uploads doc and sends it as a document message
func (s *Sender) SendDocument(ctx context.Context, to string, doc rentbot.Document) error {
	if len(doc.Data) == 0 {
		return errors.New("document is empty")
	}
	jid, err := ToJID(to)
	if err != nil {
		return err
	}
	if doc.MimeType == "" {
		doc.MimeType = defaultDocumentMime
	}

	up, err := s.wa.Upload(ctx, doc.Data, whatsmeow.MediaDocument)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", doc.FileName, err)
	}
	if _, err := s.wa.SendMessage(ctx, jid, documentMessage(up, doc)); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", doc.FileName, jid.User, err)
	}
	return nil
}
