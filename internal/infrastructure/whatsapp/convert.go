package whatsapp

import (
	"fmt"
	"strings"

	"github.com/rentbot/backend/internal/application/rentbot"
	"github.com/rentbot/backend/internal/domain/rental"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

// messageText returns the plain conversation text, the extended text or an
// image caption, in that order
func messageText(m *waE2E.Message) string {
	if m == nil {
		return ""
	}
	if t := m.GetConversation(); t != "" {
		return t
	}
	if t := m.GetExtendedTextMessage().GetText(); t != "" {
		return t
	}
	return m.GetImageMessage().GetCaption()
}

// senderAddress prefers the phone-number address when the sender is
// identified by a hidden LID
func senderAddress(src types.MessageSource) types.JID {
	sender := src.Sender
	if sender.Server == types.HiddenUserServer && !src.SenderAlt.IsEmpty() {
		sender = src.SenderAlt
	}
	return sender.ToNonAD()
}

// toInbound converts a whatsmeow message event. ok is false for events
// without a message payload.
func toInbound(evt *events.Message) (msg rentbot.InboundMessage, ok bool) {
	if evt == nil || evt.Message == nil {
		return rentbot.InboundMessage{}, false
	}
	return rentbot.InboundMessage{
		ID:        evt.Info.ID,
		From:      senderAddress(evt.Info.MessageSource).String(),
		Text:      messageText(evt.Message),
		IsGroup:   evt.Info.IsGroup,
		FromMe:    evt.Info.IsFromMe,
		Timestamp: evt.Info.Timestamp,
	}, true
}

// ToJID turns a phone number or a channel address into a user JID
func ToJID(address string) (types.JID, error) {
	address = strings.TrimSpace(address)
	if strings.Contains(address, "@") {
		jid, err := types.ParseJID(address)
		if err != nil {
			return types.EmptyJID, fmt.Errorf("invalid address %q: %w", address, err)
		}
		return jid.ToNonAD(), nil
	}

	phone := rental.NormalizePhone(address)
	if phone == "" {
		return types.EmptyJID, fmt.Errorf("invalid address %q: no phone number", address)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return types.EmptyJID, fmt.Errorf("invalid address %q: not a phone number", address)
		}
	}
	return types.NewJID(phone, types.DefaultUserServer), nil
}

func textMessage(text string) *waE2E.Message {
	return &waE2E.Message{Conversation: proto.String(text)}
}

func documentMessage(up whatsmeow.UploadResponse, doc rentbot.Document) *waE2E.Message {
	dm := &waE2E.DocumentMessage{
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
		Mimetype:      proto.String(doc.MimeType),
		FileName:      proto.String(doc.FileName),
		Title:         proto.String(doc.FileName),
	}
	if doc.Caption != "" {
		dm.Caption = proto.String(doc.Caption)
	}
	return &waE2E.Message{DocumentMessage: dm}
}
