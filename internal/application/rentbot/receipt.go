package rentbot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/printing"
	"github.com/rentbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrReceiptFailed wraps every failure to produce or deliver a receipt
var ErrReceiptFailed = errors.New("PDF generation failed")

const (
	receiptMimeType = "application/pdf"
	receiptMarginPx = 20
)

// ReceiptComposerConfig holds the collaborators of the receipt composer
type ReceiptComposerConfig struct {
	Payments rental.PaymentRepository
	Template *printing.ReceiptTemplate
	Renderer printing.PDFRenderer
	Channel  Channel
	// Archive stores a copy of each receipt; nil disables archiving
	Archive  ReceiptArchive
	TempDir  string
	Currency string
	Location *time.Location
	Logger   *zap.Logger
}

// ReceiptComposer renders rent receipts and sends them to tenants
type ReceiptComposer struct {
	payments rental.PaymentRepository
	template *printing.ReceiptTemplate
	renderer printing.PDFRenderer
	channel  Channel
	archive  ReceiptArchive
	tempDir  string
	currency string
	location *time.Location
	logger   *zap.Logger
}

// NewReceiptComposer creates a new ReceiptComposer
func NewReceiptComposer(cfg ReceiptComposerConfig) *ReceiptComposer {
	c := &ReceiptComposer{
		payments: cfg.Payments,
		template: cfg.Template,
		renderer: cfg.Renderer,
		channel:  cfg.Channel,
		archive:  cfg.Archive,
		tempDir:  cfg.TempDir,
		currency: cfg.Currency,
		location: cfg.Location,
		logger:   cfg.Logger,
	}
	if c.template == nil {
		c.template = printing.MustReceiptTemplate()
	}
	if c.currency == "" {
		c.currency = rental.DefaultCurrency
	}
	if c.location == nil {
		c.location = time.Local
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// ComposeAndSend loads the payment, renders its receipt and sends the PDF to
// tenantAddress. Any failure is returned wrapped in ErrReceiptFailed.
func (c *ReceiptComposer) ComposeAndSend(ctx context.Context, paymentID uuid.UUID, tenantAddress string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "rentbot", "compose_receipt",
		telemetry.ID(telemetry.AttrPaymentID, paymentID))
	defer span.End()

	if err := c.composeAndSend(ctx, paymentID, tenantAddress); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("%w: %w", ErrReceiptFailed, err)
	}
	return nil
}

func (c *ReceiptComposer) composeAndSend(ctx context.Context, paymentID uuid.UUID, tenantAddress string) error {
	if strings.TrimSpace(tenantAddress) == "" {
		return errors.New("tenant has no phone number")
	}

	details, err := c.payments.FindReceiptDetails(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment %s: %w", paymentID, err)
	}

	view := c.buildView(details)
	html, err := c.template.Render(view)
	if err != nil {
		return err
	}

	result, err := c.renderer.Render(ctx, &printing.RenderRequest{
		HTML:      html,
		PaperSize: printing.PaperSizeA4,
		Margins:   printing.PixelMargins(receiptMarginPx),
		Title:     "Rent Receipt " + view.ReceiptNo,
	})
	if err != nil {
		return err
	}

	path, err := c.writeTemp(paymentID, result.PDFData)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("Failed to remove receipt temp file", zap.String("path", path), zap.Error(err))
		}
	}()

	pdf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read receipt file: %w", err)
	}

	c.archiveCopy(ctx, details, pdf)

	doc := Document{
		Data:     pdf,
		FileName: ReceiptFileName(details.Tenant.Name, details.Payment.Period),
		MimeType: receiptMimeType,
		Caption:  receiptCaption(view),
	}
	if err := c.channel.SendDocument(ctx, tenantAddress, doc); err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}

	logger.L(ctx).Info("Receipt sent",
		zap.String("payment_id", paymentID.String()),
		zap.String("to", rental.MaskPhone(tenantAddress)),
		zap.Int("bytes", len(pdf)))
	return nil
}

func (c *ReceiptComposer) buildView(d *rental.ReceiptDetails) printing.ReceiptView {
	return printing.ReceiptView{
		ReceiptNo:       d.Payment.ReceiptNumber(),
		Currency:        c.currency,
		Amount:          rental.FormatAmount(d.Payment.Amount),
		TenantName:      d.Tenant.Name,
		PropertyAddress: d.Property.Address,
		Period:          d.Payment.Period.String(),
		PaymentDate:     rental.FormatLongDate(d.Payment.RecordedAt.In(c.location)),
		PaymentMethod:   d.Payment.Method.Label(),
		LandlordName:    d.Landlord.Name,
		LandlordPhone:   d.Landlord.Phone,
		LandlordEmail:   d.Landlord.Email,
	}
}

func (c *ReceiptComposer) writeTemp(paymentID uuid.UUID, data []byte) (string, error) {
	f, err := os.CreateTemp(c.tempDir, "receipt_"+paymentID.String()+"_*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create receipt file: %w", err)
	}
	path := f.Name()

	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write receipt file: %w", err)
	}
	return path, nil
}

// archiveCopy stores the receipt when an archive is configured. Failures
// are logged; the tenant still gets the document.
func (c *ReceiptComposer) archiveCopy(ctx context.Context, d *rental.ReceiptDetails, pdf []byte) {
	if c.archive == nil {
		return
	}
	key := fmt.Sprintf("%s/%s/%s.pdf", d.Landlord.ID, d.Payment.Period, d.Payment.ID)
	location, err := c.archive.Archive(ctx, key, pdf)
	if err != nil {
		logger.L(ctx).Warn("Receipt archive failed", zap.String("key", key), zap.Error(err))
		return
	}
	logger.L(ctx).Debug("Receipt archived", zap.String("location", location))
}

// ReceiptFileName is the attachment name: Receipt_<Tenant_Name>_<period>.pdf
func ReceiptFileName(tenantName string, period rental.Period) string {
	return fmt.Sprintf("Receipt_%s_%s.pdf", strings.Join(strings.Fields(tenantName), "_"), period)
}

func receiptCaption(v printing.ReceiptView) string {
	return fmt.Sprintf("🧾 *Rent Receipt*\n\n"+
		"Tenant: %s\n"+
		"Amount: %s %s\n"+
		"Period: %s\n"+
		"Date: %s\n\n"+
		"Thank you for your payment!",
		v.TenantName, v.Currency, v.Amount, v.Period, v.PaymentDate)
}

var _ ReceiptSender = (*ReceiptComposer)(nil)
