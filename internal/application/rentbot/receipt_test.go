package rentbot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fakePDF = []byte("%PDF-1.4 fake receipt")

type composerFixture struct {
	payments *MockPaymentRepository
	renderer *MockRenderer
	archive  *MockArchive
	channel  *fakeChannel
	tempDir  string
	details  *rental.ReceiptDetails
	composer *ReceiptComposer
}

func newComposerFixture(t *testing.T, withArchive bool) *composerFixture {
	t.Helper()
	paymentID := uuid.MustParse("3f2a9c1b-1111-4222-8333-444455556666")
	landlordID := uuid.New()

	f := &composerFixture{
		payments: new(MockPaymentRepository),
		renderer: new(MockRenderer),
		archive:  new(MockArchive),
		channel:  &fakeChannel{},
		tempDir:  t.TempDir(),
		details: &rental.ReceiptDetails{
			Payment: rental.Payment{
				ID:         paymentID,
				Amount:     500000,
				Period:     "2026-10",
				RecordedAt: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC),
				Method:     rental.PaymentMethodWhatsAppBot,
			},
			Tenant:   rental.Tenant{Name: "Kamau  Njoroge", Phone: "256711000111"},
			Property: rental.Property{Address: "Plot 12, Ntinda"},
			Landlord: rental.Landlord{
				BaseEntity: shared.BaseEntity{ID: landlordID},
				Name:       "Grace Auma",
				Phone:      landlordPhone,
				Email:      "grace@example.com",
			},
		},
	}

	cfg := ReceiptComposerConfig{
		Payments: f.payments,
		Renderer: f.renderer,
		Channel:  f.channel,
		TempDir:  f.tempDir,
		Location: time.UTC,
	}
	if withArchive {
		cfg.Archive = f.archive
	}
	f.composer = NewReceiptComposer(cfg)
	return f
}

func (f *composerFixture) tempFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Join(f.tempDir, e.Name()))
	}
	return names
}

func TestReceiptComposer_ComposeAndSend(t *testing.T) {
	f := newComposerFixture(t, false)
	id := f.details.Payment.ID
	f.payments.On("FindReceiptDetails", mock.Anything, id).Return(f.details, nil)

	var rendered *printing.RenderRequest
	f.renderer.On("Render", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(*printing.RenderRequest)
	}).Return(&printing.RenderResult{PDFData: fakePDF, PageCount: 1}, nil)

	err := f.composer.ComposeAndSend(context.Background(), id, "256711000111")
	require.NoError(t, err)

	require.NotNil(t, rendered)
	assert.Equal(t, printing.PaperSizeA4, rendered.PaperSize)
	assert.InDelta(t, 20*25.4/96, rendered.Margins.Top, 0.0001)
	assert.Contains(t, rendered.HTML, "Receipt No: 3F2A9C1B")
	assert.Contains(t, rendered.HTML, "UGX 500,000")
	assert.Contains(t, rendered.HTML, "15 October 2026")
	assert.Contains(t, rendered.HTML, "Cash/Mobile Money")
	assert.Contains(t, rendered.HTML, "grace@example.com")

	require.Len(t, f.channel.documents, 1)
	sent := f.channel.documents[0]
	assert.Equal(t, "256711000111", sent.To)
	assert.Equal(t, fakePDF, sent.Doc.Data)
	assert.Equal(t, "application/pdf", sent.Doc.MimeType)
	assert.Equal(t, "Receipt_Kamau_Njoroge_2026-10.pdf", sent.Doc.FileName)
	assert.Contains(t, sent.Doc.Caption, "Tenant: Kamau  Njoroge")
	assert.Contains(t, sent.Doc.Caption, "Amount: UGX 500,000")
	assert.Contains(t, sent.Doc.Caption, "Period: 2026-10")
	assert.Contains(t, sent.Doc.Caption, "Date: 15 October 2026")

	assert.Empty(t, f.tempFiles(t), "temp PDF must be removed")
}

func TestReceiptComposer_Archives(t *testing.T) {
	f := newComposerFixture(t, true)
	id := f.details.Payment.ID
	f.payments.On("FindReceiptDetails", mock.Anything, id).Return(f.details, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&printing.RenderResult{PDFData: fakePDF}, nil)
	wantKey := f.details.Landlord.ID.String() + "/2026-10/" + id.String() + ".pdf"
	f.archive.On("Archive", mock.Anything, wantKey, fakePDF).Return("s3://receipts/"+wantKey, nil).Once()

	require.NoError(t, f.composer.ComposeAndSend(context.Background(), id, "256711000111"))
	f.archive.AssertExpectations(t)
	assert.Len(t, f.channel.documents, 1)
}

func TestReceiptComposer_ArchiveFailureStillSends(t *testing.T) {
	f := newComposerFixture(t, true)
	id := f.details.Payment.ID
	f.payments.On("FindReceiptDetails", mock.Anything, id).Return(f.details, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&printing.RenderResult{PDFData: fakePDF}, nil)
	f.archive.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket missing"))

	require.NoError(t, f.composer.ComposeAndSend(context.Background(), id, "256711000111"))
	assert.Len(t, f.channel.documents, 1)
}

func TestReceiptComposer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		address string
		setup   func(f *composerFixture)
		wantErr error
	}{
		{
			name:    "no tenant phone",
			address: "",
			setup:   func(f *composerFixture) {},
		},
		{
			name:    "payment not found",
			address: "256711000111",
			setup: func(f *composerFixture) {
				f.payments.On("FindReceiptDetails", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
			},
			wantErr: shared.ErrNotFound,
		},
		{
			name:    "render fails",
			address: "256711000111",
			setup: func(f *composerFixture) {
				f.payments.On("FindReceiptDetails", mock.Anything, mock.Anything).Return(f.details, nil)
				f.renderer.On("Render", mock.Anything, mock.Anything).
					Return(nil, printing.NewRenderError(printing.ErrCodeRenderTimeout, "timed out", nil))
			},
		},
		{
			name:    "send fails",
			address: "256711000111",
			setup: func(f *composerFixture) {
				f.payments.On("FindReceiptDetails", mock.Anything, mock.Anything).Return(f.details, nil)
				f.renderer.On("Render", mock.Anything, mock.Anything).Return(&printing.RenderResult{PDFData: fakePDF}, nil)
				f.channel.sendErr = errors.New("not on whatsapp")
				f.channel.failNext = -1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newComposerFixture(t, false)
			tt.setup(f)

			err := f.composer.ComposeAndSend(context.Background(), f.details.Payment.ID, tt.address)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReceiptFailed)
			assert.Contains(t, err.Error(), "PDF generation failed")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, f.channel.documents)
			assert.Empty(t, f.tempFiles(t), "temp PDF must be removed")
		})
	}
}

func TestReceiptComposer_RenderErrorIsKept(t *testing.T) {
	f := newComposerFixture(t, false)
	f.payments.On("FindReceiptDetails", mock.Anything, mock.Anything).Return(f.details, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, printing.NewRenderError(printing.ErrCodeRenderFailed, "chrome crashed", nil))

	err := f.composer.ComposeAndSend(context.Background(), f.details.Payment.ID, "256711000111")

	var renderErr *printing.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, printing.ErrCodeRenderFailed, renderErr.Code)
}

func TestReceiptFileName(t *testing.T) {
	assert.Equal(t, "Receipt_Kamau_2026-10.pdf", ReceiptFileName("Kamau", "2026-10"))
	assert.Equal(t, "Receipt_Mary_Jane_Wanjiru_2026-01.pdf", ReceiptFileName(" Mary  Jane\tWanjiru ", "2026-01"))
}
