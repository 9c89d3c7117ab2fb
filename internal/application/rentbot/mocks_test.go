package rentbot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentbot/backend/internal/domain/intent"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Repositories
// =============================================================================

type MockLandlordRepository struct {
	mock.Mock
}

func (m *MockLandlordRepository) FindByPhone(ctx context.Context, phone string) (*rental.Landlord, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Landlord), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) SearchByName(ctx context.Context, landlordID uuid.UUID, fragment string) ([]rental.Tenant, error) {
	args := m.Called(ctx, landlordID, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rental.Tenant), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *rental.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, period rental.Period) (*rental.Payment, error) {
	args := m.Called(ctx, tenantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindReceiptDetails(ctx context.Context, paymentID uuid.UUID) (*rental.ReceiptDetails, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ReceiptDetails), args.Error(1)
}

// =============================================================================
// Pipeline collaborators
// =============================================================================

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, text string, currentPeriod rental.Period) (*intent.ExtractedIntent, error) {
	args := m.Called(ctx, text, currentPeriod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intent.ExtractedIntent), args.Error(1)
}

type MockReceiptSender struct {
	mock.Mock
}

func (m *MockReceiptSender) ComposeAndSend(ctx context.Context, paymentID uuid.UUID, tenantAddress string) error {
	args := m.Called(ctx, paymentID, tenantAddress)
	return args.Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.RenderResult), args.Error(1)
}

func (m *MockRenderer) Close() error {
	return m.Called().Error(0)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Archive(ctx context.Context, key string, pdf []byte) (string, error) {
	args := m.Called(ctx, key, pdf)
	return args.String(0), args.Error(1)
}

// fakeChannel records outbound traffic. The next failNext sends fail with
// sendErr; failNext < 0 fails every send.
type fakeChannel struct {
	mu        sync.Mutex
	texts     []sentText
	documents []sentDocument
	sendErr   error
	failNext  int
	attempts  int
}

func (c *fakeChannel) fail() error {
	c.attempts++
	if c.failNext == 0 {
		return nil
	}
	if c.failNext > 0 {
		c.failNext--
	}
	return c.sendErr
}

type sentText struct {
	To   string
	Text string
}

type sentDocument struct {
	To  string
	Doc Document
}

func (c *fakeChannel) SendText(_ context.Context, to, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(); err != nil {
		return err
	}
	c.texts = append(c.texts, sentText{To: to, Text: text})
	return nil
}

func (c *fakeChannel) SendDocument(_ context.Context, to string, doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail(); err != nil {
		return err
	}
	c.documents = append(c.documents, sentDocument{To: to, Doc: doc})
	return nil
}

// memoryDedupe is a minimal idempotency store
type memoryDedupe struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMemoryDedupe() *memoryDedupe {
	return &memoryDedupe{keys: map[string]bool{}}
}

func (d *memoryDedupe) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func (d *memoryDedupe) IsProcessed(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.keys[key], d.err
}

func (d *memoryDedupe) Close() error { return nil }

// recordingMetrics captures message outcomes
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	receipts []error
}

func (r *recordingMetrics) ObserveMessage(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) ObserveExtraction(time.Duration, error) {}

func (r *recordingMetrics) ObserveReceipt(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, err)
}
