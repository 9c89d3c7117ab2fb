package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpConfig configures the chromedp renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL points at a running Chrome's DevTools endpoint. When empty a
	// local headless browser is launched for every render.
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root, e.g. in containers
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpRenderer prints HTML through headless Chrome. Each Render call
// owns its browser: the allocator is created on entry and cancelled before
// Render returns, whatever the outcome.
type ChromedpRenderer struct {
	timeout   time.Duration
	remoteURL string
	noSandbox bool
	logger    *zap.Logger
}

// NewChromedpRenderer creates a new ChromedpRenderer
func NewChromedpRenderer(cfg *ChromedpConfig) *ChromedpRenderer {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	r := &ChromedpRenderer{
		timeout:   cfg.DefaultTimeout,
		remoteURL: cfg.RemoteURL,
		noSandbox: cfg.NoSandbox,
		logger:    cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = defaultChromeTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

func (r *ChromedpRenderer) newAllocator(parent context.Context) (context.Context, context.CancelFunc) {
	if r.remoteURL != "" {
		return chromedp.NewRemoteAllocator(parent, r.remoteURL)
	}
	return chromedp.NewExecAllocator(parent, r.allocatorOptions()...)
}

func validateRequest(req *RenderRequest) error {
	switch {
	case req == nil:
		return NewRenderError(ErrCodeInvalidRequest, "render request is nil", nil)
	case strings.TrimSpace(req.HTML) == "":
		return NewRenderError(ErrCodeInvalidRequest, "HTML content is empty", nil)
	case !req.PaperSize.IsValid():
		return NewRenderError(ErrCodeInvalidRequest, "invalid paper size "+string(req.PaperSize), nil)
	case !req.Margins.IsValid():
		return NewRenderError(ErrCodeInvalidRequest, "margins must not be negative", nil)
	}
	return nil
}

// Render prints req.HTML to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, allocCancel := r.newAllocator(ctx)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(r.logger.Sugar().Debugf),
		chromedp.WithErrorf(r.logger.Sugar().Debugf),
	)
	defer browserCancel()

	start := time.Now()
	doc := ensureDocument(req.HTML, req.Title)
	var pdf []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := printParams(req).Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, NewRenderError(ErrCodeRenderCanceled, "PDF rendering was canceled", err)
		}
		logger.WithLogger(ctx, r.logger).Error("Chrome rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome failed to print the receipt", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeEmptyDocument, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(start),
	}
	logger.WithLogger(ctx, r.logger).Debug("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// printParams maps a request onto Chrome's print settings, which are in inches
func printParams(req *RenderRequest) *page.PrintToPDFParams {
	width, height := req.PaperSize.Dimensions()
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPreferCSSPageSize(false).
		WithPaperWidth(mmToInches(width)).
		WithPaperHeight(mmToInches(height)).
		WithMarginTop(mmToInches(req.Margins.Top)).
		WithMarginRight(mmToInches(req.Margins.Right)).
		WithMarginBottom(mmToInches(req.Margins.Bottom)).
		WithMarginLeft(mmToInches(req.Margins.Left))
}

// ensureDocument wraps a fragment in a full UTF-8 document.
// Complete documents pass through unchanged.
func ensureDocument(body, title string) string {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return body
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="UTF-8"><title>%s</title></head><body>%s</body></html>`,
		html.EscapeString(title), body)
}

// Close is a no-op: no browser outlives a Render call
func (r *ChromedpRenderer) Close() error {
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// estimatePageCount counts page objects in the PDF body
func estimatePageCount(pdf []byte) int {
	// "/Type /Pages" also matches the "/Type /Page" prefix
	count := strings.Count(string(pdf), "/Type /Page") - strings.Count(string(pdf), "/Type /Pages")
	return max(count, 1)
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
