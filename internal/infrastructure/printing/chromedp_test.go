package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(nil)

	assert.Equal(t, defaultChromeTimeout, r.timeout)
	assert.Empty(t, r.remoteURL)
	assert.NotNil(t, r.logger)
	assert.NoError(t, r.Close())
}

func TestPrintParams_ReceiptLayout(t *testing.T) {
	params := printParams(&RenderRequest{
		HTML:      "<html>test</html>",
		PaperSize: PaperSizeA4,
		Margins:   PixelMargins(20),
	})

	assert.InDelta(t, mmToInches(210), params.PaperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), params.PaperHeight, 0.01)
	// 20 CSS px is 20/96 inch
	assert.InDelta(t, 20.0/96.0, params.MarginTop, 0.0001)
	assert.InDelta(t, 20.0/96.0, params.MarginLeft, 0.0001)
	assert.False(t, params.Landscape)
	assert.True(t, params.PrintBackground)
}

func TestEnsureDocument(t *testing.T) {
	t.Run("complete document passes through", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, doc, ensureDocument(doc, "ignored"))
	})

	t.Run("fragment is wrapped with escaped title", func(t *testing.T) {
		out := ensureDocument("<p>hi</p>", "A & B")
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, `<meta charset="UTF-8">`)
		assert.Contains(t, out, "<title>A &amp; B</title>")
		assert.Contains(t, out, "<body><p>hi</p></body>")
	})
}

func TestChromedpRenderer_Render_Validation(t *testing.T) {
	r := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: time.Second})
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RenderRequest
	}{
		{"nil request", nil},
		{"empty html", &RenderRequest{HTML: "   ", PaperSize: PaperSizeA4}},
		{"bad paper size", &RenderRequest{HTML: "<p>x</p>", PaperSize: "B7"}},
		{"negative margin", &RenderRequest{HTML: "<p>x</p>", PaperSize: PaperSizeA4, Margins: Margins{Left: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Render(ctx, tt.req)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidRequest, ErrorCode(err))
		})
	}
}

func TestChromedpRenderer_Render_Unreachable(t *testing.T) {
	// nothing listens on port 1
	r := NewChromedpRenderer(&ChromedpConfig{
		RemoteURL:      "ws://127.0.0.1:1/devtools/browser/none",
		DefaultTimeout: 2 * time.Second,
	})

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "<p>x</p>", PaperSize: PaperSizeA4})
	require.Error(t, err)
	assert.NotEmpty(t, ErrorCode(err))
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
}
