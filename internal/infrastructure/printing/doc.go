// Package printing renders rent receipts to PDF.
//
// ReceiptTemplate turns a ReceiptView into a complete HTML document from an
// embedded layout, and ChromedpRenderer prints that document through a
// headless Chrome launched for the duration of a single Render call:
//
//	renderer := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	html, _ := MustReceiptTemplate().Render(view)
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:      html,
//	    PaperSize: PaperSizeA4,
//	    Margins:   PixelMargins(20),
//	})
package printing
