package printing

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/receipt.html
var templateFS embed.FS

const receiptTemplatePath = "templates/receipt.html"

// ReceiptView is the pre-formatted data shown on a rent receipt
type ReceiptView struct {
	ReceiptNo       string
	Currency        string
	Amount          string
	TenantName      string
	PropertyAddress string
	Period          string
	PaymentDate     string
	PaymentMethod   string
	LandlordName    string
	LandlordPhone   string
	LandlordEmail   string // optional
}

// ReceiptTemplate renders ReceiptView values into a complete HTML document
type ReceiptTemplate struct {
	tmpl *template.Template
}

// NewReceiptTemplate parses the embedded receipt layout
func NewReceiptTemplate() (*ReceiptTemplate, error) {
	tmpl, err := template.ParseFS(templateFS, receiptTemplatePath)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse receipt template", err)
	}
	return &ReceiptTemplate{tmpl: tmpl}, nil
}

// MustReceiptTemplate is NewReceiptTemplate that panics on error
func MustReceiptTemplate() *ReceiptTemplate {
	t, err := NewReceiptTemplate()
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template; values are HTML-escaped
func (t *ReceiptTemplate) Render(view ReceiptView) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute receipt template", err)
	}
	return buf.String(), nil
}
