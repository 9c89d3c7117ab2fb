package printing

import (
	"context"
	"errors"
	"time"
)

// RenderRequest is one HTML document to print. Receipts are always portrait.
type RenderRequest struct {
	HTML      string
	PaperSize PaperSize
	Margins   Margins // millimeters
	Title     string  // used when HTML is a fragment
	Timeout   time.Duration
}

// RenderResult is a printed document
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer prints HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Rendering failure codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeTemplateFailed = "TEMPLATE_FAILED"
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderCanceled = "RENDER_CANCELED"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeEmptyDocument  = "EMPTY_DOCUMENT"
)

// RenderError is a coded rendering failure
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// ErrorCode returns the RenderError code in err's chain, or "" if there is none
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
