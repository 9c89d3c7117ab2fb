package extraction

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/rentbot/backend/internal/domain/rental"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("system").Parse(promptSource))

type promptData struct {
	Period   string
	Year     string
	Currency string
}

// SystemPrompt renders the extraction instructions for the given month
func SystemPrompt(current rental.Period, currency string) (string, error) {
	if !current.IsValid() {
		return "", fmt.Errorf("invalid current period %q", current)
	}
	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Period:   current.String(),
		Year:     current.String()[:4],
		Currency: currency,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
