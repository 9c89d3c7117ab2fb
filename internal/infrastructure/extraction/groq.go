// Package extraction turns landlord chat messages into structured intents
// using an OpenAI-compatible chat completions endpoint (Groq by default).
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rentbot/backend/internal/domain/intent"
	"github.com/rentbot/backend/internal/domain/rental"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/telemetry"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrUnavailable means the extraction service could not be reached or
// refused the request
var ErrUnavailable = errors.New("extraction service unavailable")

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 300
)

// Config configures the GroqExtractor
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Currency    string
	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// GroqExtractor implements intent extraction on a chat completions API
type GroqExtractor struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	currency    string
	logger      *zap.Logger
}

// NewGroqExtractor creates a new GroqExtractor
func NewGroqExtractor(cfg Config) (*GroqExtractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("extraction: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Currency == "" {
		cfg.Currency = rental.DefaultCurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &GroqExtractor{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		currency:    cfg.Currency,
		logger:      cfg.Logger.Named("extraction"),
	}, nil
}

// Extract asks the model for the intent of text. It makes exactly one call;
// there is no retry.
func (e *GroqExtractor) Extract(ctx context.Context, text string, currentPeriod rental.Period) (*intent.ExtractedIntent, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "extraction", "extract")
	defer span.End()

	system, err := SystemPrompt(currentPeriod, e.currency)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", intent.ErrMalformedExtraction)
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.L(ctx).Debug("Model response", zap.String("raw", raw), zap.Int("total_tokens", resp.Usage.TotalTokens))

	extracted, err := Decode(raw)
	if err != nil {
		telemetry.RecordError(span, err)
		e.logger.Warn("Malformed model response", zap.String("raw", raw), zap.Error(err))
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.AttrAction.String(extracted.Action.String()))
	return extracted, nil
}

// payload is the wire shape the model is instructed to return
type payload struct {
	Action     string       `json:"action" validate:"required,oneof=record_payment check_status unknown"`
	TenantName *string      `json:"tenant_name"`
	Amount     *json.Number `json:"amount"`
	Period     *string      `json:"period"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode strictly parses a model response. Unknown fields, a missing or
// unsupported action, a non-integral or negative amount and a period that is
// not YYYY-MM are all reported as intent.ErrMalformedExtraction.
func Decode(raw string) (*intent.ExtractedIntent, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", intent.ErrMalformedExtraction, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", intent.ErrMalformedExtraction)
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %w", intent.ErrMalformedExtraction, err)
	}

	out := &intent.ExtractedIntent{Action: intent.Action(p.Action)}

	if p.TenantName != nil {
		if name := strings.TrimSpace(*p.TenantName); name != "" {
			out.TenantName = &name
		}
	}

	if p.Amount != nil {
		amount, err := parseAmount(*p.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", intent.ErrMalformedExtraction, err)
		}
		out.Amount = &amount
	}

	if p.Period != nil && strings.TrimSpace(*p.Period) != "" {
		period, err := rental.ParsePeriod(strings.TrimSpace(*p.Period))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", intent.ErrMalformedExtraction, err)
		}
		out.Period = &period
	}

	return out, nil
}

// parseAmount accepts whole numbers, including "500000.0"
func parseAmount(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative amount %d", v)
		}
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", n.String())
	}
	if f < 0 || f != float64(int64(f)) {
		return 0, fmt.Errorf("amount %q is not a whole non-negative number", n.String())
	}
	return int64(f), nil
}
