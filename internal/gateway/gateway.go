// Package gateway calls external text-classification providers. Any
// OpenAI-compatible chat completions endpoint can serve as a provider; the
// compiled target type is sent as a strict structured-output schema.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/pkg/formatting"
)

// Request is a single classification call.
// Provider and Model fall back to the configured defaults when empty.
// APIKey overrides the provider's configured key.
type Request struct {
	Target   *compiler.TargetType
	Text     string
	Provider string
	Model    string
	APIKey   string
}

// Provider is the public view of a configured provider.
type Provider struct {
	Name         string   `json:"name"`
	DefaultModel string   `json:"default_model"`
	Models       []string `json:"models"`
	Default      bool     `json:"default"`
	Configured   bool     `json:"configured"`
}

// Gateway classifies text against a compiled target type.
type Gateway interface {
	Classify(ctx context.Context, req Request) (*Output, error)
	Providers() []Provider
}

// Output is the raw structured value a provider returned and where it came from.
// Value has not been validated against the target type.
type Output struct {
	Value    map[string]any
	Provider string
	Model    string
}

// Observer receives one call per provider attempt.
type Observer func(provider, model, outcome string, elapsed time.Duration)

type client struct {
	cfg      config.ClassifierConfig
	http     *http.Client
	logger   *slog.Logger
	observer Observer
}

// Option configures the gateway.
type Option func(*client)

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *client) { g.http = c }
}

// WithObserver registers an attempt observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(g *client) { g.observer = o }
}

// New creates a Gateway over the configured providers.
func New(cfg *config.ClassifierConfig, logger *slog.Logger, opts ...Option) Gateway {
	g := &client{
		cfg:    *cfg,
		http:   http.DefaultClient,
		logger: logger.With("system", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *client) Providers() []Provider {
	list := make([]Provider, 0, len(g.cfg.Providers))
	for _, p := range g.cfg.Providers {
		models := p.Models
		if len(models) == 0 {
			models = []string{p.DefaultModel}
		}
		list = append(list, Provider{
			Name:         p.Name,
			DefaultModel: p.DefaultModel,
			Models:       models,
			Default:      strings.EqualFold(p.Name, g.cfg.DefaultProvider),
			Configured:   p.Anonymous || p.APIKey != "",
		})
	}
	return list
}

func (g *client) Classify(ctx context.Context, req Request) (*Output, error) {
	if req.Target == nil {
		return nil, fmt.Errorf("%w: target type required", ErrGateway)
	}

	p, model, key, err := g.resolve(req)
	if err != nil {
		return nil, err
	}

	api := openai.NewClient(
		option.WithAPIKey(key),
		option.WithBaseURL(p.BaseURL),
		option.WithHTTPClient(g.http),
		option.WithMaxRetries(0),
	)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Target.Instructions),
			openai.UserMessage(req.Text),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName(req.Target.Name),
					Description: openai.String(req.Target.Instructions),
					Schema:      req.Target.JSONSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
		Temperature: openai.Float(0),
	}

	var value map[string]any
	attempt := 0

	err = retry.Do(
		func() error {
			attempt++
			v, err := g.call(ctx, &api, params, p.Name, model)
			if err != nil {
				g.logger.Warn("classifier attempt failed",
					"provider", p.Name, "model", model, "attempt", attempt, "error", err)
				return err
			}
			// Nonconforming output is retried while attempts remain; the last
			// one passes through so validation can report the violations.
			if cerr := req.Target.Check(v); cerr != nil && attempt <= g.cfg.MaxRetries {
				g.logger.Warn("classifier output does not match target schema",
					"provider", p.Name, "model", model, "attempt", attempt, "error", cerr)
				return &Error{
					Provider:  p.Name,
					Model:     model,
					Retryable: true,
					Err:       fmt.Errorf("%w: %w", ErrMalformedOutput, cerr),
				}
			}
			value = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(g.cfg.MaxRetries+1)),
		retry.Delay(g.cfg.RetryDelayDuration()),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrGateway) {
			return nil, ctxErr
		}
		return nil, err
	}

	g.logger.Info("classifier call completed",
		"provider", p.Name, "model", model, "target", req.Target.Name, "attempts", attempt)

	return &Output{Value: value, Provider: p.Name, Model: model}, nil
}

func (g *client) call(
	ctx context.Context,
	api *openai.Client,
	params openai.ChatCompletionNewParams,
	provider, model string,
) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.TimeoutDuration())
	defer cancel()

	start := time.Now()
	completion, err := api.Chat.Completions.New(callCtx, params)
	elapsed := time.Since(start)

	if err != nil {
		gwErr := g.mapError(ctx, callCtx, err, provider, model)
		g.observe(provider, model, outcome(gwErr), elapsed)
		return nil, gwErr
	}

	if len(completion.Choices) == 0 {
		g.observe(provider, model, "malformed", elapsed)
		return nil, &Error{
			Provider: provider,
			Model:    model,
			Err:      fmt.Errorf("%w: no choices returned", ErrMalformedOutput),
		}
	}

	content := completion.Choices[0].Message.Content
	value, err := formatting.Parse[map[string]any](content)
	if err != nil {
		g.observe(provider, model, "malformed", elapsed)
		return nil, &Error{
			Provider: provider,
			Model:    model,
			Err:      fmt.Errorf("%w: %w", ErrMalformedOutput, err),
		}
	}

	g.observe(provider, model, "ok", elapsed)
	return value, nil
}

func (g *client) mapError(parent, callCtx context.Context, err error, provider, model string) error {
	if parent.Err() != nil {
		return parent.Err()
	}

	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &Error{Provider: provider, Model: model, Retryable: true, Err: ErrTimeout}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Provider:   provider,
			Model:      model,
			StatusCode: apiErr.StatusCode,
			Retryable:  apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500,
			Err:        errors.New(apiMessage(apiErr)),
		}
	}

	return &Error{Provider: provider, Model: model, Retryable: true, Err: err}
}

func (g *client) observe(provider, model, outcome string, elapsed time.Duration) {
	if g.observer != nil {
		g.observer(provider, model, outcome, elapsed)
	}
}

func (g *client) resolve(req Request) (config.ProviderConfig, string, string, error) {
	name := req.Provider
	if name == "" {
		name = g.cfg.DefaultProvider
	}

	p, ok := g.cfg.Provider(name)
	if !ok {
		return p, "", "", fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel
	}

	key := req.APIKey
	if key == "" {
		key = p.APIKey
	}
	if key == "" && !p.Anonymous {
		return p, "", "", fmt.Errorf("%w: provider %s", ErrMissingCredential, p.Name)
	}

	return p, model, key, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func apiMessage(e *openai.Error) string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// schemaName converts a scheme name into the identifier form providers
// accept for structured-output schema names: [a-zA-Z0-9_-], at most 64 chars.
func schemaName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
		if sb.Len() == 64 {
			break
		}
	}
	if sb.Len() == 0 {
		return "classification"
	}
	return sb.String()
}
