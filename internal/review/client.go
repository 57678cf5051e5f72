package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"invite-reviewer/internal/config"
	"invite-reviewer/internal/metrics"
	"invite-reviewer/internal/models"
	"invite-reviewer/internal/provider"
	"invite-reviewer/internal/render"
)

const (
	msgMissingAPIKey = "API key not configured. Set the ANTHROPIC_API_KEY environment variable or in a .env file."
	msgRateLimited   = "A 429 status code was received; we should back off a bit."
)

// Client sends drafts to the completion provider and classifies the outcome.
type Client struct {
	provider provider.Provider
	renderer render.Renderer
	logger   *slog.Logger

	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// New constructs a review client. The credential and request settings are
// fixed for the lifetime of the client.
func New(p provider.Provider, cfg config.CompletionConfig, renderer render.Renderer, logger *slog.Logger) (*Client, error) {
	if p == nil {
		return nil, errors.New("provider must not be nil")
	}
	if renderer == nil {
		return nil, errors.New("renderer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		provider:    p,
		renderer:    renderer,
		logger:      logger,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.TemperatureValue(),
	}, nil
}

// Submit performs one completion attempt for the draft. It never returns an
// error: every failure is folded into the Result.
func (c *Client) Submit(ctx context.Context, draft string) Result {
	res := c.submit(ctx, draft)
	metrics.ReviewResultsTotal.WithLabelValues(res.Kind.String()).Inc()
	if !res.OK() {
		c.logger.Warn("review failed", "kind", res.Kind.String(), "status", res.StatusCode, "err", res.Cause)
	}
	return res
}

func (c *Client) submit(ctx context.Context, draft string) Result {
	if c.apiKey == "" {
		return Result{Kind: KindConfiguration, Display: msgMissingAPIKey}
	}

	req := models.MessageRequest{
		Model:       c.model,
		System:      SystemPrompt,
		Messages:    []models.Message{models.TextMessage("user", UserPrompt(draft))},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.provider.Messages(ctx, req)
	metrics.ProviderRequestDuration.WithLabelValues(c.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return classify(err)
	}
	if resp == nil {
		return classify(errors.New("provider returned an empty response"))
	}

	return c.success(resp)
}

func classify(err error) Result {
	var transportErr *provider.TransportError
	var statusErr *provider.StatusError

	switch {
	case errors.As(err, &transportErr):
		return Result{
			Kind:    KindTransport,
			Display: fmt.Sprintf("The server could not be reached: %v", transportErr.Cause),
			Cause:   transportErr.Cause,
		}
	case errors.Is(err, provider.ErrRateLimited):
		res := Result{Kind: KindRateLimit, Display: msgRateLimited, Cause: err}
		if errors.As(err, &statusErr) {
			res.StatusCode = statusErr.StatusCode
			res.Body = statusErr.Body
		}
		return res
	case errors.As(err, &statusErr):
		return Result{
			Kind: KindStatus,
			Display: fmt.Sprintf("Another non-200-range status code was received. Code %d, Response: %s",
				statusErr.StatusCode, statusErr.Body),
			Cause:      err,
			StatusCode: statusErr.StatusCode,
			Body:       statusErr.Body,
		}
	default:
		return Result{Kind: KindUnexpected, Display: fmt.Sprintf("Error: %v", err), Cause: err}
	}
}

func (c *Client) success(resp *models.MessageResponse) Result {
	if len(resp.Content) != 1 || resp.Content[0].Type != models.ContentTypeText {
		return Result{Kind: KindOK, Display: dumpResponse(resp), Format: FormatText}
	}

	text := resp.Content[0].Text
	html, err := c.renderer.Render(text)
	if err != nil {
		metrics.MarkdownRenderFailuresTotal.Inc()
		c.logger.Warn("failed to convert markdown, showing raw text", "err", err)
		return Result{Kind: KindOK, Display: text, Format: FormatText, Raw: text}
	}
	return Result{Kind: KindOK, Display: html, Format: FormatHTML, Raw: text}
}

func dumpResponse(resp *models.MessageResponse) string {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", *resp)
	}
	return string(data)
}
