package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"invite-reviewer/internal/config"
	"invite-reviewer/internal/models"
	"invite-reviewer/internal/provider"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "invite-reviewer/0.1"
	apiVersion      = "2023-06-01"
	maxErrorBody    = 64 * 1024
)

// Provider implements Anthropic Claude API interactions.
type Provider struct {
	name     string
	apiKey   string
	headers  map[string]string
	client   *http.Client
	messages string
}

// New constructs a Claude provider instance.
func New(name string, cfg config.CompletionConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	return &Provider{
		name:     name,
		apiKey:   cfg.APIKey,
		headers:  cfg.Headers,
		client:   client,
		messages: baseURL + "/v1/messages",
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Messages performs a single, non-streaming Messages API call.
func (p *Provider) Messages(ctx context.Context, req models.MessageRequest) (*models.MessageResponse, error) {
	payload, err := buildMessagePayload(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.newRequest(ctx, http.MethodPost, p.messages, payload)
	if err != nil {
		return nil, err
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &provider.TransportError{Provider: p.name, Cause: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, parseAPIError(httpResp)
	}

	var resp models.MessageResponse
	if err := decodeJSON(httpResp.Body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *Provider) newRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

type messagePayload struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string                `json:"role"`
	Content []models.ContentBlock `json:"content"`
}

func buildMessagePayload(req models.MessageRequest) (messagePayload, error) {
	if strings.TrimSpace(req.Model) == "" {
		return messagePayload{}, errors.New("claude request requires a model")
	}
	if req.MaxTokens <= 0 {
		return messagePayload{}, errors.New("claude requests require a positive max_tokens value")
	}

	messages := make([]message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		switch role {
		case "user", "assistant":
		default:
			return messagePayload{}, fmt.Errorf("claude provider does not support role %q", msg.Role)
		}
		if len(msg.Content) == 0 {
			return messagePayload{}, errors.New("claude messages must not be empty")
		}
		messages = append(messages, message{Role: role, Content: msg.Content})
	}

	if len(messages) == 0 {
		return messagePayload{}, errors.New("claude request requires at least one user message")
	}
	if messages[0].Role != "user" {
		return messagePayload{}, errors.New("claude conversation must start with a user message")
	}

	return messagePayload{
		Model:       req.Model,
		Messages:    messages,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, nil
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseAPIError(resp *http.Response) error {
	// A failed read keeps whatever arrived; the status code alone drives classification.
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	statusErr := &provider.StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		ReadErr:    readErr,
	}
	if readErr != nil {
		return statusErr
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		statusErr.Type = apiErr.Error.Type
		statusErr.Message = apiErr.Error.Message
	}
	return statusErr
}

func decodeJSON(reader io.Reader, target any) error {
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
