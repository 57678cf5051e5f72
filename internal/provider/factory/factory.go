package factory

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"invite-reviewer/internal/config"
	claudeProvider "invite-reviewer/internal/provider/claude"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// NewClaudeProvider constructs the completion provider from configuration.
func NewClaudeProvider(cfg config.CompletionConfig) (*claudeProvider.Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	p, err := claudeProvider.New("claude", cfg, newHTTPClient(timeout))
	if err != nil {
		return nil, fmt.Errorf("initialise claude provider: %w", err)
	}
	return p, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
