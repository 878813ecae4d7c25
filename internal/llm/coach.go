package llm

import (
	"context"
	"fmt"
)

// Coach wraps a Provider behind the session boundary. It owns the typed
// failure contract: every provider failure comes back as a
// *RemoteModelError so callers can render it inline instead of crashing
// the hosting process.
type Coach struct {
	provider Provider
	config   Config
}

// NewCoach creates a coach from configuration. An empty provider name
// yields a disabled coach (nil provider), which is not an error: sessions
// then run in offline quote-only mode.
func NewCoach(config Config) (*Coach, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	return &Coach{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled reports whether a remote provider is configured.
func (c *Coach) IsEnabled() bool {
	return c != nil && c.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled.
func (c *Coach) ProviderName() string {
	if !c.IsEnabled() {
		return ""
	}
	return c.provider.Name()
}

// Reply forwards one turn to the remote model. Failures are wrapped in
// *RemoteModelError; callers decide how to render them.
func (c *Coach) Reply(ctx context.Context, req ReplyRequest) (*ReplyResponse, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	resp, err := c.provider.Reply(ctx, req)
	if err != nil {
		return nil, &RemoteModelError{Provider: c.provider.Name(), Err: err}
	}
	return resp, nil
}
