package session

import (
	"encoding/json"
	"fmt"

	"github.com/cetine/goodrx/internal/cache"
	"github.com/cetine/goodrx/internal/infer"
	"github.com/cetine/goodrx/internal/llm"
)

// buildPayload assembles the per-turn payload: catalog JSON, inferred
// context JSON and the raw user message. Quotes are always freshly
// serialized; only the catalog JSON is memoized, keyed by the catalog
// generation so a baseline update invalidates it.
func (s *Session) buildPayload(ictx *infer.Context, userMsg string) (string, error) {
	catalogJSON, err := s.catalogJSON()
	if err != nil {
		return "", err
	}

	contextJSON, err := json.MarshalIndent(ictx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}

	return llm.BuildPayload(catalogJSON, string(contextJSON), userMsg), nil
}

func (s *Session) catalogJSON() (string, error) {
	key := cache.Key(fmt.Sprintf("%s:payload:%d", s.cat.Name(), s.cat.Generation()))

	if s.payloads != nil {
		if data, ok := s.payloads.Get(key); ok {
			return string(data), nil
		}
	}

	data, err := json.MarshalIndent(s.cat.Payload(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal catalog: %w", err)
	}

	if s.payloads != nil {
		_ = s.payloads.Set(key, data, s.cacheTTL)
	}
	return string(data), nil
}
