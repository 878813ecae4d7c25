package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cetine/goodrx/internal/cache"
	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/infer"
	"github.com/cetine/goodrx/internal/llm"
	"github.com/cetine/goodrx/internal/worker"
	"github.com/google/uuid"
)

// Session drives one chat conversation: infer context, compute quotes,
// call the remote model, advance the transcript. A session is strictly
// turn-based - one Send completes before the next begins - so the
// transcript needs no locking. The catalog may be shared across sessions;
// its own lock covers the baseline-mutation path.
type Session struct {
	id         string
	cat        *catalog.Catalog
	inferencer *infer.Inferencer
	coach      *llm.Coach
	limiter    *worker.Limiter
	payloads   cache.Cache
	cacheTTL   time.Duration
	system     string
	transcript []llm.Turn
}

// Options tunes the session. Zero values fall back to defaults.
type Options struct {
	RequestsPerSecond float64
	BurstSize         int
	CacheEnabled      bool
	CacheTTL          time.Duration
}

// New creates a session over a catalog. A disabled coach (or nil) puts the
// session in offline mode: turns still infer and quote, and the reply is
// rendered locally from the computed numbers.
func New(cat *catalog.Catalog, coach *llm.Coach, opts Options) *Session {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	var payloads cache.Cache
	if opts.CacheEnabled {
		payloads = cache.NewMemoryCache(ttl, 2*ttl)
	}

	return &Session{
		id:         uuid.NewString(),
		cat:        cat,
		inferencer: infer.NewInferencer(),
		coach:      coach,
		limiter:    worker.NewLimiter(rps, opts.BurstSize),
		payloads:   payloads,
		cacheTTL:   ttl,
		system:     llm.SystemPrompt(cat.Variant()),
	}
}

// TurnResult is the typed outcome of one turn. Computing a result and
// rendering it are separate steps: a remote failure is reported here as a
// kind, not pre-baked into display text the caller cannot distinguish.
type TurnResult struct {
	// Context is the inferred selection and quotes for this turn
	Context *infer.Context

	// Reply is the assistant text appended to the transcript (the model's
	// reply, an offline rendering, or an inline error notice)
	Reply string

	// RemoteErr is set when the remote model call failed; the transcript
	// still advanced with an inline notice
	RemoteErr *llm.RemoteModelError
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Catalog returns the catalog this session prices against.
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// Transcript returns a copy of the rolling transcript.
func (s *Session) Transcript() []llm.Turn {
	out := make([]llm.Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// HistoryText renders the transcript as "role: text" lines.
func (s *Session) HistoryText() string {
	return llm.FlattenHistory(s.transcript)
}

// Reset discards the transcript. The catalog baseline is untouched.
func (s *Session) Reset() {
	s.transcript = nil
}

// Preload replaces the transcript with a scripted conversation.
func (s *Session) Preload(turns []llm.Turn) {
	s.transcript = make([]llm.Turn, len(turns))
	copy(s.transcript, turns)
}

// Send processes one user turn. Inference and pricing errors abort the turn
// before any remote call is made and leave the transcript unchanged; remote
// model failures advance the transcript with an inline notice and are
// reported in the result, never as a process-level failure.
func (s *Session) Send(ctx context.Context, userMsg string) (*TurnResult, error) {
	ictx, err := s.inferencer.Infer(s.cat, userMsg, s.HistoryText())
	if err != nil {
		return nil, fmt.Errorf("infer context: %w", err)
	}

	result := &TurnResult{Context: ictx}

	if !s.coach.IsEnabled() {
		result.Reply = offlineReply(ictx)
		s.advance(userMsg, result.Reply)
		return result, nil
	}

	payload, err := s.buildPayload(ictx, userMsg)
	if err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}

	if err := s.limiter.Wait(ctx, s.coach.ProviderName()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	resp, err := s.coach.Reply(ctx, llm.ReplyRequest{
		System:  s.system,
		History: s.Transcript(),
		Payload: payload,
	})
	if err != nil {
		var rme *llm.RemoteModelError
		if errors.As(err, &rme) {
			result.RemoteErr = rme
			result.Reply = fmt.Sprintf("Error calling %s: %v", rme.Provider, rme.Err)
			s.advance(userMsg, result.Reply)
			return result, nil
		}
		return nil, err
	}

	result.Reply = resp.Text
	if result.Reply == "" {
		result.Reply = "(No response)"
	}
	s.advance(userMsg, result.Reply)
	return result, nil
}

// advance appends one complete turn. The transcript only ever moves in
// user/assistant pairs.
func (s *Session) advance(userMsg, reply string) {
	s.transcript = append(s.transcript,
		llm.Turn{Role: llm.RoleUser, Text: userMsg},
		llm.Turn{Role: llm.RoleAssistant, Text: reply},
	)
}

// offlineReply renders the computed quotes directly when no remote model is
// configured.
func offlineReply(ictx *infer.Context) string {
	if ictx.Empty() {
		return "No plan matched that message. Ask about a specific plan, or about bundling them together."
	}
	data, err := json.MarshalIndent(ictx, "", "  ")
	if err != nil {
		return "Quotes were computed but could not be rendered."
	}
	return "Here are the numbers for what you asked about:\n" + string(data)
}
