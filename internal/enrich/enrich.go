// Package enrich is an optional post-processing step that asks a local
// llama-server to rewrite finding messages and suggestions into friendlier
// prose. It is strictly best-effort: on absence, timeout, rate limiting or
// a malformed response the findings pass through unchanged.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
)

const systemPrompt = `You rewrite automated UI audit findings for a non-technical reader.
For each finding, return the same JSON array with only "message" and
"suggestion" rewritten. Keep every other field byte-identical. Reply with
JSON only.`

// Config selects the llama-server endpoint. An empty Endpoint disables
// enrichment entirely.
type Config struct {
	Endpoint    string
	Timeout     time.Duration
	Temperature float64

	// RateTokens/RateRefill bound request rate against the model server.
	RateTokens int
	RateRefill time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		Temperature: 0.3,
		RateTokens:  5,
		RateRefill:  12 * time.Second,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llamaRequest struct {
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

type llamaResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Enricher posts finding batches to a llama-server chat endpoint.
type Enricher struct {
	cfg     Config
	client  *http.Client
	limiter *rateLimiter
	logger  logging.Logger
}

func New(cfg Config, logger logging.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewStdoutLogger("enrich")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RateTokens <= 0 {
		cfg.RateTokens = DefaultConfig().RateTokens
	}
	if cfg.RateRefill <= 0 {
		cfg.RateRefill = DefaultConfig().RateRefill
	}
	return &Enricher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: newRateLimiter(cfg.RateTokens, cfg.RateRefill),
		logger:  logger.With(logging.Field{Key: "component", Value: "enrich"}),
	}
}

// Enrich rewrites the findings' prose. Whatever goes wrong, the caller gets
// a usable finding list back.
func (e *Enricher) Enrich(ctx context.Context, findings []model.Finding) []model.Finding {
	if e == nil || e.cfg.Endpoint == "" || len(findings) == 0 {
		return findings
	}
	if !e.limiter.take() {
		e.logger.Debug("rate limited, skipping enrichment")
		return findings
	}

	rewritten, err := e.request(ctx, findings)
	if err != nil {
		e.logger.Warn("enrichment skipped", logging.Field{Key: "error", Value: err.Error()})
		return findings
	}
	return rewritten
}

func (e *Enricher) request(ctx context.Context, findings []model.Finding) ([]model.Finding, error) {
	payload, err := json.Marshal(findings)
	if err != nil {
		return nil, fmt.Errorf("marshal findings: %w", err)
	}

	body, err := json.Marshal(llamaRequest{
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var lr llamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(lr.Choices) == 0 {
		return nil, fmt.Errorf("empty choices")
	}

	var rewritten []model.Finding
	if err := json.Unmarshal([]byte(lr.Choices[0].Message.Content), &rewritten); err != nil {
		return nil, fmt.Errorf("unmarshal rewritten findings: %w", err)
	}
	if len(rewritten) != len(findings) {
		return nil, fmt.Errorf("rewrite changed finding count: %d != %d", len(rewritten), len(findings))
	}

	// Only prose may change; everything that feeds dedup, scoring or
	// reporting is restored from the original.
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		out[i] = f
		if m := rewritten[i].Message; m != "" {
			out[i].Message = m
		}
		if s := rewritten[i].Suggestion; s != "" {
			out[i].Suggestion = s
		}
	}
	return out, nil
}
