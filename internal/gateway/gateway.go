// Package gateway is the single route for model calls: every generation goes
// through rate limiting, input validation, retry with backoff, and
// performance tracking before it reaches the API.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"olivetti/internal/config"
	"olivetti/internal/logging"
	"olivetti/internal/telemetry"
)

// Client is the minimal model surface the gateway needs. The production
// implementation talks to Gemini; tests substitute a fake.
type Client interface {
	GenerateText(ctx context.Context, model, system, user string, temperature float32, maxTokens int32) (string, error)
}

// Gateway validates, rate-limits, and retries model calls.
type Gateway struct {
	cfg     *config.Config
	client  Client
	limiter *telemetry.RateLimiter
	monitor *telemetry.Monitor
}

// New creates a gateway over a model client. The limiter is consulted only
// when rate limiting is enabled in config; the monitor is always fed.
func New(cfg *config.Config, client Client) *Gateway {
	return &Gateway{
		cfg:     cfg,
		client:  client,
		limiter: telemetry.NewRateLimiter(cfg.RateLimit.CallsPerMinute),
		monitor: telemetry.NewMonitor(),
	}
}

// Monitor exposes the gateway's performance counters for status output.
func (g *Gateway) Monitor() *telemetry.Monitor {
	return g.monitor
}

// Request is one generation call: the composed brief as the system
// instruction, the task and draft as the user turn.
type Request struct {
	Brief       string
	Task        string
	Draft       string
	Temperature float64
}

// Generate runs one model call with validation, rate limiting, and retry.
// Timeouts and transient upstream failures are retried with exponential
// backoff (1s, 2s); auth and rate-limit errors fail immediately.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	if g.cfg.AI.APIKey == "" {
		return "", ErrNoAPIKey
	}

	if err := g.validate(req); err != nil {
		return "", err
	}

	if g.cfg.RateLimit.Enabled && !g.limiter.Allow() {
		return "", fmt.Errorf("%w: wait %s before next call", ErrRateLimited, g.limiter.WaitTime().Round(time.Second))
	}

	log := logging.WithRequestID(logging.CategoryGateway, uuid.New().String())
	log.Info("generate model=%s temp=%.2f brief=%dB task=%dB draft=%dB",
		g.cfg.AI.Model, req.Temperature, len(req.Brief), len(req.Task), len(req.Draft))

	user := req.Task
	if req.Draft != "" {
		user = req.Task + "\n\n" + req.Draft
	}

	start := time.Now()
	maxRetries := g.cfg.AI.MaxRetries
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.AITimeout())
		result, err := g.client.GenerateText(callCtx, g.cfg.AI.Model, req.Brief, user,
			float32(req.Temperature), int32(g.cfg.AI.MaxTokens))
		cancel()

		if err == nil {
			elapsed := time.Since(start)
			g.monitor.RecordAICall(elapsed, len(result))
			log.Info("generate done in %s, %dB", elapsed.Round(time.Millisecond), len(result))
			return result, nil
		}

		lastErr = err
		classified, retryable, backoff := classify(err, attempt)
		if !retryable {
			log.Error("generate failed: %v", err)
			return "", classified
		}
		if attempt < maxRetries-1 {
			log.Warn("generate attempt %d failed, retrying in %s: %v", attempt+1, backoff, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
		}
	}

	classified, _, _ := classify(lastErr, maxRetries)
	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, classified)
}

// validate enforces the configured input size limits.
func (g *Gateway) validate(req Request) error {
	if len(req.Brief) > g.cfg.Limits.MaxBriefChars {
		return fmt.Errorf("%w: brief %d > %d chars", ErrInputTooLarge, len(req.Brief), g.cfg.Limits.MaxBriefChars)
	}
	if len(req.Task) > g.cfg.Limits.MaxTaskChars {
		return fmt.Errorf("%w: task %d > %d chars", ErrInputTooLarge, len(req.Task), g.cfg.Limits.MaxTaskChars)
	}
	if len(req.Draft) > g.cfg.Limits.MaxDraftChars {
		return fmt.Errorf("%w: draft %d > %d chars", ErrInputTooLarge, len(req.Draft), g.cfg.Limits.MaxDraftChars)
	}
	return nil
}

// classify buckets an upstream error into a sentinel and decides retry
// behavior. Rate-limit and auth errors never retry; timeouts back off
// exponentially; everything else gets a flat 1s retry.
func classify(err error, attempt int) (classified error, retryable bool, backoff time.Duration) {
	if err == nil {
		return nil, false, 0
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err), false, 0
	case strings.Contains(msg, "auth") || strings.Contains(msg, "401") || strings.Contains(msg, "permission"):
		return fmt.Errorf("%w: %v", ErrAuth, err), false, 0
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: %v", ErrTimeout, err), true, time.Duration(1<<attempt) * time.Second
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err), true, time.Second
	}
}
