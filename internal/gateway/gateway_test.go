package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"olivetti/internal/config"
)

func TestMain(m *testing.M) {
	// opencensus (pulled in by the genai client) starts a background stats
	// worker at init that never exits.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// fakeClient scripts responses per attempt.
type fakeClient struct {
	calls     int
	responses []fakeResponse
	lastUser  string
	lastTemp  float32
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeClient) GenerateText(ctx context.Context, model, system, user string, temperature float32, maxTokens int32) (string, error) {
	f.lastUser = user
	f.lastTemp = temperature
	if f.calls >= len(f.responses) {
		return "", errors.New("unscripted call")
	}
	r := f.responses[f.calls]
	f.calls++
	return r.text, r.err
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AI.APIKey = "test-key"
	cfg.AI.Timeout = "1s"
	return cfg
}

func TestGenerate(t *testing.T) {
	req := Request{Brief: "brief", Task: "Write 200 words", Draft: "The rain.", Temperature: 0.5}

	t.Run("success on first attempt", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{{text: "generated prose"}}}
		g := New(testConfig(), fake)

		got, err := g.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "generated prose", got)
		assert.Equal(t, 1, fake.calls)
	})

	t.Run("task and draft join the user turn", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{{text: "ok"}}}
		g := New(testConfig(), fake)

		_, err := g.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "Write 200 words\n\nThe rain.", fake.lastUser)
		assert.InDelta(t, 0.5, fake.lastTemp, 1e-6)
	})

	t.Run("missing API key fails before any call", func(t *testing.T) {
		cfg := testConfig()
		cfg.AI.APIKey = ""
		fake := &fakeClient{}
		g := New(cfg, fake)

		_, err := g.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrNoAPIKey)
		assert.Zero(t, fake.calls)
	})

	t.Run("oversized inputs fail before any call", func(t *testing.T) {
		cfg := testConfig()
		cfg.Limits.MaxTaskChars = 10
		fake := &fakeClient{}
		g := New(cfg, fake)

		_, err := g.Generate(context.Background(), Request{Task: strings.Repeat("x", 11)})
		assert.ErrorIs(t, err, ErrInputTooLarge)
		assert.Zero(t, fake.calls)
	})

	t.Run("retries transient failures then succeeds", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{
			{err: errors.New("connection reset")},
			{text: "second time lucky"},
		}}
		g := New(testConfig(), fake)

		got, err := g.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "second time lucky", got)
		assert.Equal(t, 2, fake.calls)
	})

	t.Run("auth errors do not retry", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{
			{err: errors.New("401 unauthorized")},
		}}
		g := New(testConfig(), fake)

		_, err := g.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrAuth)
		assert.Equal(t, 1, fake.calls)
	})

	t.Run("upstream rate limits do not retry", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{
			{err: errors.New("429 too many requests")},
		}}
		g := New(testConfig(), fake)

		_, err := g.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 1, fake.calls)
	})

	t.Run("exhausted retries surface the classified error", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{
			{err: errors.New("boom")},
			{err: errors.New("boom")},
			{err: errors.New("boom")},
		}}
		g := New(testConfig(), fake)

		_, err := g.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Equal(t, 3, fake.calls)
	})

	t.Run("local rate limiter gates calls when enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.CallsPerMinute = 1
		fake := &fakeClient{responses: []fakeResponse{{text: "one"}, {text: "two"}}}
		g := New(cfg, fake)

		_, err := g.Generate(context.Background(), req)
		require.NoError(t, err)

		_, err = g.Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 1, fake.calls)
	})

	t.Run("monitor records successful calls", func(t *testing.T) {
		fake := &fakeClient{responses: []fakeResponse{{text: "abcd"}}}
		g := New(testConfig(), fake)

		_, err := g.Generate(context.Background(), req)
		require.NoError(t, err)

		stats := g.Monitor().Snapshot()
		assert.Equal(t, 1, stats.AICalls)
		assert.Equal(t, 4, stats.TotalOutput)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		sentinel  error
		retryable bool
	}{
		{"rate limit", errors.New("rate limit hit"), ErrRateLimited, false},
		{"429", errors.New("HTTP 429"), ErrRateLimited, false},
		{"auth", errors.New("authentication required"), ErrAuth, false},
		{"permission", errors.New("permission denied"), ErrAuth, false},
		{"timeout", errors.New("request timeout"), ErrTimeout, true},
		{"deadline", errors.New("context deadline exceeded"), ErrTimeout, true},
		{"other", errors.New("internal server error"), ErrUpstream, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified, retryable, _ := classify(tt.err, 0)
			assert.ErrorIs(t, classified, tt.sentinel)
			assert.Equal(t, tt.retryable, retryable)
		})
	}
}
