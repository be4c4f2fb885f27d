package ai

import (
	"context"
	"time"

	"nuvio-server/internal/metrics"

	"github.com/sirupsen/logrus"
)

// ReplyUnavailable is returned instead of an error when no provider is
// configured or every provider failed. Callers must treat it as a valid
// reply, not a genuine answer.
const ReplyUnavailable = "Sorry, the assistant is not available right now. AI provider configuration is missing or unreachable."

// Turn is one prior exchange in the conversation history.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Completer produces a single reply from a system context, prior turns and
// the new user message.
type Completer interface {
	Complete(ctx context.Context, system string, history []Turn, message string) (string, error)
}

type provider interface {
	Completer
	Name() string
	Configured() bool
}

// Caller tries the primary provider and falls back to the secondary on any
// failure. It never returns an error: exhausting providers yields
// ReplyUnavailable.
type Caller struct {
	providers []provider
	metrics   *metrics.Metrics
}

// NewCaller wires the provider chain: Gemini primary, OpenAI fallback.
func NewCaller(gemini *GeminiProvider, openai *OpenAIProvider, m *metrics.Metrics) *Caller {
	return &Caller{providers: []provider{gemini, openai}, metrics: m}
}

func (c *Caller) Complete(ctx context.Context, system string, history []Turn, message string) (string, error) {
	for _, p := range c.providers {
		if !p.Configured() {
			continue
		}
		start := time.Now()
		reply, err := p.Complete(ctx, system, history, message)
		if c.metrics != nil {
			c.metrics.AILatency.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if c.metrics != nil {
				c.metrics.AIRequests.WithLabelValues(p.Name(), "error").Inc()
			}
			logrus.WithError(err).Warnf("%s completion failed, trying next provider", p.Name())
			continue
		}
		if c.metrics != nil {
			c.metrics.AIRequests.WithLabelValues(p.Name(), "ok").Inc()
		}
		return reply, nil
	}

	logrus.Error("all completion providers failed or unconfigured")
	if c.metrics != nil {
		c.metrics.Errors.WithLabelValues("ai").Inc()
	}
	return ReplyUnavailable, nil
}
