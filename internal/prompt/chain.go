package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// ErrNoTransport means every configured way of reaching the model failed.
var ErrNoTransport = errors.New("claude CLI not available and no API key configured")

// Chain tries each transport once, in order, and returns the first success.
type Chain struct {
	transports []ports.LLMTransport
	logger     logrus.FieldLogger
}

func NewChain(logger logrus.FieldLogger, transports ...ports.LLMTransport) *Chain {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Chain{transports: transports, logger: logger}
}

// Call returns the model's reply and the name of the transport that produced it.
func (c *Chain) Call(ctx context.Context, req ports.LLMRequest) (string, string, error) {
	var errs []error
	for _, t := range c.transports {
		out, err := t.Attempt(ctx, req)
		if err == nil {
			return out, t.Name(), nil
		}

		c.logger.WithFields(logrus.Fields{
			"transport": t.Name(),
			"error":     err,
		}).Warn("LLM transport failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return "", "", fmt.Errorf("%w: install the Claude CLI or set ANTHROPIC_API_KEY: %w", ErrNoTransport, errors.Join(errs...))
}
