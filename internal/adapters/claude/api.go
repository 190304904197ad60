package claude

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

const DefaultMaxTokens = 2048

// ErrAPIKeyMissing is returned when the API transport has no key configured.
var ErrAPIKeyMissing = errors.New("ANTHROPIC_API_KEY is not set")

// APITransport calls the Anthropic Messages API.
type APITransport struct {
	client anthropic.Client
	apiKey string
	model  anthropic.Model
}

func NewAPITransport(apiKey, model string, opts ...option.RequestOption) *APITransport {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &APITransport{
		client: anthropic.NewClient(opts...),
		apiKey: apiKey,
		model:  anthropic.Model(model),
	}
}

func (t *APITransport) Name() string { return "api" }

func (t *APITransport) Attempt(ctx context.Context, req ports.LLMRequest) (string, error) {
	if t.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Content))
	for _, b := range req.Content {
		switch b.Type {
		case domain.ContentText:
			blocks = append(blocks, anthropic.NewTextBlock(b.Text))
		case domain.ContentImage:
			blocks = append(blocks, anthropic.NewImageBlockBase64(b.MediaType, b.Data))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     t.model,
		MaxTokens: DefaultMaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := t.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	for _, content := range message.Content {
		if content.Type == "text" {
			return content.Text, nil
		}
	}
	return "", nil
}
