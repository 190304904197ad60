package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// Mode selects which phase of prompt generation a request runs.
type Mode string

const (
	ModeQuestions Mode = "questions"
	ModeGenerate  Mode = "generate"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeQuestions, ModeGenerate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: Invalid mode", domain.ErrValidation)
}

// Request carries the task fields the generator reads.
type Request struct {
	Title       string
	Description string
	Attachments []domain.Attachment
	Parameters  domain.PromptParameters
}

// RequestFromTask copies the prompt-relevant fields of a stored task.
func RequestFromTask(t *domain.Task, params domain.PromptParameters) Request {
	return Request{
		Title:       t.Title,
		Description: t.Description,
		Attachments: t.Attachments,
		Parameters:  params,
	}
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: Title is required", domain.ErrValidation)
	}
	return nil
}

type Generator struct {
	chain   *Chain
	metrics ports.MetricsExporter
	logger  logrus.FieldLogger
}

func NewGenerator(chain *Chain, metrics ports.MetricsExporter, logger logrus.FieldLogger) *Generator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Generator{chain: chain, metrics: metrics, logger: logger}
}

// Questions asks the model for clarifying questions. A reply that cannot
// be parsed yields an empty list, not an error.
func (g *Generator) Questions(ctx context.Context, req Request) ([]domain.ClarifyingQuestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	content := BuildUserMessage(req.Title, req.Description, req.Attachments, nil)
	raw, err := g.call(ctx, ModeQuestions, ports.LLMRequest{System: QuestionsSystemPrompt, Content: content})
	if err != nil {
		return nil, err
	}
	return ParseQuestions(raw), nil
}

// Generate produces the coding-agent prompt. Questions with blank answers
// are left out of the message.
func (g *Generator) Generate(ctx context.Context, req Request, questions []domain.ClarifyingQuestion) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	system := BuildSystemPrompt(req.Parameters)
	content := BuildUserMessage(req.Title, req.Description, req.Attachments, questions)
	out, err := g.call(ctx, ModeGenerate, ports.LLMRequest{System: system, Content: content})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Generator) call(ctx context.Context, mode Mode, req ports.LLMRequest) (string, error) {
	start := time.Now()
	out, transport, err := g.chain.Call(ctx, req)
	elapsed := time.Since(start)

	if g.metrics != nil {
		m := &ports.PromptMetrics{
			Mode:      string(mode),
			Transport: transport,
			Success:   err == nil,
			Duration:  elapsed,
		}
		if mErr := g.metrics.ExportPromptMetrics(ctx, m); mErr != nil {
			g.logger.WithError(mErr).Debug("failed to export prompt metrics")
		}
	}

	log := g.logger.WithFields(logrus.Fields{"mode": mode, "duration": elapsed})
	if err != nil {
		log.WithError(err).Error("prompt generation failed")
		return "", err
	}
	log.WithField("transport", transport).Info("prompt generation succeeded")
	return out, nil
}
