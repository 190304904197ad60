package prompt

import (
	"context"
	"sync"

	"github.com/emiliopalmerini/mkanban/internal/ports"
)

// fakeTransport answers with AttemptFunc and records every request.
type fakeTransport struct {
	name        string
	AttemptFunc func(ctx context.Context, req ports.LLMRequest) (string, error)

	mu    sync.Mutex
	calls []ports.LLMRequest
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) Attempt(ctx context.Context, req ports.LLMRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.AttemptFunc(ctx, req)
}

func (f *fakeTransport) Calls() []ports.LLMRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.LLMRequest(nil), f.calls...)
}

func replying(name, reply string) *fakeTransport {
	return &fakeTransport{name: name, AttemptFunc: func(context.Context, ports.LLMRequest) (string, error) {
		return reply, nil
	}}
}

func failing(name string, err error) *fakeTransport {
	return &fakeTransport{name: name, AttemptFunc: func(context.Context, ports.LLMRequest) (string, error) {
		return "", err
	}}
}

// scripted replies by system prompt: questions vs generation.
func scripted(questionsReply string, generate func(req ports.LLMRequest) (string, error)) *fakeTransport {
	return &fakeTransport{name: "scripted", AttemptFunc: func(_ context.Context, req ports.LLMRequest) (string, error) {
		if req.System == QuestionsSystemPrompt {
			return questionsReply, nil
		}
		return generate(req)
	}}
}

type recordingMetrics struct {
	mu     sync.Mutex
	prompt []*ports.PromptMetrics
}

func (m *recordingMetrics) ExportBackupMetrics(context.Context, *ports.BackupMetrics) error {
	return nil
}

func (m *recordingMetrics) ExportPromptMetrics(_ context.Context, pm *ports.PromptMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompt = append(m.prompt, pm)
	return nil
}

func (m *recordingMetrics) Close(context.Context) error { return nil }
