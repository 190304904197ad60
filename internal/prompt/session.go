package prompt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

// ErrInvalidState is returned when a session method is called out of turn.
var ErrInvalidState = errors.New("invalid prompt session state")

type State string

const (
	StateIdle       State = "idle"
	StateQuestions  State = "questions"
	StateGenerating State = "generating"
)

// Session drives one task through idle -> questions -> generating -> idle.
// The caller moves it forward; nothing happens in the background.
type Session struct {
	gen *Generator
	req Request

	mu        sync.Mutex
	state     State
	questions []domain.ClarifyingQuestion
	prompt    string
}

func NewSession(gen *Generator, req Request) *Session {
	return &Session{gen: gen, req: req, state: StateIdle}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Questions returns a copy of the pending questions and their current answers.
func (s *Session) Questions() []domain.ClarifyingQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.questions)
}

// Prompt returns the last generated prompt.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: session is %s, expected %s", ErrInvalidState, s.state, from)
	}
	s.state = to
	return nil
}

func (s *Session) set(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Start asks for clarifying questions. When the model has none, the prompt
// is generated right away and the returned slice is empty.
func (s *Session) Start(ctx context.Context) ([]domain.ClarifyingQuestion, error) {
	if err := s.transition(StateIdle, StateGenerating); err != nil {
		return nil, err
	}

	questions, err := s.gen.Questions(ctx, s.req)
	if err != nil {
		s.set(StateIdle)
		return nil, err
	}

	if len(questions) > 0 {
		s.mu.Lock()
		s.questions = questions
		s.state = StateQuestions
		s.mu.Unlock()
		return slices.Clone(questions), nil
	}

	out, err := s.gen.Generate(ctx, s.req, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	if err != nil {
		return nil, err
	}
	s.prompt = out
	return []domain.ClarifyingQuestion{}, nil
}

// Answer records answers by question id and generates the prompt. Unknown
// ids are ignored. On failure the session stays in questions with the
// answers kept.
func (s *Session) Answer(ctx context.Context, answers map[string]string) (string, error) {
	s.mu.Lock()
	if s.state != StateQuestions {
		state := s.state
		s.mu.Unlock()
		return "", fmt.Errorf("%w: session is %s, expected %s", ErrInvalidState, state, StateQuestions)
	}
	for i := range s.questions {
		if a, ok := answers[s.questions[i].ID]; ok {
			s.questions[i].Answer = a
		}
	}
	questions := slices.Clone(s.questions)
	s.state = StateGenerating
	s.mu.Unlock()

	return s.generate(ctx, questions)
}

// Skip generates the prompt without using any answers.
func (s *Session) Skip(ctx context.Context) (string, error) {
	if err := s.transition(StateQuestions, StateGenerating); err != nil {
		return "", err
	}
	return s.generate(ctx, nil)
}

func (s *Session) generate(ctx context.Context, questions []domain.ClarifyingQuestion) (string, error) {
	out, err := s.gen.Generate(ctx, s.req, questions)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateQuestions
		return "", err
	}
	s.state = StateIdle
	s.prompt = out
	s.questions = nil
	return out, nil
}
