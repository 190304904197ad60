package web

import (
	"net/http"
	"strings"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/prompt"
)

type generatePromptRequest struct {
	Mode        string                      `json:"mode"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Parameters  domain.PromptParameters     `json:"parameters"`
	Attachments []domain.Attachment         `json:"attachments"`
	Questions   []domain.ClarifyingQuestion `json:"questions,omitempty"`
}

type questionsResponse struct {
	Questions []domain.ClarifyingQuestion `json:"questions"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	var body generatePromptRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if strings.TrimSpace(body.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Title is required"})
		return
	}
	mode, err := prompt.ParseMode(body.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid mode"})
		return
	}

	req := prompt.Request{
		Title:       body.Title,
		Description: body.Description,
		Attachments: body.Attachments,
		Parameters:  body.Parameters,
	}

	ctx := r.Context()
	switch mode {
	case prompt.ModeQuestions:
		questions, err := s.generator.Questions(ctx, req)
		if err != nil {
			s.writePromptError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
	case prompt.ModeGenerate:
		out, err := s.generator.Generate(ctx, req, body.Questions)
		if err != nil {
			s.writePromptError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, promptResponse{Prompt: out})
	}
}

// Request fields were checked above, so any failure here came from the
// transports.
func (s *Server) writePromptError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("prompt generation failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
