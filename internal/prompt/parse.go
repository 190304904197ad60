package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

const maxQuestions = 5

// ParseQuestions pulls the JSON array out of a model reply, which may be
// wrapped in prose or a code fence. Anything unparseable yields no questions.
func ParseQuestions(raw string) []domain.ClarifyingQuestion {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return []domain.ClarifyingQuestion{}
	}

	var parsed []struct {
		ID       any    `json:"id"`
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return []domain.ClarifyingQuestion{}
	}

	questions := make([]domain.ClarifyingQuestion, 0, min(len(parsed), maxQuestions))
	for _, p := range parsed {
		if len(questions) == maxQuestions {
			break
		}
		text := strings.TrimSpace(p.Question)
		if text == "" {
			continue
		}
		questions = append(questions, domain.ClarifyingQuestion{
			ID:       questionID(p.ID, len(questions)+1),
			Question: text,
			Answer:   "",
		})
	}
	return questions
}

func questionID(v any, n int) string {
	switch id := v.(type) {
	case string:
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%g", id)
	}
	return fmt.Sprintf("q%d", n)
}
