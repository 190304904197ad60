package prompt

import (
	"regexp"
	"strings"

	"github.com/emiliopalmerini/mkanban/internal/domain"
)

var dataURIPattern = regexp.MustCompile(`^data:(image/[^;]+);base64,(.+)$`)

// BuildUserMessage renders the task as one text block followed by one
// image block per image attachment carried as a base64 data URI. Image
// attachments with any other URL are dropped.
func BuildUserMessage(title, description string, attachments []domain.Attachment, questions []domain.ClarifyingQuestion) []domain.ContentBlock {
	var b strings.Builder
	b.WriteString("**Task Title:** ")
	b.WriteString(title)

	if description != "" {
		b.WriteString("\n\n**Description:** ")
		b.WriteString(description)
	}

	var files []string
	for _, a := range attachments {
		if a.Type != domain.AttachmentImage {
			files = append(files, a.Name)
		}
	}
	if len(files) > 0 {
		b.WriteString("\n\n**Attached files:** ")
		b.WriteString(strings.Join(files, ", "))
	}

	var answered []domain.ClarifyingQuestion
	for _, q := range questions {
		if strings.TrimSpace(q.Answer) != "" {
			answered = append(answered, q)
		}
	}
	if len(answered) > 0 {
		b.WriteString("\n\n**Clarification answers:**")
		for _, q := range answered {
			b.WriteString("\n- Q: ")
			b.WriteString(q.Question)
			b.WriteString("\n  A: ")
			b.WriteString(q.Answer)
		}
	}

	content := []domain.ContentBlock{domain.TextBlock(b.String())}

	for _, a := range attachments {
		if a.Type != domain.AttachmentImage {
			continue
		}
		m := dataURIPattern.FindStringSubmatch(a.URL)
		if m == nil {
			continue
		}
		content = append(content, domain.ImageBlock(m[1], m[2]))
	}

	return content
}
