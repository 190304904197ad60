package domain

// ClarifyingQuestion lives for a single prompt-generation session.
type ClarifyingQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PromptParameters toggles the optional instruction blocks of the
// generation system prompt.
type PromptParameters struct {
	PlanMode         bool `json:"planMode"`
	TaskBreakdown    bool `json:"taskBreakdown"`
	CodeOrganization bool `json:"codeOrganization"`
	TestCoverage     bool `json:"testCoverage"`
}

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// ContentBlock is one block of an LLM user message. Image blocks carry
// base64 data and its media type.
type ContentBlock struct {
	Type      ContentType
	Text      string
	MediaType string
	Data      string
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentText, Text: text}
}

func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{Type: ContentImage, MediaType: mediaType, Data: data}
}
