package models

import "encoding/json"

// ContentTypeText marks a content block carrying plain text.
const ContentTypeText = "text"

// ContentBlock is a single segment of message content. Blocks decoded from a
// provider keep their original JSON in Raw so fields beyond type and text
// (tool input, thinking signatures) survive re-encoding.
type ContentBlock struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

type contentBlockFields struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var fields contentBlockFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	b.Type = fields.Type
	b.Text = fields.Text
	b.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (b ContentBlock) MarshalJSON() ([]byte, error) {
	if len(b.Raw) > 0 {
		return b.Raw, nil
	}
	return json.Marshal(contentBlockFields{Type: b.Type, Text: b.Text})
}

// Message represents a single conversational message.
type Message struct {
	Role    string
	Content []ContentBlock
}

// MessageRequest is the canonical representation of one completion call.
type MessageRequest struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// MessageResponse captures a provider response.
type MessageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Usage records token accounting information.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// TextMessage builds a message holding a single text block.
func TextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentBlock{{Type: ContentTypeText, Text: text}},
	}
}
