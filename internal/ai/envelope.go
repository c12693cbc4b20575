package ai

import (
	"encoding/json"
	"fmt"
)

const (
	outputTypeMessage     = "message"
	contentTypeOutputText = "output_text"
)

// Envelope is the decoded response body of the Responses endpoint. Only the
// fields the pipeline reads are typed; Raw keeps the body for debug logging.
type Envelope struct {
	ID     string
	Status string
	Output []OutputItem
	Raw    json.RawMessage
}

// OutputItem is either a *Message or an *OtherOutput.
type OutputItem interface {
	outputType() string
}

type Message struct {
	ID      string
	Role    string
	Content []ContentItem
}

// OtherOutput is any output item that is not a message (reasoning, tool calls...).
type OtherOutput struct {
	Type string
	Raw  json.RawMessage
}

func (*Message) outputType() string       { return outputTypeMessage }
func (o *OtherOutput) outputType() string { return o.Type }

// ContentItem is either an *OutputText or an *OtherContent.
type ContentItem interface {
	contentType() string
}

type OutputText struct {
	Text string
}

// OtherContent covers refusals and any content type added later.
type OtherContent struct {
	Type string
	Raw  json.RawMessage
}

func (*OutputText) contentType() string     { return contentTypeOutputText }
func (c *OtherContent) contentType() string { return c.Type }

type taggedItem struct {
	Type string `json:"type"`
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID     string            `json:"id"`
		Status string            `json:"status"`
		Output []json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	out := make([]OutputItem, 0, len(wire.Output))
	for i, raw := range wire.Output {
		item, err := decodeOutputItem(raw)
		if err != nil {
			return fmt.Errorf("output[%d]: %w", i, err)
		}
		out = append(out, item)
	}
	e.ID = wire.ID
	e.Status = wire.Status
	e.Output = out
	e.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func decodeOutputItem(raw json.RawMessage) (OutputItem, error) {
	var tag taggedItem
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}
	if tag.Type != outputTypeMessage {
		return &OtherOutput{Type: tag.Type, Raw: raw}, nil
	}

	var wire struct {
		ID      string            `json:"id"`
		Role    string            `json:"role"`
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	msg := &Message{ID: wire.ID, Role: wire.Role, Content: make([]ContentItem, 0, len(wire.Content))}
	for i, c := range wire.Content {
		item, err := decodeContentItem(c)
		if err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}
		msg.Content = append(msg.Content, item)
	}
	return msg, nil
}

func decodeContentItem(raw json.RawMessage) (ContentItem, error) {
	var tag taggedItem
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}
	if tag.Type != contentTypeOutputText {
		return &OtherContent{Type: tag.Type, Raw: raw}, nil
	}
	var wire struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if wire.Text == nil {
		return nil, fmt.Errorf("output_text item has no text")
	}
	return &OutputText{Text: *wire.Text}, nil
}
