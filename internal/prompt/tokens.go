package prompt

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many input tokens a composed prompt uses.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// o200kPrefixes are model families tokenized with o200k_base that tiktoken's
// own model table does not list.
var o200kPrefixes = []string{"gpt-4.1", "gpt-4o", "gpt-5", "o1", "o3", "o4"}

// encodingName returns the encoding to force for model, or "" to let
// tiktoken decide.
func encodingName(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, p := range o200kPrefixes {
		if strings.HasPrefix(m, p) {
			return tiktoken.MODEL_O200K_BASE
		}
	}
	return ""
}

// NewTokenCounter picks the encoding for model, falling back to cl100k_base
// for models tiktoken does not know.
func NewTokenCounter(model string) (TokenCounter, error) {
	var (
		enc *tiktoken.Tiktoken
		err error
	)
	if name := encodingName(model); name != "" {
		enc, err = tiktoken.GetEncoding(name)
	} else {
		enc, err = tiktoken.EncodingForModel(model)
	}
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// RuneEstimate is used when no tokenizer could be loaded: roughly four
// characters per token.
type RuneEstimate struct{}

func (RuneEstimate) Count(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}
