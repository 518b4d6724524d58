package extract

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
	"github.com/tmc/langchaingo/textsplitter"
)

// TokenCounter measures prompt input with a tiktoken encoding.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter loads the named encoding; empty means cl100k_base.
func NewTokenCounter(encoding string) (*TokenCounter, error) {
	var enc tokenizer.Encoding
	switch encoding {
	case "", "cl100k_base":
		enc = tokenizer.Cl100kBase
	case "o200k_base":
		enc = tokenizer.O200kBase
	case "p50k_base":
		enc = tokenizer.P50kBase
	case "r50k_base":
		enc = tokenizer.R50kBase
	default:
		return nil, fmt.Errorf("unsupported token encoding %q", encoding)
	}
	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TokenCounter{codec: codec}, nil
}

// Count returns the number of tokens in text, or the byte length when the
// encoder fails.
func (t *TokenCounter) Count(text string) int {
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return len(text)
	}
	return len(ids)
}

// Trim returns text unchanged when it fits in budget tokens, otherwise the
// leading chunk that does. A budget <= 0 disables trimming.
func (t *TokenCounter) Trim(text string, budget int) (string, bool, error) {
	if budget <= 0 || t.Count(text) <= budget {
		return text, false, nil
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(budget),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithLenFunc(t.Count),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return "", false, fmt.Errorf("split prompt input: %w", err)
	}
	if len(chunks) == 0 {
		return "", true, nil
	}
	return chunks[0], true, nil
}
