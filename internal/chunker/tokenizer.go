package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the subword vocabulary shared by GPT-4 and
// text-embedding-ada-002.
const encodingName = "cl100k_base"

// tiktokenTokenizer wraps a tiktoken encoding.
type tiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer loads the cl100k_base encoding. Callers should fall back to
// character-based chunking when this fails (e.g., the vocabulary files are
// unavailable offline).
func NewTokenizer() (Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encodingName, err)
	}
	return &tiktokenTokenizer{encoding: encoding}, nil
}

// Encode converts text into its token sequence.
func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode converts a token sequence back to text.
func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}
