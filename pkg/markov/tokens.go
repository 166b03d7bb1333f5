package markov

import (
	"errors"
	"io"
)

// Tokenizer is an interface that defines the contract for splitting input text
// into tokens. This allows the model to be independent of the specific
// tokenization strategy.
type Tokenizer interface {
	// NewStream returns a stateful StreamTokenizer for processing an io.Reader.
	NewStream(io.Reader) StreamTokenizer
	// Separator returns the string used to join tokens when building a
	// generated string.
	Separator() string
}

// StreamTokenizer is an interface for a stateful tokenizer that processes a
// stream of data, returning one token at a time.
type StreamTokenizer interface {
	// Next returns the next token from the stream. It returns io.EOF as the
	// error when the stream is fully consumed.
	Next() (string, error)
}

// TokenizeReader drains r through the tokenizer and returns every token in order.
func TokenizeReader(t Tokenizer, r io.Reader) ([]string, error) {
	stream := t.NewStream(r)
	var tokens []string
	for {
		token, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return tokens, nil
			}
			return tokens, err
		}
		tokens = append(tokens, token)
	}
}
