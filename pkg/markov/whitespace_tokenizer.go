package markov

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WhitespaceTokenizer is the default implementation of the Tokenizer interface.
// It splits text on runs of Unicode white space and keeps punctuation attached
// to the words around it. Besides the characters strings.Fields splits on, the
// ASCII information separators U+001C through U+001F also count as white space.
// Tokens have no length limit.
type WhitespaceTokenizer struct {
	separator string
}

// TokenizerOption is a function that configures a WhitespaceTokenizer.
type TokenizerOption func(*WhitespaceTokenizer)

// WithSeparator sets the string used for joining tokens during generation.
// Default: " "
func WithSeparator(sep string) TokenizerOption {
	return func(t *WhitespaceTokenizer) {
		t.separator = sep
	}
}

// NewWhitespaceTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more TokenizerOption functions.
func NewWhitespaceTokenizer(opts ...TokenizerOption) *WhitespaceTokenizer {
	t := &WhitespaceTokenizer{separator: " "}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Separator returns the configured separator string.
func (t *WhitespaceTokenizer) Separator() string {
	return t.separator
}

// NewStream returns the stream processor.
func (t *WhitespaceTokenizer) NewStream(r io.Reader) StreamTokenizer {
	return &whitespaceStream{reader: bufio.NewReader(r)}
}

// isSpace reports whether r separates tokens.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || ('\x1c' <= r && r <= '\x1f')
}

// whitespaceStream reads one word at a time, rune by rune, from a bufio.Reader.
type whitespaceStream struct {
	reader *bufio.Reader
	token  strings.Builder
}

// Next returns the next token from the stream. When the stream is exhausted,
// it returns io.EOF. Any other error indicates a problem reading from the
// underlying stream.
func (s *whitespaceStream) Next() (string, error) {
	s.token.Reset()
	for {
		r, size, err := s.reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) && s.token.Len() > 0 {
				return s.token.String(), nil
			}
			return "", err
		}
		if r == utf8.RuneError && size == 1 {
			// Keep invalid bytes as they are rather than as U+FFFD.
			_ = s.reader.UnreadRune()
			b, _ := s.reader.ReadByte()
			s.token.WriteByte(b)
			continue
		}
		if isSpace(r) {
			if s.token.Len() > 0 {
				return s.token.String(), nil
			}
			continue
		}
		s.token.WriteRune(r)
	}
}
