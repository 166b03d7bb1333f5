package markov

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultTermCount is the number of tokens generated when WithTermCount is not given.
const DefaultTermCount = 15

// generateOptions is used by the generate functions to configure default options.
type generateOptions struct {
	seed      string
	hasSeed   bool
	termCount int
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in Generate and GenerateStream.
type GenerateOption func(*generateOptions)

// WithSeed sets the token generation starts from. It must be a key of the
// transition table. Without it, the start is picked at random from the keys.
func WithSeed(term string) GenerateOption {
	return func(o *generateOptions) {
		o.seed = term
		o.hasSeed = true
	}
}

// WithTermCount sets the number of tokens to generate, seed included.
func WithTermCount(n int) GenerateOption {
	return func(o *generateOptions) { o.termCount = n }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{termCount: DefaultTermCount}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Generate walks the transition table and returns exactly termCount tokens
// joined by the tokenizer's separator. When the current token has no recorded
// successor the walk teleports to a random key instead of stopping.
func (m *Model) Generate(opts ...GenerateOption) (string, error) {
	options := newGenerateOptions(opts)
	start, err := m.start(options)
	if err != nil {
		return "", err
	}

	output := make([]string, 0, options.termCount)
	m.walk(start, options.termCount, func(token string) bool {
		output = append(output, token)
		return true
	})
	return strings.Join(output, m.tokenizer.Separator()), nil
}

// start validates the options against the table and returns the first token.
func (m *Model) start(options *generateOptions) (string, error) {
	switch m.state {
	case TableNotBuilt:
		return "", ErrNotBuilt
	case TableEmpty:
		return "", ErrEmptyTable
	}
	if options.termCount < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidTermCount, options.termCount)
	}
	if !options.hasSeed {
		return pick(m.picker, m.keys), nil
	}
	if _, ok := m.table[options.seed]; !ok {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownSeed, options.seed)
	}
	return options.seed, nil
}

// walk emits count tokens beginning with start. It stops early if emit returns false.
func (m *Model) walk(start string, count int, emit func(string) bool) {
	current := start
	if !emit(current) {
		return
	}
	teleports := 0
	for i := 1; i < count; i++ {
		successors := m.table[current]
		if len(successors) == 0 {
			current = pick(m.picker, m.keys)
			teleports++
		} else {
			current = pick(m.picker, successors)
		}
		if !emit(current) {
			return
		}
	}
	m.logger.Debug("Generation completed",
		slog.String("start", start),
		slog.Int("term_count", count),
		slog.Int("teleports", teleports),
	)
}
