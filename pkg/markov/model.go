package markov

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// TransitionTable maps a token to the ordered sequence of tokens observed
// immediately after it in the corpus. Duplicates are preserved: a successor's
// share of the sequence is its empirical transition probability.
type TransitionTable map[string][]string

// Clone returns a deep copy of the table.
func (t TransitionTable) Clone() TransitionTable {
	if t == nil {
		return nil
	}
	c := make(TransitionTable, len(t))
	for k, v := range t {
		c[k] = append([]string(nil), v...)
	}
	return c
}

// TableState reports whether a model's transition table has been built and
// whether it holds anything.
type TableState int

const (
	// TableNotBuilt means BuildTransitionTable has never been called.
	TableNotBuilt TableState = iota
	// TableEmpty means the table was built from a corpus of fewer than two tokens.
	TableEmpty
	// TablePopulated means the table has at least one key.
	TablePopulated
)

func (s TableState) String() string {
	switch s {
	case TableNotBuilt:
		return "not_built"
	case TableEmpty:
		return "empty"
	case TablePopulated:
		return "populated"
	default:
		return fmt.Sprintf("TableState(%d)", int(s))
	}
}

// Option configures a Model at construction.
type Option func(*Model)

// WithPicker replaces the random source used for seed selection, successor
// selection and teleports.
func WithPicker(p Picker) Option {
	return func(m *Model) {
		if p != nil {
			m.picker = p
		}
	}
}

// WithTokenizer replaces the whitespace tokenizer used to split the corpus and
// to join generated output.
func WithTokenizer(t Tokenizer) Option {
	return func(m *Model) {
		if t != nil {
			m.tokenizer = t
		}
	}
}

// Model is a first-order Markov chain over a fixed corpus. The corpus is set at
// construction and never changes. The transition table is absent until
// BuildTransitionTable is called.
//
// Generate only reads the model, so concurrent calls against a built table are
// safe as long as the Picker is. BuildTransitionTable must not run concurrently
// with anything else on the same Model.
type Model struct {
	corpus    []string
	table     TransitionTable
	keys      []string // table keys in order of first appearance
	state     TableState
	picker    Picker
	tokenizer Tokenizer
	logger    *slog.Logger
}

// New creates a model over the tokens of corpus. An empty corpus is allowed.
// The default tokenizer never fails on a string. A custom tokenizer that does
// leaves the corpus with the tokens read before the error; use NewFromReader to
// see such errors.
func New(corpus string, opts ...Option) *Model {
	m := newModel(opts)
	tokens, err := TokenizeReader(m.tokenizer, strings.NewReader(corpus))
	if err != nil {
		m.logger.Warn("Tokenizer stopped before the end of the corpus",
			slog.Int("tokens_read", len(tokens)),
			slog.Any("error", err),
		)
	}
	m.corpus = tokens
	return m
}

// NewFromReader creates a model over every token read from r.
func NewFromReader(r io.Reader, opts ...Option) (*Model, error) {
	m := newModel(opts)
	corpus, err := TokenizeReader(m.tokenizer, r)
	if err != nil {
		return nil, fmt.Errorf("tokenizer error: %w", err)
	}
	m.corpus = corpus
	return m, nil
}

func newModel(opts []Option) *Model {
	m := &Model{
		picker:    globalPicker{},
		tokenizer: NewWhitespaceTokenizer(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// BuildTransitionTable scans every consecutive token pair of the corpus and
// records the second token as a successor of the first. The result replaces any
// previously built table and a copy of it is returned. A corpus of fewer than two
// tokens produces an empty table.
func (m *Model) BuildTransitionTable() TransitionTable {
	start := time.Now()

	table := make(TransitionTable)
	var keys []string
	for i := 0; i+1 < len(m.corpus); i++ {
		current, next := m.corpus[i], m.corpus[i+1]
		successors, ok := table[current]
		if !ok {
			keys = append(keys, current)
		}
		table[current] = append(successors, next)
	}

	m.table = table
	m.keys = keys
	if len(keys) == 0 {
		m.state = TableEmpty
	} else {
		m.state = TablePopulated
	}

	m.logger.Info("Transition table built",
		slog.Int("corpus_tokens", len(m.corpus)),
		slog.Int("keys", len(keys)),
		slog.String("state", m.state.String()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return table.Clone()
}

// Table returns a copy of the current transition table and its state. The table
// is nil when it has not been built.
func (m *Model) Table() (TransitionTable, TableState) {
	return m.table.Clone(), m.state
}

// State reports whether the transition table has been built.
func (m *Model) State() TableState {
	return m.state
}

// Corpus returns a copy of the tokenized corpus.
func (m *Model) Corpus() []string {
	return append([]string(nil), m.corpus...)
}

// Keys returns the table keys in order of first appearance in the corpus.
func (m *Model) Keys() []string {
	return append([]string(nil), m.keys...)
}
