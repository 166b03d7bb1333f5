package markov

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name     string
		corpus   string
		expected []string
	}{
		{name: "Empty corpus", corpus: "", expected: nil},
		{name: "Only whitespace", corpus: " \t\n ", expected: nil},
		{name: "Mixed whitespace", corpus: "  a\tb\n c  ", expected: []string{"a", "b", "c"}},
		{name: "Punctuation stays attached", corpus: "Hello, world!", expected: []string{"Hello,", "world!"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(tc.corpus)
			if got := m.Corpus(); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Corpus() = %q, want %q", got, tc.expected)
			}
			if m.State() != TableNotBuilt {
				t.Errorf("State() = %v, want %v", m.State(), TableNotBuilt)
			}
			if table, _ := m.Table(); table != nil {
				t.Errorf("expected no table before building, got %v", table)
			}
		})
	}
}

func TestNewLongTokens(t *testing.T) {
	testCases := []struct {
		name   string
		length int
	}{
		{name: "Short", length: 1},
		{name: "Just under 1MiB", length: 1<<20 - 1},
		{name: "Exactly 1MiB", length: 1 << 20},
		{name: "Over 1MiB", length: 1<<20 + 1},
		{name: "4MiB", length: 4 << 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			long := strings.Repeat("x", tc.length)
			corpus := "a b " + long + " c d"
			got := New(corpus).Corpus()
			if len(got) != 5 {
				t.Fatalf("expected 5 tokens, got %d", len(got))
			}
			if got[2] != long {
				t.Errorf("long token has length %d, want %d", len(got[2]), tc.length)
			}
			if got[3] != "c" || got[4] != "d" {
				t.Errorf("tokens after the long one = %q, want [c d]", got[3:])
			}
		})
	}

	t.Run("Single token corpus", func(t *testing.T) {
		long := strings.Repeat("y", 2<<20)
		m := New(long)
		if got := m.Corpus(); len(got) != 1 || got[0] != long {
			t.Fatalf("expected the whole input as one token, got %d tokens", len(got))
		}
		m.BuildTransitionTable()
		if m.State() != TableEmpty {
			t.Errorf("State() = %v, want %v", m.State(), TableEmpty)
		}
	})
}

// failingTokenizer yields its tokens and then fails.
type failingTokenizer struct {
	tokens []string
	err    error
}

func (f failingTokenizer) NewStream(io.Reader) StreamTokenizer {
	return &failingStream{tokens: f.tokens, err: f.err}
}

func (f failingTokenizer) Separator() string { return " " }

type failingStream struct {
	tokens []string
	err    error
}

func (s *failingStream) Next() (string, error) {
	if len(s.tokens) == 0 {
		return "", s.err
	}
	token := s.tokens[0]
	s.tokens = s.tokens[1:]
	return token, nil
}

func TestNewWithFailingTokenizer(t *testing.T) {
	tokenizer := failingTokenizer{tokens: []string{"a", "b"}, err: errors.New("tokenizer broke")}

	m := New("ignored", WithTokenizer(tokenizer))
	if got := m.Corpus(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Corpus() = %q, want the tokens read before the error", got)
	}

	_, err := NewFromReader(strings.NewReader("ignored"), WithTokenizer(tokenizer))
	if err == nil || !strings.Contains(err.Error(), "tokenizer broke") {
		t.Errorf("expected NewFromReader to report the tokenizer error, got %v", err)
	}
}

func TestNewFromReader(t *testing.T) {
	m, err := NewFromReader(strings.NewReader("one fish\ntwo fish"))
	if err != nil {
		t.Fatalf("NewFromReader() failed: %v", err)
	}
	expected := []string{"one", "fish", "two", "fish"}
	if got := m.Corpus(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Corpus() = %q, want %q", got, expected)
	}

	readErr := errors.New("read failed")
	_, err = NewFromReader(iotest.ErrReader(readErr))
	if !errors.Is(err, readErr) {
		t.Errorf("expected wrapped reader error, got %v", err)
	}
}

func TestCorpusIsCopied(t *testing.T) {
	m := New("a b c")
	corpus := m.Corpus()
	corpus[0] = "z"
	if m.Corpus()[0] != "a" {
		t.Error("modifying the returned corpus changed the model")
	}
}

func TestBuildTransitionTable(t *testing.T) {
	m := New(catCorpus)
	table := m.BuildTransitionTable()

	expected := TransitionTable{
		"the": {"cat", "mat", "cat"},
		"cat": {"sat", "ran"},
		"sat": {"on"},
		"on":  {"the"},
		"mat": {"the"},
	}
	if !reflect.DeepEqual(table, expected) {
		t.Errorf("BuildTransitionTable() = %v, want %v", table, expected)
	}

	expectedKeys := []string{"the", "cat", "sat", "on", "mat"}
	if keys := m.Keys(); !reflect.DeepEqual(keys, expectedKeys) {
		t.Errorf("Keys() = %q, want %q", keys, expectedKeys)
	}

	if _, ok := table["ran"]; ok {
		t.Error("the final token should not be a key unless it appears earlier")
	}
	if m.State() != TablePopulated {
		t.Errorf("State() = %v, want %v", m.State(), TablePopulated)
	}
}

func TestBuildTransitionTableCoversEveryPair(t *testing.T) {
	corpora := []string{
		catCorpus,
		"a b a c a b",
		"x x x x",
		"one fish two fish red fish blue fish",
	}

	for _, corpus := range corpora {
		m := New(corpus)
		table := m.BuildTransitionTable()
		tokens := m.Corpus()

		// Count the pairs seen in the corpus and compare against the table.
		pairs := make(map[[2]string]int)
		for i := 0; i+1 < len(tokens); i++ {
			pairs[[2]string{tokens[i], tokens[i+1]}]++
		}
		fromTable := make(map[[2]string]int)
		for key, successors := range table {
			if len(successors) == 0 {
				t.Errorf("%q: key %q has no successors", corpus, key)
			}
			for _, next := range successors {
				fromTable[[2]string{key, next}]++
			}
		}
		if !reflect.DeepEqual(pairs, fromTable) {
			t.Errorf("%q: table pairs %v, want %v", corpus, fromTable, pairs)
		}

		nonFinal := make(map[string]struct{})
		for _, token := range tokens[:len(tokens)-1] {
			nonFinal[token] = struct{}{}
		}
		if len(table) != len(nonFinal) {
			t.Errorf("%q: got %d keys, want %d", corpus, len(table), len(nonFinal))
		}
	}
}

func TestBuildTransitionTableShortCorpus(t *testing.T) {
	for _, corpus := range []string{"", "lonely"} {
		m := New(corpus)
		table := m.BuildTransitionTable()
		if len(table) != 0 {
			t.Errorf("%q: expected an empty table, got %v", corpus, table)
		}
		if m.State() != TableEmpty {
			t.Errorf("%q: State() = %v, want %v", corpus, m.State(), TableEmpty)
		}
	}
}

func TestBuildTransitionTableIdempotent(t *testing.T) {
	m := New(catCorpus)
	first := m.BuildTransitionTable()
	second := m.BuildTransitionTable()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rebuilding changed the table: %v vs %v", first, second)
	}
}

func TestBuildTransitionTableReturnsCopy(t *testing.T) {
	m := New(catCorpus)
	table := m.BuildTransitionTable()
	table["the"][0] = "dog"
	delete(table, "cat")

	stored, _ := m.Table()
	if stored["the"][0] != "cat" {
		t.Error("modifying the returned table changed the stored successors")
	}
	if _, ok := stored["cat"]; !ok {
		t.Error("deleting from the returned table removed a stored key")
	}
}

func TestTableStateString(t *testing.T) {
	testCases := map[TableState]string{
		TableNotBuilt:  "not_built",
		TableEmpty:     "empty",
		TablePopulated: "populated",
		TableState(7):  "TableState(7)",
	}
	for state, expected := range testCases {
		if got := state.String(); got != expected {
			t.Errorf("%d.String() = %q, want %q", int(state), got, expected)
		}
	}
}

func BenchmarkBuildTransitionTable(b *testing.B) {
	m := New(createBenchmarkCorpus())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.BuildTransitionTable()
	}
}
