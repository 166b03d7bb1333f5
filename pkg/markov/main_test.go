package markov

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const catCorpus = "the cat sat on the mat the cat ran"

// scriptedPicker returns a fixed, repeating sequence of choices so that
// generation can be asserted exactly.
type scriptedPicker struct {
	choices []int
	next    int
}

func (p *scriptedPicker) IntN(n int) int {
	v := p.choices[p.next%len(p.choices)]
	p.next++
	if v >= n {
		panic(fmt.Sprintf("scriptedPicker: choice %d out of range [0, %d)", v, n))
	}
	return v
}

// newBuiltModel creates a model over corpus and builds its transition table.
func newBuiltModel(t testing.TB, corpus string, opts ...Option) *Model {
	t.Helper()
	m := New(corpus, opts...)
	m.BuildTransitionTable()
	return m
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
