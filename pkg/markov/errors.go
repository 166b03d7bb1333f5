package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrNotBuilt is returned when generating from a model whose transition
	// table has not been built.
	ErrNotBuilt = errors.New("transition table is not built")
	// ErrEmptyTable is returned when the table was built from a corpus of fewer
	// than two tokens. It wraps ErrNotBuilt, so errors.Is(err, ErrNotBuilt)
	// matches both cases.
	ErrEmptyTable = fmt.Errorf("%w: corpus has fewer than two tokens", ErrNotBuilt)
	// ErrUnknownSeed is returned when a seed term is not a key of the table.
	ErrUnknownSeed = errors.New("seed term not found in corpus")
	// ErrInvalidTermCount is returned when fewer than one term is requested.
	ErrInvalidTermCount = errors.New("term count must be at least 1")
)
