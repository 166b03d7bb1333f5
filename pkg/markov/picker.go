package markov

import "math/rand/v2"

// Picker is a source of uniform random choice. IntN returns a value in [0, n)
// and is never called with n <= 0. A *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

// globalPicker draws from the top-level math/rand/v2 source, which is safe for
// concurrent use.
type globalPicker struct{}

func (globalPicker) IntN(n int) int {
	return rand.IntN(n)
}

// pick returns a uniformly chosen element of choices, which must not be empty.
func pick(p Picker, choices []string) string {
	return choices[p.IntN(len(choices))]
}
