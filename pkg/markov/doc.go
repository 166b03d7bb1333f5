/*
Package markov provides a small, in-memory, first-order Markov chain text
generator.

A Model tokenizes a corpus on whitespace, builds a transition table mapping
each token to every token observed directly after it (duplicates are kept, so
frequent transitions are picked more often), and generates text by randomly
walking that table. When the walk reaches a token with no recorded successor
it restarts from a random key of the table instead of failing.

	m := markov.New("the cat sat on the mat the cat ran")
	m.BuildTransitionTable()
	text, err := m.Generate(markov.WithSeed("the"), markov.WithTermCount(5))

Randomness comes from a Picker, which can be replaced with WithPicker to make
generation reproducible in tests.
*/
package markov
