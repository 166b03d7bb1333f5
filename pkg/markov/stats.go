package markov

// ModelStats holds aggregated statistics for a single Model.
type ModelStats struct {
	CorpusTokens   int        `json:"corpus_tokens"`   // The number of tokens in the corpus
	DistinctTokens int        `json:"distinct_tokens"` // The number of unique tokens in the corpus
	Keys           int        `json:"keys"`            // The number of tokens that have at least one successor
	Transitions    int        `json:"transitions"`     // The total length of all successor sequences
	State          TableState `json:"-"`
	StateName      string     `json:"state"`
}

// Stats returns a snapshot of statistics for the model. Table-derived counts are
// zero until the table is built.
func (m *Model) Stats() ModelStats {
	distinct := make(map[string]struct{}, len(m.corpus))
	for _, token := range m.corpus {
		distinct[token] = struct{}{}
	}

	var transitions int
	for _, successors := range m.table {
		transitions += len(successors)
	}

	return ModelStats{
		CorpusTokens:   len(m.corpus),
		DistinctTokens: len(distinct),
		Keys:           len(m.keys),
		Transitions:    transitions,
		State:          m.state,
		StateName:      m.state.String(),
	}
}
