package markov

import (
	"context"
	"log/slog"
)

// GenerateStream performs the same walk as Generate but sends each token on the
// returned channel as it is chosen. Option errors are reported before any token
// is sent. The channel is closed once termCount tokens have been sent or the
// context is cancelled.
func (m *Model) GenerateStream(ctx context.Context, opts ...GenerateOption) (<-chan string, error) {
	options := newGenerateOptions(opts)
	start, err := m.start(options)
	if err != nil {
		return nil, err
	}

	tokenChan := make(chan string)

	go func() {
		defer close(tokenChan)
		m.walk(start, options.termCount, func(token string) bool {
			select {
			case <-ctx.Done():
				m.logger.DebugContext(ctx, "Generation stream cancelled by context",
					slog.Any("error", ctx.Err()),
				)
				return false
			case tokenChan <- token:
				return true
			}
		})
	}()

	return tokenChan, nil
}
