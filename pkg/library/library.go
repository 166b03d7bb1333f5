package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/CTAG07/babble/pkg/markov"
	"github.com/google/uuid"
)

var (
	// ErrCorpusNotFound is returned when no corpus has the requested name.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrCorpusExists is returned when inserting a corpus under a name already in use.
	ErrCorpusExists = errors.New("corpus already exists")
)

// CorpusInfo holds the metadata for a stored corpus.
type CorpusInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// SetupSchema initializes the corpus table in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaCorpora = `
CREATE TABLE IF NOT EXISTS library_corpora (
    corpus_id    TEXT    PRIMARY KEY,
    corpus_name  TEXT    NOT NULL UNIQUE,
    corpus_text  TEXT    NOT NULL,
    token_count  INTEGER NOT NULL,
    created_at   INTEGER NOT NULL
);
`
	if _, err := db.Exec(schemaCorpora); err != nil {
		return fmt.Errorf("could not create corpus schema: %w", err)
	}
	return nil
}

// Library holds the database connection and prepared SQL statements for
// managing corpora, along with the options applied to every model it loads.
type Library struct {
	db           *sql.DB
	modelOpts    []markov.Option
	stmtInsert   *sql.Stmt
	stmtGetInfo  *sql.Stmt
	stmtGetInfos *sql.Stmt
	stmtGetText  *sql.Stmt
	logger       *slog.Logger
}

// New creates a Library over db, whose schema must already be set up. The
// given options are passed to every model created by LoadModel.
func New(db *sql.DB, opts ...markov.Option) (*Library, error) {
	stmtInsert, err := db.Prepare(`INSERT INTO library_corpora (corpus_id, corpus_name, corpus_text, token_count, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(corpus_name) DO NOTHING;`)
	if err != nil {
		return nil, err
	}

	stmtGetInfo, err := db.Prepare(`SELECT corpus_id, corpus_name, token_count, created_at FROM library_corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetInfos, err := db.Prepare(`SELECT corpus_id, corpus_name, token_count, created_at FROM library_corpora ORDER BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	stmtGetText, err := db.Prepare(`SELECT corpus_text FROM library_corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	return &Library{
		db:           db,
		modelOpts:    opts,
		stmtInsert:   stmtInsert,
		stmtGetInfo:  stmtGetInfo,
		stmtGetInfos: stmtGetInfos,
		stmtGetText:  stmtGetText,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Library.
func (l *Library) Close() {
	_ = l.stmtInsert.Close()
	_ = l.stmtGetInfo.Close()
	_ = l.stmtGetInfos.Close()
	_ = l.stmtGetText.Close()
}

// SetLogger sets the logger for the Library and the models it loads. By
// default, all logs are discarded.
func (l *Library) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// InsertCorpus stores text under name and returns its metadata. The name's
// UNIQUE constraint decides between concurrent inserts of the same name; every
// loser gets ErrCorpusExists.
func (l *Library) InsertCorpus(ctx context.Context, name, text string) (CorpusInfo, error) {
	info := CorpusInfo{
		ID:        uuid.NewString(),
		Name:      name,
		Tokens:    markov.New(text, l.modelOpts...).Stats().CorpusTokens,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	res, err := l.stmtInsert.ExecContext(ctx, info.ID, info.Name, text, info.Tokens, info.CreatedAt.Unix())
	if err != nil {
		return CorpusInfo{}, fmt.Errorf("could not insert corpus '%s': %w", name, err)
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return CorpusInfo{}, fmt.Errorf("%w: '%s'", ErrCorpusExists, name)
	}

	l.logger.InfoContext(ctx, "Corpus inserted",
		slog.String("corpus_name", info.Name),
		slog.String("corpus_id", info.ID),
		slog.Int("tokens", info.Tokens),
	)
	return info, nil
}

// GetCorpusInfos retrieves metadata for every stored corpus, ordered by name.
func (l *Library) GetCorpusInfos(ctx context.Context) ([]CorpusInfo, error) {
	rows, err := l.stmtGetInfos.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	infos := make([]CorpusInfo, 0)
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// GetCorpusInfo retrieves the metadata for a single corpus.
func (l *Library) GetCorpusInfo(ctx context.Context, name string) (CorpusInfo, error) {
	info, err := scanInfo(l.stmtGetInfo.QueryRowContext(ctx, name))
	if errors.Is(err, sql.ErrNoRows) {
		return CorpusInfo{}, fmt.Errorf("%w: '%s'", ErrCorpusNotFound, name)
	}
	return info, err
}

// CorpusText returns the stored text of a corpus.
func (l *Library) CorpusText(ctx context.Context, name string) (string, error) {
	var text string
	err := l.stmtGetText.QueryRowContext(ctx, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: '%s'", ErrCorpusNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("could not read corpus '%s': %w", name, err)
	}
	return text, nil
}

// RemoveCorpus deletes a corpus. The operation is performed within a transaction.
func (l *Library) RemoveCorpus(ctx context.Context, name string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	res, err := tx.ExecContext(ctx, "DELETE FROM library_corpora WHERE corpus_name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to remove corpus '%s': %w", name, err)
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return fmt.Errorf("%w: '%s'", ErrCorpusNotFound, name)
	}

	l.logger.InfoContext(ctx, "Corpus removed successfully",
		slog.String("corpus_name", name),
	)

	return tx.Commit()
}

// LoadModel reads a corpus and returns a model over it with its transition
// table already built.
func (l *Library) LoadModel(ctx context.Context, name string) (*markov.Model, error) {
	text, err := l.CorpusText(ctx, name)
	if err != nil {
		return nil, err
	}

	m := markov.New(text, l.modelOpts...)
	m.SetLogger(l.logger.With(slog.String("corpus_name", name)))
	m.BuildTransitionTable()
	return m, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfo(row rowScanner) (CorpusInfo, error) {
	var info CorpusInfo
	var createdAt int64
	if err := row.Scan(&info.ID, &info.Name, &info.Tokens, &createdAt); err != nil {
		return CorpusInfo{}, err
	}
	info.CreatedAt = time.Unix(createdAt, 0).UTC()
	return info, nil
}
