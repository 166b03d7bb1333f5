package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CTAG07/babble/pkg/library"
)

// initDB opens the database with the driver selected at build time and makes
// sure every schema the server depends on exists.
func initDB(ctx context.Context, dataSource string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriver, dataSource)
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err = library.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup library schema: %w", err)
	}
	if err = setupAuthSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup auth schema: %w", err)
	}
	return db, nil
}
