// Package db archives collected records in a local sqlite file, one
// run at a time, so past batches stay queryable after the spreadsheets
// are handed off.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"poloscraper/lib/timezone"
	"poloscraper/services/collector"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply archive schema: %w", err)
	}
	return &Archive{db: database}, nil
}

// SaveRun stores the whole batch in one transaction and returns the run
// id.
func (a *Archive) SaveRun(ctx context.Context, institution, method string, records []collector.Record) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, institution, method) VALUES (?, ?, ?)`,
		timezone.Now().Format("2006-01-02 15:04:05"), institution, method)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, cpf, field, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	for _, record := range records {
		for field, value := range record.Fields {
			if _, err := insert.ExecContext(ctx, runID, record.CPF, string(field), value); err != nil {
				return 0, fmt.Errorf("failed to insert record %s: %w", record.CPF, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}
