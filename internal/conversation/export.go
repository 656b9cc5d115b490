// internal/conversation/export.go
package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	commonerrors "docrouter/internal/common/errors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS conversation_entries (
	conversation_id TEXT NOT NULL,
	seq             INTEGER NOT NULL,
	step            TEXT NOT NULL,
	timestamp       REAL NOT NULL,
	payload         TEXT NOT NULL,
	PRIMARY KEY (conversation_id, seq)
)`

// OpenSQLite opens (and creates if needed) the export database.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// ExportSQLite persists one conversation into the conversation_entries table.
// The whole export runs in a single transaction; a re-export of the same
// conversation replaces its rows.
func ExportSQLite(ctx context.Context, db *sql.DB, log Log, id string) error {
	if !log.Exists(ctx, id) {
		return commonerrors.NewConversationNotFoundError(id)
	}

	entries, err := log.Get(ctx, id)
	if err != nil {
		return commonerrors.NewExportFailedError(err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return commonerrors.NewExportFailedError(err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return commonerrors.NewExportFailedError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM conversation_entries WHERE conversation_id = ?", id); err != nil {
		return commonerrors.NewExportFailedError(err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO conversation_entries (conversation_id, seq, step, timestamp, payload) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return commonerrors.NewExportFailedError(err)
	}
	defer stmt.Close()

	for seq, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return commonerrors.NewExportFailedError(err)
		}
		if _, err := stmt.ExecContext(ctx, id, seq, entry.Step, entry.Timestamp, string(payload)); err != nil {
			return commonerrors.NewExportFailedError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return commonerrors.NewExportFailedError(err)
	}
	return nil
}
