// internal/conversation/export_test.go
package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "docrouter/internal/common/errors"
	"docrouter/internal/models"
)

// ==========================
// SQLite export (sqlmock)
// ==========================

func TestExportSQLite_WritesAllEntriesInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewMemoryLog()
	ctx := context.Background()
	id := log.Create()
	require.NoError(t, log.Append(ctx, id, models.Entry{Step: "classification", Timestamp: 1.0, Fields: map[string]interface{}{"format": "message"}}))
	require.NoError(t, log.Append(ctx, id, models.Entry{Step: "processing", Timestamp: 2.0}))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS conversation_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM conversation_entries WHERE conversation_id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO conversation_entries")
	prep.ExpectExec().
		WithArgs(id, 0, "classification", 1.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(id, 1, "processing", 2.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, ExportSQLite(ctx, db, log, id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportSQLite_UnknownConversation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewMemoryLog()

	err = ExportSQLite(context.Background(), db, log, "missing")
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeConversationNotFound, stdErr.Code)
}

func TestExportSQLite_RollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewMemoryLog()
	ctx := context.Background()
	id := log.Create()
	require.NoError(t, log.Append(ctx, id, models.Entry{Step: "classification", Timestamp: 1.0}))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS conversation_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM conversation_entries WHERE conversation_id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO conversation_entries")
	prep.ExpectExec().
		WithArgs(id, 0, "classification", 1.0, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = ExportSQLite(ctx, db, log, id)
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeExportFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
