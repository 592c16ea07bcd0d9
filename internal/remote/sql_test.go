package remote

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncheta/ncheta/internal/testutil"
)

func TestSQLStore_Upsert(t *testing.T) {
	e := testutil.FlashcardEntry("e1", 1_000, 2)
	document, err := json.Marshal(e)
	require.NoError(t, err)

	tests := []struct {
		name       string
		driverName string
		wantQuery  string
		execErr    error
		wantErr    bool
	}{
		{
			name:       "mysql",
			driverName: "mysql",
			wantQuery:  "ON DUPLICATE KEY UPDATE document = VALUES(document)",
		},
		{
			name:       "postgres",
			driverName: "pgx",
			wantQuery:  "VALUES ($1, $2, $3, $4)\nON CONFLICT (user_key, entry_id) DO UPDATE",
		},
		{
			name:       "database error",
			driverName: "mysql",
			wantQuery:  "INSERT INTO remote_entries",
			execErr:    errors.New("connection reset"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exec := mock.ExpectExec(regexp.QuoteMeta(tt.wantQuery)).
				WithArgs("u@x.com", "e1", string(document), int64(1_000))
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			store := NewSQLStore(sqlx.NewDb(db, tt.driverName))
			err = store.Upsert(context.Background(), "u@x.com", e)
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.execErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLStore_List(t *testing.T) {
	newer := testutil.McqEntry("b", 2_000, 1)
	older := testutil.SummaryEntry("a", 1_000)
	newerDoc, err := json.Marshal(newer)
	require.NoError(t, err)
	olderDoc, err := json.Marshal(older)
	require.NoError(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT document FROM remote_entries WHERE user_key = $1 ORDER BY created_at DESC, entry_id")).
		WithArgs("u@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).
			AddRow(string(newerDoc)).
			AddRow(string(olderDoc)))

	store := NewSQLStore(sqlx.NewDb(db, "pgx"))
	got, err := store.List(context.Background(), "u@x.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0])
	assert.Equal(t, older, got[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListRejectsCorruptDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT document FROM remote_entries").
		WithArgs("u@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(`{"id":"x","content":{"type":"essay"}}`))

	store := NewSQLStore(sqlx.NewDb(db, "mysql"))
	_, err = store.List(context.Background(), "u@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown content type")
}
