package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/testutil"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), testutil.OpenTestDB(t))
	require.NoError(t, err)
	return s
}

func ids(entries []entry.Entry) []string {
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.ID)
	}
	return result
}

func TestSQLiteStore_UpsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	assert.Empty(t, s.Entries().Get())

	older := testutil.FlashcardEntry("a", 1_000, 2)
	newer := testutil.McqEntry("b", 2_000, 1, 2)
	summary := testutil.SummaryEntry("c", 1_500)
	for _, e := range []entry.Entry{older, newer, summary} {
		require.NoError(t, s.Upsert(ctx, e))
	}

	assert.Equal(t, []string{"b", "c", "a"}, ids(s.Entries().Get()))

	got, err := s.FindByID(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer, *got)

	missing, err := s.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Upsert replaces an existing entry with the same id.
	older.Title = "renamed"
	require.NoError(t, s.Upsert(ctx, older))
	got, err = s.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Len(t, s.Entries().Get(), 3)
}

func TestSQLiteStore_DeleteByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Upsert(ctx, testutil.SummaryEntry("a", 1)))
	require.NoError(t, s.Upsert(ctx, testutil.SummaryEntry("b", 2)))

	require.NoError(t, s.DeleteByID(ctx, "a"))
	require.NoError(t, s.DeleteByID(ctx, "does-not-exist"))

	assert.Equal(t, []string{"b"}, ids(s.Entries().Get()))
}

func TestSQLiteStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Upsert(ctx, testutil.SummaryEntry("local-only", 5)))

	remote := []entry.Entry{
		testutil.FlashcardEntry("r1", 1, 1),
		testutil.McqEntry("r2", 2, 3),
	}
	require.NoError(t, s.ReplaceAll(ctx, remote))
	assert.Equal(t, []string{"r2", "r1"}, ids(s.Entries().Get()))

	require.NoError(t, s.ReplaceAll(ctx, nil))
	assert.Empty(t, s.Entries().Get())
}

func TestSQLiteStore_MarkPracticed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Upsert(ctx, testutil.FlashcardEntry("a", 1, 1)))

	require.NoError(t, s.MarkPracticed(ctx, "a", 42))

	got, err := s.FindByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.LastPracticedAt)
	assert.Equal(t, int64(42), *got.LastPracticedAt)
}

func TestSQLiteStore_EntriesPublishesEveryChange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := newTestStore(t)

	updates := s.Entries().Subscribe(ctx)
	first := <-updates
	assert.Empty(t, first)

	require.NoError(t, s.Upsert(ctx, testutil.SummaryEntry("a", 1)))
	require.NoError(t, s.Upsert(ctx, testutil.SummaryEntry("b", 2)))

	assert.Equal(t, []string{"a"}, ids(<-updates))
	assert.Equal(t, []string{"b", "a"}, ids(<-updates))

	got, err := testutil.Await(ctx, s.Entries(), func(entries []entry.Entry) bool { return len(entries) == 2 })
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteStore_ReplaceAllRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite")

	columns := []string{"id", "title", "source_text", "input_source_type", "content_type", "content", "created_at", "last_practiced_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("kept", "Kept", "src", "MANUAL", "summary", `{"type":"summary","text":"kept"}`, int64(10), nil))

	s, err := NewSQLiteStore(ctx, db)
	require.NoError(t, err)
	require.Equal(t, []string{"kept"}, ids(s.Entries().Get()))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entries")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries")).
		WithArgs("new", "Summary new", sqlmock.AnyArg(), "MANUAL", "summary", sqlmock.AnyArg(), int64(20), nil).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = s.ReplaceAll(ctx, []entry.Entry{testutil.SummaryEntry("new", 20)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Equal(t, []string{"kept"}, ids(s.Entries().Get()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
