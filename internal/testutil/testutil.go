// Package testutil provides shared test helpers for config files, databases and entry fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ncheta/ncheta/internal/database"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/observable"
)

// SetupTestConfig creates a minimal config file whose paths all live under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"data", "export", "backup"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`local:
  database_path: %s
settings:
  path: %s
auth:
  bcrypt_cost: 4
outputs:
  export_directory: %s
  backup_directory: %s
`,
		filepath.Join(tmpDir, "data", "ncheta.db"),
		filepath.Join(tmpDir, "data", "settings.yml"),
		filepath.Join(tmpDir, "export"),
		filepath.Join(tmpDir, "backup"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// OpenTestDB opens a migrated SQLite database in a temporary directory.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenLocal(filepath.Join(t.TempDir(), "ncheta.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, database.Migrate(context.Background(), db, database.DialectSQLite))
	return db
}

// SummaryEntry returns a summary entry fixture.
func SummaryEntry(id string, createdAt int64) entry.Entry {
	return entry.Entry{
		ID:              id,
		Title:           "Summary " + id,
		SourceText:      "Photosynthesis converts light into chemical energy.",
		InputSourceType: entry.InputSourceManual,
		Content:         entry.Summary{Text: "Plants turn light into energy."},
		CreatedAt:       createdAt,
	}
}

// FlashcardEntry returns a flashcard entry fixture with n cards.
func FlashcardEntry(id string, createdAt int64, n int) entry.Entry {
	cards := make([]entry.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, entry.Flashcard{
			Front: fmt.Sprintf("Question %d", i+1),
			Back:  fmt.Sprintf("Answer %d", i+1),
		})
	}
	return entry.Entry{
		ID:              id,
		Title:           "Flashcards " + id,
		SourceText:      "Source text for " + id,
		InputSourceType: entry.InputSourceManual,
		Content:         entry.FlashcardSet{Items: cards},
		CreatedAt:       createdAt,
	}
}

// McqEntry returns a multiple choice entry fixture with the given correct indices.
func McqEntry(id string, createdAt int64, correct ...int) entry.Entry {
	questions := make([]entry.MultipleChoiceQuestion, 0, len(correct))
	for i, c := range correct {
		questions = append(questions, entry.MultipleChoiceQuestion{
			QuestionText:       fmt.Sprintf("Question %d", i+1),
			Options:            []string{"A", "B", "C", "D"},
			CorrectOptionIndex: c,
		})
	}
	return entry.Entry{
		ID:              id,
		Title:           "Questions " + id,
		SourceText:      "Source text for " + id,
		InputSourceType: entry.InputSourceDocument,
		Content:         entry.McqSet{Items: questions},
		CreatedAt:       createdAt,
	}
}

// Await blocks until src holds a value that satisfies pred, and returns it.
func Await[T any](ctx context.Context, src observable.Observable[T], pred func(T) bool) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for value := range src.Subscribe(ctx) {
		if pred(value) {
			return value, nil
		}
	}
	var zero T
	return zero, ctx.Err()
}
