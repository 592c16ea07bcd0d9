package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/assets"
	"github.com/ncheta/ncheta/internal/entry"
	mock_session "github.com/ncheta/ncheta/internal/mocks/session"
	"github.com/ncheta/ncheta/internal/testutil"
)

func TestFileBaseName(t *testing.T) {
	tests := []struct {
		name  string
		entry entry.Entry
		want  string
	}{
		{
			name:  "title is slugged and id shortened",
			entry: entry.Entry{ID: "3f2a9c1e-0000-4000-8000-000000000000", Title: "Cell Biology: Part 1!"},
			want:  "cell-biology-part-1-3f2a9c1e",
		},
		{
			name:  "short id kept",
			entry: entry.Entry{ID: "e1", Title: "Notes"},
			want:  "notes-e1",
		},
		{
			name:  "title without safe characters",
			entry: entry.Entry{ID: "e1", Title: "日本語"},
			want:  "e1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileBaseName(tt.entry))
		})
	}
}

func TestNewEntrySheet(t *testing.T) {
	practicedAt := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
	mcq := testutil.McqEntry("q", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), 2)
	mcq.LastPracticedAt = &practicedAt

	got := NewEntrySheet(mcq)

	require.NotNil(t, got.LastPracticedAt)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *got.LastPracticedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got.CreatedAt)
	assert.Equal(t, []assets.SheetQuestion{
		{
			Text: "Question 1",
			Options: []assets.SheetOption{
				{Label: "A", Text: "A"},
				{Label: "B", Text: "B"},
				{Label: "C", Text: "C", Correct: true},
				{Label: "D", Text: "D"},
			},
		},
	}, got.Questions)
	assert.Empty(t, got.Summary)
	assert.Empty(t, got.Flashcards)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"md", "PDF", ".xlsx"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("docx")
	assert.True(t, apperror.IsValidation(err))
}

func TestWriter_Export(t *testing.T) {
	tests := []struct {
		name    string
		entry   *entry.Entry
		findErr error
		formats []Format

		wantExtensions []string
		wantErr        func(t *testing.T, err error)
	}{
		{
			name:           "markdown by default",
			entry:          ptr(testutil.SummaryEntry("s1", 1)),
			wantExtensions: []string{".md"},
		},
		{
			name:           "pdf writes markdown first",
			entry:          ptr(testutil.FlashcardEntry("f1", 1, 2)),
			formats:        []Format{FormatPDF},
			wantExtensions: []string{".md", ".pdf"},
		},
		{
			name:           "all formats",
			entry:          ptr(testutil.McqEntry("q1", 1, 0, 3)),
			formats:        []Format{FormatMarkdown, FormatPDF, FormatXLSX},
			wantExtensions: []string{".md", ".pdf", ".xlsx"},
		},
		{
			name:    "summary cannot be a spreadsheet",
			entry:   ptr(testutil.SummaryEntry("s1", 1)),
			formats: []Format{FormatXLSX},
			wantErr: func(t *testing.T, err error) {
				assert.True(t, apperror.IsValidation(err))
			},
		},
		{
			name:    "missing entry",
			formats: []Format{FormatMarkdown},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apperror.ErrNotFound)
			},
		},
		{
			name:    "lookup failure",
			findErr: errors.New("database is locked"),
			wantErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "database is locked")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			finder := mock_session.NewMockEntryRepository(ctrl)
			id := "missing"
			if tt.entry != nil {
				id = tt.entry.ID
			}
			finder.EXPECT().GetEntryByID(gomock.Any(), id).Return(tt.entry, tt.findErr)

			outputDirectory := filepath.Join(t.TempDir(), "export")
			w := NewWriter(finder, "", outputDirectory)

			got, err := w.Export(context.Background(), id, tt.formats...)
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)

			var gotExtensions []string
			for _, path := range got {
				gotExtensions = append(gotExtensions, filepath.Ext(path))
				_, err := os.Stat(path)
				assert.NoError(t, err, path)
			}
			assert.Equal(t, tt.wantExtensions, gotExtensions)
		})
	}
}

func TestWriteSpreadsheet(t *testing.T) {
	tests := []struct {
		name      string
		entry     entry.Entry
		wantSheet string
		wantRows  [][]string
	}{
		{
			name:      "flashcards",
			entry:     testutil.FlashcardEntry("f1", 1, 2),
			wantSheet: FlashcardsSheet,
			wantRows: [][]string{
				{"Front", "Back"},
				{"Question 1", "Answer 1"},
				{"Question 2", "Answer 2"},
			},
		},
		{
			name:      "questions",
			entry:     testutil.McqEntry("q1", 1, 1),
			wantSheet: QuestionsSheet,
			wantRows: [][]string{
				{"Question", "A", "B", "C", "D", "Answer"},
				{"Question 1", "A", "B", "C", "D", "B"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sheet.xlsx")
			require.NoError(t, WriteSpreadsheet(path, tt.entry))

			f, err := excelize.OpenFile(path)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, []string{tt.wantSheet}, f.GetSheetList())
			rows, err := f.GetRows(tt.wantSheet)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
