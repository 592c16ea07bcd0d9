package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntrySheetTemplate(t *testing.T) {
	tests := []struct {
		name         string
		templatePath string

		wantTemplateName string
	}{
		{
			name: "uses filesystem template when available",
			templatePath: func(t *testing.T) string {
				templatePath := filepath.Join(t.TempDir(), "custom.md.go.tmpl")
				require.NoError(t, os.WriteFile(templatePath, []byte(`Custom: {{ .Title }}`), 0644))
				return templatePath
			}(t),
			wantTemplateName: "custom.md.go.tmpl",
		},
		{
			name:             "uses embedded template when file doesn't exist",
			templatePath:     "/non/existent/invalid.md.go.tmpl",
			wantTemplateName: "entry-sheet.md.go.tmpl",
		},
		{
			name:             "uses embedded template when path is empty",
			templatePath:     "",
			wantTemplateName: "entry-sheet.md.go.tmpl",
		},
		{
			name: "falls back when filesystem template is broken",
			templatePath: func(t *testing.T) string {
				templatePath := filepath.Join(t.TempDir(), "broken.md.go.tmpl")
				require.NoError(t, os.WriteFile(templatePath, []byte(`{{ .Title `), 0644))
				return templatePath
			}(t),
			wantTemplateName: "entry-sheet.md.go.tmpl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntrySheetTemplate(tt.templatePath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTemplateName, got.Name())
		})
	}
}

func TestWriteEntrySheet(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	practicedAt := time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		sheet EntrySheet

		wantContains    []string
		wantNotContains []string
	}{
		{
			name: "summary",
			sheet: EntrySheet{
				Title:      "Photosynthesis",
				CreatedAt:  createdAt,
				SourceText: "Plants use light.",
				Summary:    "Plants turn light into sugar.",
			},
			wantContains: []string{
				"# Photosynthesis",
				"_Created 2024-03-01_",
				"## Summary\n\nPlants turn light into sugar.",
				"## Source\n\nPlants use light.",
			},
			wantNotContains: []string{"## Flashcards", "## Questions", "last practiced"},
		},
		{
			name: "flashcards",
			sheet: EntrySheet{
				Title:           "Cells",
				CreatedAt:       createdAt,
				LastPracticedAt: &practicedAt,
				Flashcards: []SheetFlashcard{
					{Front: "Mitochondria", Back: "Powerhouse of the cell"},
					{Front: "Nucleus", Back: "Holds DNA"},
				},
			},
			wantContains: []string{
				"_Created 2024-03-01, last practiced 2024-03-05_",
				"### 1. Mitochondria\n\nPowerhouse of the cell",
				"### 2. Nucleus\n\nHolds DNA",
			},
			wantNotContains: []string{"## Summary", "## Source"},
		},
		{
			name: "questions",
			sheet: EntrySheet{
				Title:     "Capitals",
				CreatedAt: createdAt,
				Questions: []SheetQuestion{
					{
						Text: "Capital of France?",
						Options: []SheetOption{
							{Label: "A", Text: "Berlin"},
							{Label: "B", Text: "Paris", Correct: true},
							{Label: "C", Text: "Rome"},
							{Label: "D", Text: "Madrid"},
						},
					},
				},
			},
			wantContains: []string{
				"## Questions",
				"### 1. Capital of France?",
				"- A. Berlin\n- B. Paris **(answer)**\n- C. Rome\n- D. Madrid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteEntrySheet(&buf, "", tt.sheet))

			got := buf.String()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
			for _, notWant := range tt.wantNotContains {
				assert.NotContains(t, got, notWant)
			}
		})
	}
}

func TestWriteEntrySheet_FilesystemTemplate(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "sheet.md.go.tmpl")
	content := `{{ .Title }}:{{ range $i, $c := .Flashcards }} {{ inc $i }}={{ $c.Front }}{{ end }}`
	require.NoError(t, os.WriteFile(templatePath, []byte(content), 0644))

	var buf bytes.Buffer
	err := WriteEntrySheet(&buf, templatePath, EntrySheet{
		Title:      "Deck",
		Flashcards: []SheetFlashcard{{Front: "a", Back: "b"}, {Front: "c", Back: "d"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Deck: 1=a 2=c", buf.String())
}
