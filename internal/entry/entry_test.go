package entry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ncheta/ncheta/internal/apperror"
)

func int64Ptr(v int64) *int64 { return &v }

func validQuestion() MultipleChoiceQuestion {
	return MultipleChoiceQuestion{
		QuestionText:       "Which planet is closest to the sun?",
		Options:            []string{"Mercury", "Venus", "Earth", "Mars"},
		CorrectOptionIndex: 0,
	}
}

func TestEntry_JSON(t *testing.T) {
	practiced := int64Ptr(1_700_000_100_000)
	tests := []struct {
		name     string
		entry    Entry
		wantJSON string
	}{
		{
			name: "summary",
			entry: Entry{
				ID:              "e1",
				Title:           "Cells",
				SourceText:      "Cells are the basic unit of life.",
				InputSourceType: InputSourceManual,
				Content:         Summary{Text: "Cells are units."},
				CreatedAt:       1_700_000_000_000,
			},
			wantJSON: `{"id":"e1","title":"Cells","sourceText":"Cells are the basic unit of life.","inputSourceType":"MANUAL","content":{"type":"summary","text":"Cells are units."},"createdAt":1700000000000,"lastPracticedAt":null}`,
		},
		{
			name: "flashcards with last practiced time",
			entry: Entry{
				ID:              "e2",
				Title:           "Capitals",
				SourceText:      "Paris is the capital of France.",
				InputSourceType: InputSourceDocument,
				Content:         FlashcardSet{Items: []Flashcard{{Front: "France", Back: "Paris"}}},
				CreatedAt:       1_700_000_000_000,
				LastPracticedAt: practiced,
			},
			wantJSON: `{"id":"e2","title":"Capitals","sourceText":"Paris is the capital of France.","inputSourceType":"DOCUMENT","content":{"type":"flashcards","flashcards":[{"front":"France","back":"Paris"}]},"createdAt":1700000000000,"lastPracticedAt":1700000100000}`,
		},
		{
			name: "multiple choice questions",
			entry: Entry{
				ID:              "e3",
				Title:           "Planets",
				SourceText:      "Mercury orbits closest.",
				InputSourceType: InputSourceImage,
				Content:         McqSet{Items: []MultipleChoiceQuestion{validQuestion()}},
				CreatedAt:       1,
			},
			wantJSON: `{"id":"e3","title":"Planets","sourceText":"Mercury orbits closest.","inputSourceType":"IMAGE","content":{"type":"mcqs","questions":[{"questionText":"Which planet is closest to the sun?","options":["Mercury","Venus","Earth","Mars"],"correctOptionIndex":0}]},"createdAt":1,"lastPracticedAt":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.entry)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(got))

			var decoded Entry
			require.NoError(t, json.Unmarshal(got, &decoded))
			assert.Equal(t, tt.entry, decoded)
		})
	}
}

func TestEntry_YAML(t *testing.T) {
	original := Entry{
		ID:              "e1",
		Title:           "Capitals",
		SourceText:      "Paris is the capital of France.",
		InputSourceType: InputSourceManual,
		Content: FlashcardSet{Items: []Flashcard{
			{Front: "France", Back: "Paris"},
			{Front: "Japan", Back: "Tokyo"},
		}},
		CreatedAt: 1_700_000_000_000,
	}

	data, err := yaml.Marshal([]Entry{original})
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_text: Paris is the capital of France.")
	assert.Contains(t, string(data), "type: flashcards")

	var decoded []Entry
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, original, decoded[0])
}

func TestDecodeContent(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Content
		wantErr bool
	}{
		{
			name: "summary",
			data: `{"type":"summary","text":"short"}`,
			want: Summary{Text: "short"},
		},
		{
			name: "flashcards without items decodes to an empty set",
			data: `{"type":"flashcards"}`,
			want: FlashcardSet{Items: []Flashcard{}},
		},
		{
			name:    "unknown type",
			data:    `{"type":"essay"}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			data:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeContent([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			encoded, err := EncodeContent(got)
			require.NoError(t, err)
			again, err := DecodeContent(encoded)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestEntry_Validate(t *testing.T) {
	base := New("Planets", "Mercury orbits closest.", InputSourceManual, McqSet{Items: []MultipleChoiceQuestion{validQuestion()}}, time.UnixMilli(1))

	tests := []struct {
		name         string
		modify       func(e *Entry)
		wantErr      bool
		wantContains string
	}{
		{
			name:   "valid entry",
			modify: func(e *Entry) {},
		},
		{
			name:         "blank title",
			modify:       func(e *Entry) { e.Title = "  " },
			wantErr:      true,
			wantContains: "Title cannot be empty.",
		},
		{
			name:         "unknown input source",
			modify:       func(e *Entry) { e.InputSourceType = "AUDIO" },
			wantErr:      true,
			wantContains: "unknown input source type",
		},
		{
			name: "question with three options",
			modify: func(e *Entry) {
				q := validQuestion()
				q.Options = q.Options[:3]
				e.Content = McqSet{Items: []MultipleChoiceQuestion{q}}
			},
			wantErr:      true,
			wantContains: "options must contain 4 items",
		},
		{
			name: "correct index out of range",
			modify: func(e *Entry) {
				q := validQuestion()
				q.CorrectOptionIndex = 4
				e.Content = McqSet{Items: []MultipleChoiceQuestion{q}}
			},
			wantErr:      true,
			wantContains: "correctOptionIndex",
		},
		{
			name: "flashcard with blank back",
			modify: func(e *Entry) {
				e.Content = FlashcardSet{Items: []Flashcard{{Front: "Q", Back: " "}}}
			},
			wantErr:      true,
			wantContains: "back cannot be blank",
		},
		{
			name:         "empty flashcard set",
			modify:       func(e *Entry) { e.Content = FlashcardSet{} },
			wantErr:      true,
			wantContains: "flashcards must not be empty",
		},
		{
			name:         "blank summary",
			modify:       func(e *Entry) { e.Content = Summary{} },
			wantErr:      true,
			wantContains: "summary text cannot be blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.modify(&e)
			err := e.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantContains)
		})
	}
}

func TestNew(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	a := New("t", "s", InputSourceManual, Summary{Text: "x"}, now)
	b := New("t", "s", InputSourceManual, Summary{Text: "x"}, now)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(1_700_000_000_123), a.CreatedAt)
	assert.Nil(t, a.LastPracticedAt)
}

func TestParseContentKind(t *testing.T) {
	kind, err := ParseContentKind("FLASHCARDS")
	require.NoError(t, err)
	assert.Equal(t, KindFlashcards, kind)

	_, err = ParseContentKind("quiz")
	assert.Error(t, err)
}
