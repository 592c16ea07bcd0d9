package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ncheta/ncheta/internal/entry"
)

// StripCodeFence removes a surrounding Markdown code fence such as ```json ... ```.
// Content that is already a JSON document is returned as is, even when its
// string values contain backticks.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}
	body := trimmed[start+3:]
	// Drop the info string, e.g. "json".
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		body = body[newline+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func decodeStrict(content string, v any) error {
	decoder := json.NewDecoder(bytes.NewReader([]byte(StripCodeFence(content))))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}
	return nil
}

// ParseFlashcards parses a {"flashcards": [{"front", "back"}]} document.
func ParseFlashcards(content string) ([]entry.Flashcard, error) {
	var payload struct {
		Flashcards *[]entry.Flashcard `json:"flashcards"`
	}
	if err := decodeStrict(content, &payload); err != nil {
		return nil, err
	}
	if payload.Flashcards == nil {
		return nil, fmt.Errorf("response has no \"flashcards\" array: %s", content)
	}
	if err := entry.ValidateFlashcards(*payload.Flashcards); err != nil {
		return nil, fmt.Errorf("invalid flashcards > %w", err)
	}
	return *payload.Flashcards, nil
}

// ParseMcqs parses a {"questions": [{"questionText", "options", "correctOptionIndex"}]} document.
func ParseMcqs(content string) ([]entry.MultipleChoiceQuestion, error) {
	var payload struct {
		Questions *[]struct {
			QuestionText       string   `json:"questionText"`
			Options            []string `json:"options"`
			CorrectOptionIndex *int     `json:"correctOptionIndex"`
		} `json:"questions"`
	}
	if err := decodeStrict(content, &payload); err != nil {
		return nil, err
	}
	if payload.Questions == nil {
		return nil, fmt.Errorf("response has no \"questions\" array: %s", content)
	}

	questions := make([]entry.MultipleChoiceQuestion, 0, len(*payload.Questions))
	for i, q := range *payload.Questions {
		if q.CorrectOptionIndex == nil {
			return nil, fmt.Errorf("question %d has no correctOptionIndex", i)
		}
		questions = append(questions, entry.MultipleChoiceQuestion{
			QuestionText:       q.QuestionText,
			Options:            q.Options,
			CorrectOptionIndex: *q.CorrectOptionIndex,
		})
	}
	if err := entry.ValidateQuestions(questions); err != nil {
		return nil, fmt.Errorf("invalid questions > %w", err)
	}
	return questions, nil
}
