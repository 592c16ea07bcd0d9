// Package entry defines the study entry model shared by every layer.
package entry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ncheta/ncheta/internal/apperror"
)

// InputSourceType records how the source text of an entry was obtained.
type InputSourceType string

const (
	InputSourceManual   InputSourceType = "MANUAL"
	InputSourceDocument InputSourceType = "DOCUMENT"
	InputSourceImage    InputSourceType = "IMAGE"
)

// ParseInputSourceType parses the stored name of an input source.
func ParseInputSourceType(s string) (InputSourceType, error) {
	switch t := InputSourceType(strings.ToUpper(s)); t {
	case InputSourceManual, InputSourceDocument, InputSourceImage:
		return t, nil
	}
	return "", fmt.Errorf("unknown input source type %q", s)
}

// Entry is one unit of study material: the source text and the content
// generated from it.
type Entry struct {
	ID              string
	Title           string
	SourceText      string
	InputSourceType InputSourceType
	Content         Content
	// CreatedAt is the creation time in epoch milliseconds.
	CreatedAt int64
	// LastPracticedAt is set once a practice session over the entry completes.
	LastPracticedAt *int64
}

// New creates an entry with a fresh ID.
func New(title, sourceText string, source InputSourceType, content Content, now time.Time) Entry {
	return Entry{
		ID:              uuid.NewString(),
		Title:           title,
		SourceText:      sourceText,
		InputSourceType: source,
		Content:         content,
		CreatedAt:       now.UnixMilli(),
	}
}

// Validate checks that e can be persisted.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return apperror.NewValidation("id", "entry id cannot be blank")
	}
	if strings.TrimSpace(e.Title) == "" {
		return apperror.NewValidation("title", "Title cannot be empty.")
	}
	if _, err := ParseInputSourceType(string(e.InputSourceType)); err != nil {
		return apperror.NewValidation("inputSourceType", "%s", err.Error())
	}
	if err := ValidateContent(e.Content); err != nil {
		return fmt.Errorf("entry %s > %w", e.ID, err)
	}
	return nil
}

// Document is the serialized form of an Entry, used by JSON and YAML.
type Document struct {
	ID              string          `json:"id" yaml:"id"`
	Title           string          `json:"title" yaml:"title"`
	SourceText      string          `json:"sourceText" yaml:"source_text"`
	InputSourceType InputSourceType `json:"inputSourceType" yaml:"input_source_type"`
	Content         contentDocument `json:"content" yaml:"content"`
	CreatedAt       int64           `json:"createdAt" yaml:"created_at"`
	LastPracticedAt *int64          `json:"lastPracticedAt" yaml:"last_practiced_at,omitempty"`
}

func (e Entry) document() (Document, error) {
	content, err := toContentDocument(e.Content)
	if err != nil {
		return Document{}, fmt.Errorf("entry %s > %w", e.ID, err)
	}
	return Document{
		ID:              e.ID,
		Title:           e.Title,
		SourceText:      e.SourceText,
		InputSourceType: e.InputSourceType,
		Content:         content,
		CreatedAt:       e.CreatedAt,
		LastPracticedAt: e.LastPracticedAt,
	}, nil
}

func (d Document) entry() (Entry, error) {
	content, err := d.Content.toContent()
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s > %w", d.ID, err)
	}
	return Entry{
		ID:              d.ID,
		Title:           d.Title,
		SourceText:      d.SourceText,
		InputSourceType: d.InputSourceType,
		Content:         content,
		CreatedAt:       d.CreatedAt,
		LastPracticedAt: d.LastPracticedAt,
	}, nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := doc.entry()
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

func (e Entry) MarshalYAML() (any, error) {
	return e.document()
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var doc Document
	if err := node.Decode(&doc); err != nil {
		return err
	}
	decoded, err := doc.entry()
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Flashcards returns the cards of e, or false when e is not a flashcard entry.
func (e Entry) Flashcards() ([]Flashcard, bool) {
	set, ok := e.Content.(FlashcardSet)
	return set.Items, ok
}

// Questions returns the questions of e, or false when e is not a question entry.
func (e Entry) Questions() ([]MultipleChoiceQuestion, bool) {
	set, ok := e.Content.(McqSet)
	return set.Items, ok
}
