package entry

import (
	"encoding/json"
	"fmt"
)

// ContentKind identifies which variant of Content an entry carries.
type ContentKind string

const (
	KindSummary    ContentKind = "summary"
	KindFlashcards ContentKind = "flashcards"
	KindMcqs       ContentKind = "mcqs"
)

// ParseContentKind accepts the wire name or the generation name of a kind.
func ParseContentKind(s string) (ContentKind, error) {
	switch s {
	case "summary", "SUMMARY":
		return KindSummary, nil
	case "flashcards", "FLASHCARDS":
		return KindFlashcards, nil
	case "mcqs", "MCQS":
		return KindMcqs, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Content is the generated study material of an entry.
// It is exactly one of Summary, FlashcardSet or McqSet.
type Content interface {
	Kind() ContentKind
	isContent()
}

type Summary struct {
	Text string
}

type FlashcardSet struct {
	Items []Flashcard
}

type McqSet struct {
	Items []MultipleChoiceQuestion
}

func (Summary) Kind() ContentKind      { return KindSummary }
func (FlashcardSet) Kind() ContentKind { return KindFlashcards }
func (McqSet) Kind() ContentKind       { return KindMcqs }

func (Summary) isContent()      {}
func (FlashcardSet) isContent() {}
func (McqSet) isContent()       {}

type Flashcard struct {
	Front string `json:"front" yaml:"front" validate:"notblank"`
	Back  string `json:"back" yaml:"back" validate:"notblank"`
}

type MultipleChoiceQuestion struct {
	QuestionText       string   `json:"questionText" yaml:"question_text" validate:"notblank"`
	Options            []string `json:"options" yaml:"options" validate:"len=4,dive,notblank"`
	CorrectOptionIndex int      `json:"correctOptionIndex" yaml:"correct_option_index" validate:"min=0,max=3"`
}

// ItemCount returns the number of practice items in c.
func ItemCount(c Content) int {
	switch c := c.(type) {
	case FlashcardSet:
		return len(c.Items)
	case McqSet:
		return len(c.Items)
	}
	return 0
}

// contentDocument is the tagged wire form of Content.
type contentDocument struct {
	Type       ContentKind              `json:"type" yaml:"type"`
	Text       string                   `json:"text,omitempty" yaml:"text,omitempty"`
	Flashcards []Flashcard              `json:"flashcards,omitempty" yaml:"flashcards,omitempty"`
	Questions  []MultipleChoiceQuestion `json:"questions,omitempty" yaml:"questions,omitempty"`
}

func toContentDocument(c Content) (contentDocument, error) {
	switch c := c.(type) {
	case Summary:
		return contentDocument{Type: KindSummary, Text: c.Text}, nil
	case FlashcardSet:
		return contentDocument{Type: KindFlashcards, Flashcards: c.Items}, nil
	case McqSet:
		return contentDocument{Type: KindMcqs, Questions: c.Items}, nil
	case nil:
		return contentDocument{}, fmt.Errorf("content is missing")
	}
	return contentDocument{}, fmt.Errorf("unsupported content type %T", c)
}

func (d contentDocument) toContent() (Content, error) {
	switch d.Type {
	case KindSummary:
		return Summary{Text: d.Text}, nil
	case KindFlashcards:
		items := d.Flashcards
		if items == nil {
			items = []Flashcard{}
		}
		return FlashcardSet{Items: items}, nil
	case KindMcqs:
		items := d.Questions
		if items == nil {
			items = []MultipleChoiceQuestion{}
		}
		return McqSet{Items: items}, nil
	}
	return nil, fmt.Errorf("unknown content type %q", d.Type)
}

// EncodeContent serializes c into its tagged JSON form.
func EncodeContent(c Content) ([]byte, error) {
	doc, err := toContentDocument(c)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal() > %w", err)
	}
	return data, nil
}

// DecodeContent parses the tagged JSON form produced by EncodeContent.
func DecodeContent(data []byte) (Content, error) {
	var doc contentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	return doc.toContent()
}
