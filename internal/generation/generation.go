// Package generation defines the content generation client used to turn
// source text into study material.
package generation

//go:generate mockgen -source=generation.go -destination=../mocks/generation/mock_client.go -package=mock_generation

import (
	"context"
	"fmt"

	"github.com/ncheta/ncheta/internal/entry"
)

// Client calls a generative model on behalf of the user, with the user's API key.
type Client interface {
	GenerateSummary(ctx context.Context, text, apiKey string) (string, error)
	GenerateFlashcards(ctx context.Context, text, apiKey string) ([]entry.Flashcard, error)
	GenerateMcqs(ctx context.Context, text, apiKey string) ([]entry.MultipleChoiceQuestion, error)
	// GetTextFromImage extracts the text in an image.
	GetTextFromImage(ctx context.Context, image []byte, apiKey string) (string, error)
	// TranscribeAudio converts speech to text.
	TranscribeAudio(ctx context.Context, audio []byte, mimeType, apiKey string) (string, error)
}

// Generate produces content of kind from text.
func Generate(ctx context.Context, client Client, kind entry.ContentKind, text, apiKey string) (entry.Content, error) {
	switch kind {
	case entry.KindSummary:
		summary, err := client.GenerateSummary(ctx, text, apiKey)
		if err != nil {
			return nil, err
		}
		return entry.Summary{Text: summary}, nil
	case entry.KindFlashcards:
		cards, err := client.GenerateFlashcards(ctx, text, apiKey)
		if err != nil {
			return nil, err
		}
		return entry.FlashcardSet{Items: cards}, nil
	case entry.KindMcqs:
		questions, err := client.GenerateMcqs(ctx, text, apiKey)
		if err != nil {
			return nil, err
		}
		return entry.McqSet{Items: questions}, nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}
