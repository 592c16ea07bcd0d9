package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/generation"
	"github.com/ncheta/ncheta/internal/observable"
)

const missingAPIKeyMessage = "Please add your API key in Settings."

// InputUIState is one of InputIdle, InputLoading, InputSaved or InputError.
type InputUIState interface {
	isInputUIState()
}

type InputIdle struct{}

type InputLoading struct {
	Operation string
}

// InputSaved is reached after content was generated and the entry stored.
type InputSaved struct {
	Entry  entry.Entry
	Synced bool
	// SyncWarning is set when the entry was kept on this device only.
	SyncWarning string
}

type InputError struct {
	Message string
}

func (InputIdle) isInputUIState()    {}
func (InputLoading) isInputUIState() {}
func (InputSaved) isInputUIState()   {}
func (InputError) isInputUIState()   {}

// InputSession holds the pending source text and turns it into a saved entry.
type InputSession struct {
	client  generation.Client
	repo    EntryRepository
	apiKey  observable.Observable[string]
	premium PremiumStatus
	scope   *scope
	now     func() time.Time

	mu        sync.Mutex
	inputText *observable.Value[string]
	source    *observable.Value[entry.InputSourceType]
	state     *observable.Value[InputUIState]
}

func NewInputSession(
	ctx context.Context,
	client generation.Client,
	repo EntryRepository,
	apiKey observable.Observable[string],
	premium PremiumStatus,
) *InputSession {
	return &InputSession{
		client:    client,
		repo:      repo,
		apiKey:    apiKey,
		premium:   premium,
		scope:     newScope(ctx),
		now:       time.Now,
		inputText: observable.NewValue(""),
		source:    observable.NewValue(entry.InputSourceManual),
		state:     observable.NewValue[InputUIState](InputIdle{}),
	}
}

func (s *InputSession) InputText() observable.Observable[string] {
	return s.inputText
}

func (s *InputSession) InputSource() observable.Observable[entry.InputSourceType] {
	return s.source
}

func (s *InputSession) State() observable.Observable[InputUIState] {
	return s.state
}

func (s *InputSession) Close() {
	s.scope.close()
}

func (s *InputSession) SetInputText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputText.Set(text)
	if strings.TrimSpace(text) == "" {
		s.source.Set(entry.InputSourceManual)
	}
}

// Reset clears the input and returns to Idle.
func (s *InputSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputText.Set("")
	s.source.Set(entry.InputSourceManual)
	s.state.Set(InputIdle{})
}

// DismissError returns to Idle from Error or Saved, keeping the input.
func (s *InputSession) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state.Get().(type) {
	case InputError, InputSaved:
		s.state.Set(InputIdle{})
	}
}

// begin moves to Loading unless another operation is running.
func (s *InputSession) begin(operation string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.state.Get().(InputLoading); busy {
		return false
	}
	s.state.Set(InputLoading{Operation: operation})
	return true
}

func (s *InputSession) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Set(InputError{Message: apperror.Message(err)})
}

func (s *InputSession) requireAPIKey() (string, bool) {
	apiKey := strings.TrimSpace(s.apiKey.Get())
	if apiKey == "" {
		s.fail(apperror.NewValidation("apiKey", missingAPIKeyMessage))
		return "", false
	}
	return apiKey, true
}

// LoadDocument replaces the input with the text of a plain-text document.
func (s *InputSession) LoadDocument(name string, data []byte) {
	if !utf8.Valid(data) {
		s.fail(apperror.NewValidation("document", "%s is not a text document.", filepath.Base(name)))
		return
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		s.fail(apperror.NewValidation("document", "%s is empty.", filepath.Base(name)))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputText.Set(text)
	s.source.Set(entry.InputSourceDocument)
	s.state.Set(InputIdle{})
}

// ExtractTextFromImage replaces the input with the text recognised in image.
func (s *InputSession) ExtractTextFromImage(image []byte) {
	s.fillFromMedia("extract text", entry.InputSourceImage, func(ctx context.Context, apiKey string) (string, error) {
		return s.client.GetTextFromImage(ctx, image, apiKey)
	})
}

// TranscribeAudio replaces the input with a transcript of audio. The transcript
// is editable, so the entry counts as typed input.
func (s *InputSession) TranscribeAudio(audio []byte, mimeType string) {
	s.fillFromMedia("transcribe audio", entry.InputSourceManual, func(ctx context.Context, apiKey string) (string, error) {
		return s.client.TranscribeAudio(ctx, audio, mimeType, apiKey)
	})
}

func (s *InputSession) fillFromMedia(operation string, source entry.InputSourceType, fn func(ctx context.Context, apiKey string) (string, error)) {
	apiKey, ok := s.requireAPIKey()
	if !ok {
		return
	}
	if !s.begin(operation) {
		return
	}

	s.scope.run(func(ctx context.Context) {
		text, err := fn(ctx, apiKey)
		if err != nil {
			slog.Default().Error("failed to read input", "operation", operation, "error", err)
			s.fail(err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.inputText.Set(text)
		s.source.Set(source)
		s.state.Set(InputIdle{})
	})
}

// Generate asks the model for content of kind from the current input and saves the entry.
func (s *InputSession) Generate(kind entry.ContentKind, title string) {
	text := s.inputText.Get()
	if strings.TrimSpace(text) == "" {
		s.fail(apperror.NewValidation("inputText", "Input text cannot be empty."))
		return
	}
	title = strings.TrimSpace(title)
	if title == "" {
		s.fail(apperror.NewValidation("title", "Title cannot be empty."))
		return
	}
	apiKey, ok := s.requireAPIKey()
	if !ok {
		return
	}
	if !s.begin("generate " + string(kind)) {
		return
	}
	source := s.source.Get()

	s.scope.run(func(ctx context.Context) {
		content, err := generation.Generate(ctx, s.client, kind, text, apiKey)
		if err != nil {
			slog.Default().Error("failed to generate content", "kind", kind, "error", err)
			s.fail(err)
			return
		}

		e := entry.New(title, text, source, content, s.now())
		result, err := s.repo.InsertEntry(ctx, e, s.premium.IsPremium())
		if err != nil {
			s.fail(fmt.Errorf("repo.InsertEntry > %w", err))
			return
		}

		saved := InputSaved{Entry: e, Synced: result.Synced}
		if result.RemoteErr != nil {
			saved.SyncWarning = "Saved on this device only: " + apperror.Message(result.RemoteErr)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state.Set(saved)
	})
}
