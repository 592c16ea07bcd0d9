package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/observable"
)

const entryNotFoundMessage = "Entry not found."

// PracticeState is the navigation state over one entry. It is never persisted.
type PracticeState struct {
	Entry                entry.Entry `json:"entry"`
	CurrentCardIndex     int         `json:"currentCardIndex"`
	IsCardFlipped        bool        `json:"isCardFlipped"`
	IsPracticeComplete   bool        `json:"isPracticeComplete"`
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	SelectedOptionIndex  *int        `json:"selectedOptionIndex"`
	IsAnswerRevealed     bool        `json:"isAnswerRevealed"`
	CorrectAnswers       int         `json:"correctAnswers"`
}

func (s PracticeState) clone() PracticeState {
	if s.SelectedOptionIndex != nil {
		selected := *s.SelectedOptionIndex
		s.SelectedOptionIndex = &selected
	}
	return s
}

// PracticeUIState is one of PracticeLoading, PracticeSuccess or PracticeError.
type PracticeUIState interface {
	isPracticeUIState()
}

type PracticeLoading struct{}

type PracticeSuccess struct {
	State PracticeState
}

type PracticeError struct {
	Message string
}

func (PracticeLoading) isPracticeUIState() {}
func (PracticeSuccess) isPracticeUIState() {}
func (PracticeError) isPracticeUIState()   {}

// PracticeSession drives flashcard and multiple-choice practice over a single entry.
// Every mutator is a no-op when its precondition does not hold.
type PracticeSession struct {
	repo  EntryRepository
	scope *scope
	now   func() time.Time

	mu      sync.Mutex
	loadSeq uint64
	marked  bool
	state   *observable.Value[PracticeUIState]
}

func NewPracticeSession(ctx context.Context, repo EntryRepository) *PracticeSession {
	return &PracticeSession{
		repo:  repo,
		scope: newScope(ctx),
		now:   time.Now,
		state: observable.NewValue[PracticeUIState](PracticeLoading{}),
	}
}

func (s *PracticeSession) State() observable.Observable[PracticeUIState] {
	return s.state
}

// Close cancels in-flight work. The session must not be used afterwards.
func (s *PracticeSession) Close() {
	s.scope.close()
}

// LoadEntry replaces the current state with a fresh practice over entry id.
// A load that is overtaken by a newer one is discarded.
func (s *PracticeSession) LoadEntry(id string) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.marked = false
	s.state.Set(PracticeLoading{})
	s.mu.Unlock()

	s.scope.run(func(ctx context.Context) {
		found, err := s.repo.GetEntryByID(ctx, id)

		var next PracticeUIState
		switch {
		case err != nil:
			slog.Default().Error("failed to load entry for practice", "id", id, "error", err)
			next = PracticeError{Message: apperror.Message(err)}
		case found == nil:
			next = PracticeError{Message: entryNotFoundMessage}
		default:
			next = PracticeSuccess{State: PracticeState{Entry: *found}}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.loadSeq || ctx.Err() != nil {
			return
		}
		s.state.Set(next)
	})
}

// mutate applies fn to a copy of the current state when the session is in Success.
// fn reports whether it changed anything.
func (s *PracticeSession) mutate(fn func(state *PracticeState) bool) {
	s.mu.Lock()
	success, ok := s.state.Get().(PracticeSuccess)
	if !ok {
		s.mu.Unlock()
		return
	}
	state := success.State.clone()
	if !fn(&state) {
		s.mu.Unlock()
		return
	}
	s.state.Set(PracticeSuccess{State: state})

	markPracticed := state.IsPracticeComplete && !s.marked
	if markPracticed {
		s.marked = true
	}
	s.mu.Unlock()

	if markPracticed {
		s.markPracticed(state.Entry.ID)
	}
}

func (s *PracticeSession) markPracticed(id string) {
	s.scope.run(func(ctx context.Context) {
		if err := s.repo.MarkPracticed(ctx, id, s.now()); err != nil {
			slog.Default().Warn("failed to record practice time", "id", id, "error", err)
		}
	})
}

func (s *PracticeSession) FlipCard() {
	s.mutate(func(state *PracticeState) bool {
		state.IsCardFlipped = !state.IsCardFlipped
		return true
	})
}

func (s *PracticeSession) NextCard() {
	s.mutate(func(state *PracticeState) bool {
		cards, ok := state.Entry.Flashcards()
		if !ok {
			return false
		}
		if state.CurrentCardIndex+1 >= len(cards) {
			if state.IsPracticeComplete {
				return false
			}
			state.IsPracticeComplete = true
			return true
		}
		state.CurrentCardIndex++
		state.IsCardFlipped = false
		return true
	})
}

// RestartPractice returns to the first card or question and clears the score.
func (s *PracticeSession) RestartPractice() {
	s.mu.Lock()
	s.marked = false
	s.mu.Unlock()

	s.mutate(func(state *PracticeState) bool {
		state.CurrentCardIndex = 0
		state.IsCardFlipped = false
		state.IsPracticeComplete = false
		if _, ok := state.Entry.Questions(); ok {
			state.CurrentQuestionIndex = 0
			state.SelectedOptionIndex = nil
			state.IsAnswerRevealed = false
			state.CorrectAnswers = 0
		}
		return true
	})
}

func (s *PracticeSession) SelectOption(index int) {
	s.mutate(func(state *PracticeState) bool {
		question, ok := currentQuestion(*state)
		if !ok || state.IsAnswerRevealed {
			return false
		}
		if index < 0 || index >= len(question.Options) {
			return false
		}
		state.SelectedOptionIndex = &index
		return true
	})
}

func (s *PracticeSession) CheckAnswer() {
	s.mutate(func(state *PracticeState) bool {
		question, ok := currentQuestion(*state)
		if !ok || state.SelectedOptionIndex == nil || state.IsAnswerRevealed {
			return false
		}
		state.IsAnswerRevealed = true
		if *state.SelectedOptionIndex == question.CorrectOptionIndex {
			state.CorrectAnswers++
		}
		return true
	})
}

func (s *PracticeSession) NextQuestion() {
	s.mutate(func(state *PracticeState) bool {
		questions, ok := state.Entry.Questions()
		if !ok || len(questions) == 0 {
			return false
		}
		if state.CurrentQuestionIndex+1 >= len(questions) {
			if state.IsPracticeComplete {
				return false
			}
			state.IsPracticeComplete = true
			return true
		}
		state.CurrentQuestionIndex++
		state.SelectedOptionIndex = nil
		state.IsAnswerRevealed = false
		return true
	})
}

func currentQuestion(state PracticeState) (entry.MultipleChoiceQuestion, bool) {
	questions, ok := state.Entry.Questions()
	if !ok || state.CurrentQuestionIndex >= len(questions) {
		return entry.MultipleChoiceQuestion{}, false
	}
	return questions[state.CurrentQuestionIndex], true
}
