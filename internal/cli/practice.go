package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/session"
)

const optionLabels = "ABCD"

// PracticeCLI walks through one entry, a card or a question per step
type PracticeCLI struct {
	*InteractiveCLI
	practice *session.PracticeSession
}

// NewPracticeCLI loads id into practice and returns a CLI driving it
func NewPracticeCLI(base *InteractiveCLI, practice *session.PracticeSession, id string) *PracticeCLI {
	practice.LoadEntry(id)
	return &PracticeCLI{
		InteractiveCLI: base,
		practice:       practice,
	}
}

func (p *PracticeCLI) Session(ctx context.Context) error {
	switch state := p.practice.State().Get().(type) {
	case session.PracticeError:
		return errors.New(state.Message)
	case session.PracticeSuccess:
		switch content := state.State.Entry.Content.(type) {
		case entry.Summary:
			return p.showSummary(state.State.Entry, content)
		case entry.FlashcardSet:
			return p.flashcardStep(state.State, content.Items)
		case entry.McqSet:
			return p.questionStep(state.State, content.Items)
		}
		return fmt.Errorf("entry %s has no content to practice", state.State.Entry.ID)
	}
	return errors.New("the entry is still loading")
}

func (p *PracticeCLI) showSummary(e entry.Entry, summary entry.Summary) error {
	_, _ = p.bold.Fprintln(p.stdoutWriter, e.Title)
	_, _ = fmt.Fprintln(p.stdoutWriter, summary.Text)
	return errEnd
}

func (p *PracticeCLI) flashcardStep(state session.PracticeState, cards []entry.Flashcard) error {
	if state.IsPracticeComplete {
		_, _ = fmt.Fprintf(p.stdoutWriter, "You reviewed all %d cards.\n", len(cards))
		return p.offerRestart()
	}

	if state.CurrentCardIndex >= len(cards) {
		return fmt.Errorf("entry has no card %d of %d", state.CurrentCardIndex+1, len(cards))
	}
	card := cards[state.CurrentCardIndex]
	if !state.IsCardFlipped {
		_, _ = p.faint.Fprintf(p.stdoutWriter, "Card %d/%d\n", state.CurrentCardIndex+1, len(cards))
		_, _ = p.bold.Fprintln(p.stdoutWriter, card.Front)
		answer, err := p.ReadLine("Press Enter to flip (q to quit): ")
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}
		if isQuit(answer) {
			return errEnd
		}
		p.practice.FlipCard()
		return nil
	}

	_, _ = p.italic.Fprintln(p.stdoutWriter, card.Back)
	answer, err := p.ReadLine("Press Enter for the next card (q to quit): ")
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	if isQuit(answer) {
		return errEnd
	}
	p.practice.NextCard()
	return nil
}

func (p *PracticeCLI) questionStep(state session.PracticeState, questions []entry.MultipleChoiceQuestion) error {
	if state.IsPracticeComplete {
		_, _ = p.bold.Fprintf(p.stdoutWriter, "Score: %d/%d\n", state.CorrectAnswers, len(questions))
		return p.offerRestart()
	}

	if state.CurrentQuestionIndex >= len(questions) {
		return fmt.Errorf("entry has no question %d of %d", state.CurrentQuestionIndex+1, len(questions))
	}
	question := questions[state.CurrentQuestionIndex]
	if len(question.Options) > len(optionLabels) || question.CorrectOptionIndex < 0 || question.CorrectOptionIndex >= len(question.Options) {
		return fmt.Errorf("question %d has a malformed option list", state.CurrentQuestionIndex+1)
	}
	if state.IsAnswerRevealed {
		correct := question.CorrectOptionIndex
		if state.SelectedOptionIndex != nil && *state.SelectedOptionIndex == correct {
			_, _ = p.bold.Fprintln(p.stdoutWriter, "Correct!")
		} else {
			_, _ = p.bold.Fprintf(p.stdoutWriter, "Incorrect. The answer is %c. %s\n", optionLabels[correct], question.Options[correct])
		}
		answer, err := p.ReadLine("Press Enter for the next question (q to quit): ")
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}
		if isQuit(answer) {
			return errEnd
		}
		p.practice.NextQuestion()
		return nil
	}

	_, _ = p.faint.Fprintf(p.stdoutWriter, "Question %d/%d\n", state.CurrentQuestionIndex+1, len(questions))
	_, _ = p.bold.Fprintln(p.stdoutWriter, question.QuestionText)
	for i, option := range question.Options {
		_, _ = fmt.Fprintf(p.stdoutWriter, "  %c. %s\n", optionLabels[i], option)
	}
	answer, err := p.ReadLine("Your answer (q to quit): ")
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	if isQuit(answer) {
		return errEnd
	}
	index, ok := parseOption(answer, len(question.Options))
	if !ok {
		_, _ = fmt.Fprintf(p.stdoutWriter, "Choose one of %s.\n", strings.Join(strings.Split(optionLabels[:len(question.Options)], ""), ", "))
		return nil
	}
	p.practice.SelectOption(index)
	p.practice.CheckAnswer()
	return nil
}

func (p *PracticeCLI) offerRestart() error {
	again, err := p.Confirm("Practice again?")
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	if !again {
		return errEnd
	}
	p.practice.RestartPractice()
	return nil
}

// parseOption accepts a letter (A-D) or a 1-based number.
func parseOption(answer string, count int) (int, bool) {
	answer = strings.ToUpper(strings.TrimSpace(answer))
	if len(answer) != 1 {
		return 0, false
	}
	index := strings.IndexByte(optionLabels, answer[0])
	if index < 0 && answer[0] >= '1' && answer[0] <= '9' {
		index = int(answer[0] - '1')
	}
	if index < 0 || index >= count {
		return 0, false
	}
	return index, true
}

func isQuit(answer string) bool {
	switch strings.ToLower(answer) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
