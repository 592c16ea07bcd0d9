package assets

import (
	"fmt"
	"io"
	"time"
)

// EntrySheet is the data rendered into a printable study sheet.
type EntrySheet struct {
	Title           string
	CreatedAt       time.Time
	LastPracticedAt *time.Time
	SourceText      string

	// Exactly one of Summary, Flashcards and Questions is set.
	Summary    string
	Flashcards []SheetFlashcard
	Questions  []SheetQuestion
}

type SheetFlashcard struct {
	Front string
	Back  string
}

type SheetQuestion struct {
	Text    string
	Options []SheetOption
}

type SheetOption struct {
	// Label is the letter shown before the option, A to D.
	Label   string
	Text    string
	Correct bool
}

func WriteEntrySheet(output io.Writer, templatePath string, sheet EntrySheet) error {
	tmpl, err := ParseEntrySheetTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("ParseEntrySheetTemplate() > %w", err)
	}
	if err := tmpl.Execute(output, sheet); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
