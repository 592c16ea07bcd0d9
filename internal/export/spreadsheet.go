package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
)

const (
	FlashcardsSheet = "Flashcards"
	QuestionsSheet  = "Questions"
)

// WriteSpreadsheet writes the practice items of e to an XLSX file, one row per item.
func WriteSpreadsheet(path string, e entry.Entry) error {
	var sheet string
	var rows [][]any
	switch c := e.Content.(type) {
	case entry.FlashcardSet:
		sheet = FlashcardsSheet
		rows = append(rows, []any{"Front", "Back"})
		for _, card := range c.Items {
			rows = append(rows, []any{card.Front, card.Back})
		}
	case entry.McqSet:
		sheet = QuestionsSheet
		rows = append(rows, []any{"Question", "A", "B", "C", "D", "Answer"})
		for _, q := range c.Items {
			row := []any{q.QuestionText}
			for _, option := range q.Options {
				row = append(row, option)
			}
			row = append(row, optionLabel(q.CorrectOptionIndex))
			rows = append(rows, row)
		}
	default:
		return apperror.NewValidation("format", "Only flashcards and questions can be exported to a spreadsheet.")
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("f.SetSheetName(%s) > %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName() > %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("f.SetSheetRow(%s, %s) > %w", sheet, cell, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("f.NewStyle() > %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("excelize.CoordinatesToCellName() > %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("f.SetCellStyle() > %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 48); err != nil {
		return fmt.Errorf("f.SetColWidth() > %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("f.SaveAs(%s) > %w", path, err)
	}
	return nil
}
