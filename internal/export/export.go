// Package export writes entries as printable study sheets and spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/assets"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/pdf"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat parses a format name such as "pdf".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatMarkdown, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", apperror.NewValidation("format", "Unsupported export format %q.", s)
}

type EntryFinder interface {
	GetEntryByID(ctx context.Context, id string) (*entry.Entry, error)
}

type Writer struct {
	finder          EntryFinder
	templatePath    string
	outputDirectory string
	pdfOptions      []pdf.Option
	logger          *slog.Logger
}

func NewWriter(finder EntryFinder, templatePath, outputDirectory string, pdfOptions ...pdf.Option) *Writer {
	return &Writer{
		finder:          finder,
		templatePath:    templatePath,
		outputDirectory: outputDirectory,
		pdfOptions:      pdfOptions,
		logger:          slog.Default(),
	}
}

// Export writes the entry with the given id in each format and returns the written paths.
func (w *Writer) Export(ctx context.Context, id string, formats ...Format) ([]string, error) {
	if len(formats) == 0 {
		formats = []Format{FormatMarkdown}
	}

	e, err := w.finder.GetEntryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finder.GetEntryByID(%s) > %w", id, err)
	}
	if e == nil {
		return nil, fmt.Errorf("entry %s: %w", id, apperror.ErrNotFound)
	}

	if err := os.MkdirAll(w.outputDirectory, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", w.outputDirectory, err)
	}

	base := filepath.Join(w.outputDirectory, FileBaseName(*e))
	var paths []string
	var markdownPath string
	for _, format := range formats {
		switch format {
		case FormatMarkdown, FormatPDF:
			if markdownPath == "" {
				markdownPath = base + ".md"
				if err := w.writeMarkdown(markdownPath, *e); err != nil {
					return paths, err
				}
				paths = append(paths, markdownPath)
			}
			if format == FormatPDF {
				pdfPath, err := pdf.ConvertMarkdownToPDF(markdownPath, w.pdfOptions...)
				if err != nil {
					return paths, fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
				}
				paths = append(paths, pdfPath)
			}
		case FormatXLSX:
			xlsxPath := base + ".xlsx"
			if err := WriteSpreadsheet(xlsxPath, *e); err != nil {
				return paths, err
			}
			paths = append(paths, xlsxPath)
		default:
			return paths, apperror.NewValidation("format", "Unsupported export format %q.", string(format))
		}
	}

	w.logger.Info("exported entry",
		slog.String("id", e.ID),
		slog.Any("paths", paths),
	)
	return paths, nil
}

func (w *Writer) writeMarkdown(path string, e entry.Entry) error {
	output, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = output.Close()
	}()

	if err := assets.WriteEntrySheet(output, w.templatePath, NewEntrySheet(e)); err != nil {
		return fmt.Errorf("assets.WriteEntrySheet(%s, %s) > %w", path, w.templatePath, err)
	}
	return nil
}

// NewEntrySheet converts e into template data.
func NewEntrySheet(e entry.Entry) assets.EntrySheet {
	sheet := assets.EntrySheet{
		Title:      e.Title,
		CreatedAt:  time.UnixMilli(e.CreatedAt).UTC(),
		SourceText: e.SourceText,
	}
	if e.LastPracticedAt != nil {
		at := time.UnixMilli(*e.LastPracticedAt).UTC()
		sheet.LastPracticedAt = &at
	}

	switch c := e.Content.(type) {
	case entry.Summary:
		sheet.Summary = c.Text
	case entry.FlashcardSet:
		sheet.Flashcards = make([]assets.SheetFlashcard, len(c.Items))
		for i, card := range c.Items {
			sheet.Flashcards[i] = assets.SheetFlashcard{Front: card.Front, Back: card.Back}
		}
	case entry.McqSet:
		sheet.Questions = make([]assets.SheetQuestion, len(c.Items))
		for i, q := range c.Items {
			options := make([]assets.SheetOption, len(q.Options))
			for j, option := range q.Options {
				options[j] = assets.SheetOption{
					Label:   optionLabel(j),
					Text:    option,
					Correct: j == q.CorrectOptionIndex,
				}
			}
			sheet.Questions[i] = assets.SheetQuestion{Text: q.QuestionText, Options: options}
		}
	}
	return sheet
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// FileBaseName returns a file name without extension that is unique per entry.
func FileBaseName(e entry.Entry) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(e.Title), "-"), "-")
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if slug == "" {
		return id
	}
	return slug + "-" + id
}
