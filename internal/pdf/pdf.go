// Package pdf renders Markdown study sheets to PDF.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
)

type options struct {
	orientation string
	paperSize   string
	theme       mdtopdf.Theme
}

type Option func(*options)

// WithLandscape lays pages out horizontally.
func WithLandscape() Option {
	return func(o *options) { o.orientation = "L" }
}

func WithPaperSize(size string) Option {
	return func(o *options) { o.paperSize = size }
}

func WithDarkTheme() Option {
	return func(o *options) { o.theme = mdtopdf.DARK }
}

// Layout names a page layout by the words used in configuration files.
type Layout struct {
	Orientation string
	PaperSize   string
	Theme       string
}

// Options maps l to renderer options. Empty or unknown fields keep the defaults.
func (l Layout) Options() []Option {
	var opts []Option
	if strings.EqualFold(l.Orientation, "landscape") {
		opts = append(opts, WithLandscape())
	}
	if l.PaperSize != "" {
		opts = append(opts, WithPaperSize(l.PaperSize))
	}
	if strings.EqualFold(l.Theme, "dark") {
		opts = append(opts, WithDarkTheme())
	}
	return opts
}

// ConvertMarkdownToPDF converts a markdown file to PDF using mdtopdf package
// The PDF file will be created in the same directory as the markdown file
func ConvertMarkdownToPDF(markdownPath string, opts ...Option) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	o := options{
		orientation: "P",
		paperSize:   "A4",
		theme:       mdtopdf.LIGHT,
	}
	for _, opt := range opts {
		opt(&o)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer(o.orientation, o.paperSize, pdfPath, "", nil, o.theme)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}
