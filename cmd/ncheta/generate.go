package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/session"
)

type generateOptions struct {
	kind      string
	title     string
	document  string
	image     string
	audio     string
	audioMime string
}

func newGenerateCommand() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Generate a summary, flashcards or questions from text, a document, an image or a recording",
		Long: `Generate study content and save it as a new entry.

The source is read from --document, --image or --audio when given, otherwise
from the arguments, otherwise from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := entry.ParseContentKind(opts.kind)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				input := session.NewInputSession(ctx, c.Generation, c.Repository, c.APIKey, c.Subscriptions)
				defer input.Close()
				return runGenerate(cmd.InOrStdin(), cmd.OutOrStdout(), input, kind, opts, args)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", string(entry.KindFlashcards), "content to generate: summary, flashcards or mcqs")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "title of the new entry")
	cmd.Flags().StringVar(&opts.document, "document", "", "plain text document to read")
	cmd.Flags().StringVar(&opts.image, "image", "", "image to extract text from")
	cmd.Flags().StringVar(&opts.audio, "audio", "", "recording to transcribe")
	cmd.Flags().StringVar(&opts.audioMime, "audio-mime", "", "MIME type of the recording, guessed from the extension when empty")
	cmd.MarkFlagsMutuallyExclusive("document", "image", "audio")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func runGenerate(stdin io.Reader, stdout io.Writer, input *session.InputSession, kind entry.ContentKind, opts generateOptions, args []string) error {
	switch {
	case opts.document != "":
		data, err := os.ReadFile(opts.document)
		if err != nil {
			return fmt.Errorf("os.ReadFile(%s) > %w", opts.document, err)
		}
		input.LoadDocument(opts.document, data)
	case opts.image != "":
		data, err := os.ReadFile(opts.image)
		if err != nil {
			return fmt.Errorf("os.ReadFile(%s) > %w", opts.image, err)
		}
		input.ExtractTextFromImage(data)
	case opts.audio != "":
		data, err := os.ReadFile(opts.audio)
		if err != nil {
			return fmt.Errorf("os.ReadFile(%s) > %w", opts.audio, err)
		}
		mimeType := opts.audioMime
		if mimeType == "" {
			mimeType = audioMimeType(opts.audio)
		}
		input.TranscribeAudio(data, mimeType)
	case len(args) > 0:
		input.SetInputText(strings.Join(args, " "))
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("io.ReadAll(stdin) > %w", err)
		}
		input.SetInputText(string(data))
	}
	if failed, ok := input.State().Get().(session.InputError); ok {
		return userError(failed.Message)
	}

	input.Generate(kind, opts.title)
	switch state := input.State().Get().(type) {
	case session.InputSaved:
		_, _ = fmt.Fprintf(stdout, "Saved %q (%s, %d items) as %s\n",
			state.Entry.Title, kind, entry.ItemCount(state.Entry.Content), state.Entry.ID)
		if state.SyncWarning != "" {
			_, _ = fmt.Fprintln(stdout, state.SyncWarning)
		}
		return nil
	case session.InputError:
		return userError(state.Message)
	default:
		return fmt.Errorf("generation did not finish: %T", state)
	}
}

func audioMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".m4a":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
