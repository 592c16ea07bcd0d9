package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/assets"
	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/cli"
	"github.com/ncheta/ncheta/internal/export"
	"github.com/ncheta/ncheta/internal/session"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved entries, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				list := session.NewEntryListSession(ctx, c.Repository, c.Subscriptions)
				defer list.Close()
				return cli.WriteEntryTable(cmd.OutOrStdout(), list.Entries().Get())
			})
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an entry as a study sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				found, err := c.Repository.GetEntryByID(ctx, args[0])
				if err != nil {
					return fmt.Errorf("GetEntryByID(%s) > %w", args[0], err)
				}
				if found == nil {
					return fmt.Errorf("entry %s not found", args[0])
				}
				return assets.WriteEntrySheet(cmd.OutOrStdout(), c.Config.Outputs.TemplatePath, export.NewEntrySheet(*found))
			})
		},
	}
}

func newDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry from this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				found, err := c.Repository.GetEntryByID(ctx, id)
				if err != nil {
					return fmt.Errorf("GetEntryByID(%s) > %w", id, err)
				}
				if found == nil {
					return fmt.Errorf("entry %s not found", id)
				}
				if !yes {
					confirmed, err := cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout()).
						Confirm(fmt.Sprintf("Delete %q?", found.Title))
					if err != nil {
						return err
					}
					if !confirmed {
						return nil
					}
				}

				list := session.NewEntryListSession(ctx, c.Repository, c.Subscriptions)
				defer list.Close()
				list.Delete(id)
				if message := list.Message().Get(); message != "" {
					return userError(message)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace local entries with the cloud copy (premium only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				list := session.NewEntryListSession(ctx, c.Repository, c.Subscriptions)
				defer list.Close()
				status := list.Sync()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sync %s\n", status)
				if message := list.Message().Get(); message != "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), message)
				}
				return nil
			})
		},
	}
}

func newPracticeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "practice <id>",
		Short: "Practice the flashcards or questions of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				practice := session.NewPracticeSession(ctx, c.Repository)
				defer practice.Close()

				base := cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout())
				practiceCLI := cli.NewPracticeCLI(base, practice, args[0])
				return base.Run(ctx, practiceCLI)
			})
		},
	}
}

func newExportCommand() *cobra.Command {
	var formats []string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export an entry as markdown, PDF or a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]export.Format, 0, len(formats))
			for _, f := range formats {
				format, err := export.ParseFormat(f)
				if err != nil {
					return err
				}
				parsed = append(parsed, format)
			}
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				paths, err := c.Exporter.Export(ctx, args[0], parsed...)
				if err != nil {
					return fmt.Errorf("Export(%s) > %w", args[0], err)
				}
				for _, path := range paths {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{string(export.FormatMarkdown)}, "output formats: md, pdf, xlsx")
	return cmd
}
