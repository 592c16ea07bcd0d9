package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/datasync"
)

func newBackupCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Write or restore a YAML backup of the local entries",
	}
	backupCmd.AddCommand(newBackupExportCommand())
	backupCmd.AddCommand(newBackupImportCommand())
	return backupCmd
}

func newBackupExportCommand() *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every local entry to a backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				dir := outputDir
				if dir == "" {
					dir = c.Config.Outputs.BackupDirectory
				}
				path, err := c.Backup.WriteFile(ctx, dir)
				if err != nil {
					return fmt.Errorf("WriteFile(%s) > %w", dir, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the backup file, defaults to outputs.backup_directory")
	return cmd
}

func newBackupImportCommand() *cobra.Command {
	var opts datasync.ImportOptions
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				importer := datasync.NewImporter(c.Local, cmd.OutOrStdout())
				result, err := importer.ImportFile(ctx, args[0], opts)
				if err != nil {
					return fmt.Errorf("ImportFile(%s) > %w", args[0], err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "new: %d, updated: %d, skipped: %d, invalid: %d\n",
					result.EntriesNew, result.EntriesUpdated, result.EntriesSkipped, result.EntriesInvalid)
				if opts.DryRun {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Dry run: nothing was written.")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "overwrite entries that already exist")
	return cmd
}
