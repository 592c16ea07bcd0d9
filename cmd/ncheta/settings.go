package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/cli"
	"github.com/ncheta/ncheta/internal/session"
)

func newSettingsCommand() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored API key and onboarding flag",
	}
	settingsCmd.AddCommand(
		newSettingsShowCommand(),
		newSettingsSetKeyCommand(),
		newSettingsClearKeyCommand(),
		newSettingsOnboardingCommand(),
	)
	return settingsCmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				settingsSession := session.NewSettingsSession(c.Settings)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key: %s\nOnboarding completed: %t\n",
					maskAPIKey(settingsSession.APIKey().Get()), settingsSession.OnboardingCompleted().Get())
				return nil
			})
		},
	}
}

func newSettingsSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [key]",
		Short: "Store the API key used for generation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var apiKey string
			if len(args) == 1 {
				apiKey = args[0]
			} else {
				var err error
				apiKey, err = cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout()).ReadPassword("API key: ")
				if err != nil {
					return err
				}
			}
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				settingsSession := session.NewSettingsSession(c.Settings)
				settingsSession.SaveAPIKey(apiKey)
				return reportSettingsState(cmd.OutOrStdout(), settingsSession.State().Get(), "API key saved.")
			})
		},
	}
}

func newSettingsClearKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				settingsSession := session.NewSettingsSession(c.Settings)
				settingsSession.ClearAPIKey()
				return reportSettingsState(cmd.OutOrStdout(), settingsSession.State().Get(), "API key removed.")
			})
		},
	}
}

func newSettingsOnboardingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-onboarding",
		Short: "Mark the onboarding as completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				settingsSession := session.NewSettingsSession(c.Settings)
				settingsSession.CompleteOnboarding()
				return reportSettingsState(cmd.OutOrStdout(), settingsSession.State().Get(), "Onboarding completed.")
			})
		},
	}
}

func reportSettingsState(w io.Writer, state session.SettingsUIState, saved string) error {
	if failed, ok := state.(session.SettingsError); ok {
		return userError(failed.Message)
	}
	_, _ = fmt.Fprintln(w, saved)
	return nil
}

// maskAPIKey keeps the last four characters of key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
