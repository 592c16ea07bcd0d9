package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/cli"
	"github.com/ncheta/ncheta/internal/session"
)

func newAuthCommand() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the signed-in account used for cloud sync",
	}
	authCmd.AddCommand(
		newAuthStatusCommand(),
		newAuthPasswordCommand("signup", "Create an account and sign in", (*session.AuthSession).SignUp),
		newAuthPasswordCommand("signin", "Sign in with email and password", (*session.AuthSession).SignIn),
		newAuthGoogleCommand(),
		newAuthAppleCommand(),
		newAuthSignOutCommand(),
	)
	return authCmd
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				user := c.Auth.CurrentUser()
				if user == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s, premium: %t\n", user.Email, c.Subscriptions.IsPremium())
				return nil
			})
		},
	}
}

func newAuthPasswordCommand(use, short string, signIn func(s *session.AuthSession, email, password string)) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout())
			if email == "" {
				var err error
				if email, err = prompt.ReadLine("Email: "); err != nil {
					return err
				}
			}
			password, err := prompt.ReadPassword("Password: ")
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				authSession := session.NewAuthSession(ctx, c.Auth)
				defer authSession.Close()
				signIn(authSession, email, password)
				return reportAuthState(cmd.OutOrStdout(), authSession.State().Get())
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email, prompted when empty")
	return cmd
}

func newAuthGoogleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "google <id-token>",
		Short: "Sign in with a Google ID token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				authSession := session.NewAuthSession(ctx, c.Auth)
				defer authSession.Close()
				authSession.SignInWithGoogle(args[0])
				return reportAuthState(cmd.OutOrStdout(), authSession.State().Get())
			})
		},
	}
}

func newAuthAppleCommand() *cobra.Command {
	var nonce string
	cmd := &cobra.Command{
		Use:   "apple <id-token>",
		Short: "Sign in with an Apple ID token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				authSession := session.NewAuthSession(ctx, c.Auth)
				defer authSession.Close()
				authSession.SignInWithApple(args[0], nonce)
				return reportAuthState(cmd.OutOrStdout(), authSession.State().Get())
			})
		},
	}
	cmd.Flags().StringVar(&nonce, "nonce", "", "raw nonce sent with the Apple sign-in request")
	return cmd
}

func newAuthSignOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out of the current account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				authSession := session.NewAuthSession(ctx, c.Auth)
				defer authSession.Close()
				authSession.SignOut()
				if failed, ok := authSession.State().Get().(session.AuthError); ok {
					return userError(failed.Message)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
				return nil
			})
		},
	}
}

func reportAuthState(w io.Writer, state session.AuthUIState) error {
	switch state := state.(type) {
	case session.AuthSignedIn:
		_, _ = fmt.Fprintf(w, "Signed in as %s\n", state.User.Email)
		return nil
	case session.AuthError:
		return userError(state.Message)
	}
	return fmt.Errorf("sign-in did not finish: %T", state)
}
