package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/session"
	"github.com/ncheta/ncheta/internal/subscription"
)

func newPaywallCommand() *cobra.Command {
	paywallCmd := &cobra.Command{
		Use:   "paywall",
		Short: "Inspect or buy the premium subscription that enables cloud sync",
	}
	paywallCmd.AddCommand(
		newPaywallOfferingsCommand(),
		newPaywallPurchaseCommand(),
		newPaywallRestoreCommand(),
	)
	return paywallCmd
}

func newPaywallOfferingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "offerings",
		Short: "List the available packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				paywall := session.NewPaywallSession(ctx, c.Subscriptions)
				defer paywall.Close()
				paywall.LoadOfferings()
				return reportPaywallState(cmd.OutOrStdout(), paywall.State().Get())
			})
		},
	}
}

func newPaywallPurchaseCommand() *cobra.Command {
	var pkg subscription.Package
	var receipt string
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record a store purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				paywall := session.NewPaywallSession(ctx, c.Subscriptions)
				defer paywall.Close()
				paywall.Purchase(pkg, receipt)
				return reportPaywallState(cmd.OutOrStdout(), paywall.State().Get())
			})
		},
	}
	cmd.Flags().StringVar(&pkg.Identifier, "package", "", "package identifier")
	cmd.Flags().StringVar(&pkg.ProductID, "product", "", "store product id")
	cmd.Flags().StringVar(&receipt, "receipt", "", "store receipt token")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("receipt")
	return cmd
}

func newPaywallRestoreCommand() *cobra.Command {
	var receipt string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore earlier purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container) error {
				paywall := session.NewPaywallSession(ctx, c.Subscriptions)
				defer paywall.Close()
				paywall.Restore(receipt)
				return reportPaywallState(cmd.OutOrStdout(), paywall.State().Get())
			})
		},
	}
	cmd.Flags().StringVar(&receipt, "receipt", "", "store receipt token, only refreshes when empty")
	return cmd
}

func reportPaywallState(w io.Writer, state session.PaywallUIState) error {
	switch state := state.(type) {
	case session.PaywallReady:
		for _, offering := range state.Offerings {
			current := ""
			if offering.Current {
				current = " (current)"
			}
			_, _ = fmt.Fprintf(w, "%s%s: %s\n", offering.Identifier, current, offering.Description)
			for _, pkg := range offering.Packages {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", pkg.Identifier, pkg.ProductID)
			}
		}
		_, _ = fmt.Fprintf(w, "Premium: %t\n", state.IsPremium)
		return nil
	case session.PaywallError:
		return userError(state.Message)
	}
	return fmt.Errorf("paywall did not finish: %T", state)
}
