package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"quotes-service/internal/bootstrap"
	"quotes-service/internal/config"
	"quotes-service/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type appFactory func(ctx context.Context) (*bootstrap.App, func(), error)

func defaultApp(ctx context.Context) (*bootstrap.App, func(), error) {
	return bootstrap.Init(ctx, config.Load(), zap.NewNop())
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultApp)
}

func newRootCmdWith(build appFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Query the quote service's store and provider from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newGetCmd(build), newPingCmd(build), newHealthCmd(build))
	return root
}

func newGetCmd(build appFactory) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "get SYMBOL",
		Short: "Print the best known quote for SYMBOL as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			q, err := app.Quotes.GetQuote(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), quoteView(q))
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache and ask the provider")
	return cmd
}

func newPingCmd(build appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the market data provider is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if err := app.Gateway.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "provider reachable")
			return nil
		},
	}
}

func newHealthCmd(build appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print store and provider health as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			st := app.Health.Check(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), st); err != nil {
				return err
			}
			if st.Status != domain.HealthOK {
				return fmt.Errorf("status %s", st.Status)
			}
			return nil
		},
	}
}

func quoteView(q domain.QuoteRecord) map[string]any {
	return map[string]any{
		"symbol":        q.Symbol,
		"price":         json.Number(q.Price.String()),
		"currency":      q.Currency,
		"observedAtUtc": q.ObservedAt.UTC(),
		"source":        q.Source,
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
