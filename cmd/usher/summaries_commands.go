package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"usher/internal/summaries"
)

func newSummariesCommand(ctx *commandContext) *cobra.Command {
	summariesCmd := &cobra.Command{
		Use:   "summaries",
		Short: "Import and search movie plot summaries",
	}

	summariesCmd.AddCommand(newSummariesImportCommand(ctx))
	summariesCmd.AddCommand(newSummariesSearchCommand(ctx))

	return summariesCmd
}

func newSummariesImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Embed summaries from a JSON file into the summaries store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := summaries.Open(cfg)
			if err != nil {
				return fmt.Errorf("open summaries store: %w", err)
			}
			defer store.Close()

			embedder, err := summaries.NewEmbedder(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("create embedder: %w", err)
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open summaries file: %w", err)
			}
			defer file.Close()

			result, err := summaries.Import(cmd.Context(), store, embedder, file, ctx.logger())
			if err != nil {
				return fmt.Errorf("import summaries: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d summaries (skipped %d)\n", result.Imported, result.Skipped)
			return nil
		},
	}
}

func newSummariesSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <question>",
		Short: "Find movies whose plot matches a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := summaries.Open(cfg)
			if err != nil {
				return fmt.Errorf("open summaries store: %w", err)
			}
			defer store.Close()

			embedder, err := summaries.NewEmbedder(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("create embedder: %w", err)
			}

			retriever := summaries.NewRetriever(store, embedder, cfg.Summaries.TopK, ctx.logger())
			results, err := retriever.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search summaries: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summaries.FormatScored(results))
			return nil
		},
	}
}
