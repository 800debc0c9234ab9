package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"usher/internal/library"
	"usher/internal/mediascan"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the scanned movie library",
	}

	libraryCmd.AddCommand(newLibraryScanCommand(ctx))
	libraryCmd.AddCommand(newLibrarySearchCommand(ctx))

	return libraryCmd
}

func newLibraryScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the library roots and list every entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lib, err := mediascan.NewScanner(cfg.Library.Roots, ctx.logger()).Scan(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan library: %w", err)
			}

			out := cmd.OutOrStdout()
			entries := lib.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Library is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				meta := library.ExtractMetadata(filepath.Base(entry.Path))
				rows = append(rows, []string{entry.DisplayName, meta.Year, meta.Quality, meta.Format, entry.Path})
			}
			renderRows(out, []string{"Title", "Year", "Quality", "Format", "Path"}, rows, nil)
			fmt.Fprintf(out, "%d entries\n", len(entries))
			return nil
		},
	}
}

func newLibrarySearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank library entries against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lib, err := mediascan.NewScanner(cfg.Library.Roots, ctx.logger()).Scan(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan library: %w", err)
			}

			query := strings.Join(args, " ")
			resolved := limit
			if resolved <= 0 {
				resolved = cfg.Library.SearchLimit
			}

			out := cmd.OutOrStdout()
			matches := library.Search(lib, query, resolved, "")
			if len(matches) == 0 {
				fmt.Fprintf(out, "No matches for %q\n", query)
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for _, match := range matches {
				meta := library.ExtractMetadata(filepath.Base(match.Path))
				rows = append(rows, []string{
					fmt.Sprintf("%.2f", match.Score),
					match.DisplayName,
					meta.Year,
					meta.Quality,
					match.Path,
				})
			}
			renderRows(out, []string{"Score", "Title", "Year", "Quality", "Path"}, rows, []columnAlignment{alignRight})
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (defaults to the configured search limit)")
	return cmd
}
