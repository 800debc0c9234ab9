package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	subtitlesCmd := &cobra.Command{
		Use:   "subtitles",
		Short: "Find and fetch subtitles from OpenSubtitles",
	}

	subtitlesCmd.AddCommand(newSubtitlesSearchCommand(ctx))
	subtitlesCmd.AddCommand(newSubtitlesDownloadCommand(ctx))

	return subtitlesCmd
}

func newSubtitlesSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <movie>",
		Short: "List available subtitles for a movie",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := subtitleService(ctx)
			if err != nil {
				return err
			}
			report, err := svc.SearchSubtitles(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("subtitles search: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newSubtitlesDownloadCommand(ctx *commandContext) *cobra.Command {
	var languages []string

	cmd := &cobra.Command{
		Use:   "download <movie>",
		Short: "Download the best subtitle per language for a movie",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := subtitleService(ctx)
			if err != nil {
				return err
			}
			report, err := svc.Download(cmd.Context(), strings.Join(args, " "), languages)
			if err != nil {
				return fmt.Errorf("subtitles download: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "Subtitle languages (defaults to the configured list)")
	return cmd
}
