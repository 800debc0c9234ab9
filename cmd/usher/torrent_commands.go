package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTorrentCommand(ctx *commandContext) *cobra.Command {
	torrentCmd := &cobra.Command{
		Use:   "torrent",
		Short: "Manage qBittorrent downloads",
	}

	torrentCmd.AddCommand(newTorrentStatusCommand(ctx))
	torrentCmd.AddCommand(newTorrentSearchCommand(ctx))
	torrentCmd.AddCommand(newTorrentDownloadCommand(ctx))

	return torrentCmd
}

func newTorrentStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show active torrent transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := torrentService(ctx)
			if err != nil {
				return err
			}
			report, err := svc.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("torrent status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newTorrentSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search torrent indexers through qBittorrent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := torrentService(ctx)
			if err != nil {
				return err
			}
			report, err := svc.SearchTorrents(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("torrent search: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newTorrentDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <name>",
		Short: "Search for a movie and queue the best matching torrent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := torrentService(ctx)
			if err != nil {
				return err
			}
			report, err := svc.Download(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("torrent download: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
}
