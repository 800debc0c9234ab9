package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"usher/internal/preflight"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe directories, API keys, and connected services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)

			// RunAll skips integrations without connection settings. Show
			// them as informational rows instead of omitting them.
			seen := make(map[string]bool, len(results))
			for _, result := range results {
				seen[result.Name] = true
			}
			if !seen["qBittorrent"] {
				results = append(results, preflight.CheckQBittorrentFromConfig(cfg))
			}
			if !seen["OpenSubtitles"] {
				results = append(results, preflight.CheckOpenSubtitlesFromConfig(cfg))
			}

			failed := 0
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "OK"
				if !result.Passed {
					status = "FAIL"
					failed++
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			renderRows(cmd.OutOrStdout(), []string{"Check", "Status", "Detail"}, rows, nil)

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
}
