package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"usher/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set [llm] and [embeddings] api_key before running Usher.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults shown")
			}
			fmt.Fprintln(out)

			section := func(name string) { fmt.Fprintf(out, "[%s]\n", name) }
			entry := func(key, value string) { fmt.Fprintf(out, "  %-15s %s\n", key, value) }

			section("paths")
			entry("state_dir", cfg.Paths.StateDir)
			entry("log_dir", cfg.Paths.LogDir)
			entry("subtitle_dir", cfg.Paths.SubtitleDir)
			entry("api_bind", cfg.Paths.APIBind)
			entry("api_token", redactSecret(cfg.Paths.APIToken))

			section("library")
			entry("roots", strings.Join(cfg.Library.Roots, ", "))
			entry("search_limit", strconv.Itoa(cfg.Library.SearchLimit))

			section("llm")
			entry("api_key", redactSecret(cfg.LLM.APIKey))
			entry("base_url", cfg.LLM.BaseURL)
			entry("model", cfg.LLM.Model)

			section("embeddings")
			entry("provider", cfg.Embeddings.Provider)
			entry("api_key", redactSecret(cfg.Embeddings.APIKey))
			entry("model", cfg.Embeddings.Model)

			section("summaries")
			entry("top_k", strconv.Itoa(cfg.Summaries.TopK))

			section("torrent")
			entry("url", cfg.Torrent.URL)
			entry("username", cfg.Torrent.Username)
			entry("password", redactSecret(cfg.Torrent.Password))
			entry("save_path", cfg.Torrent.SavePath)
			entry("category", cfg.Torrent.Category)

			section("subtitles")
			entry("api_key", redactSecret(cfg.Subtitles.APIKey))
			entry("user_token", redactSecret(cfg.Subtitles.UserToken))
			entry("languages", strings.Join(cfg.Subtitles.Languages, ", "))

			section("notifications")
			entry("ntfy_topic", cfg.Notifications.NtfyTopic)

			section("logging")
			entry("format", cfg.Logging.Format)
			entry("level", cfg.Logging.Level)
			return nil
		},
	}
}

func redactSecret(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "********"
}
