package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"usher/internal/agents"
	"usher/internal/assistant"
	"usher/internal/config"
	"usher/internal/library"
	"usher/internal/logging"
	"usher/internal/mediascan"
	"usher/internal/notifications"
	"usher/internal/services/llm"
	"usher/internal/session"
	"usher/internal/subtitles"
	"usher/internal/subtitles/opensubtitles"
	"usher/internal/summaries"
	"usher/internal/supervisor"
	"usher/internal/torrent"
	"usher/internal/torrent/qbittorrent"
)

// buildAssistant wires an in-process agent roster for one-shot chat. It
// mirrors the daemon composition minus the filesystem watcher: a single
// ask rescans anyway.
func buildAssistant(ctx context.Context, cfg *config.Config, sessions *session.Store, summariesStore *summaries.Store, logger *slog.Logger) (*assistant.Assistant, error) {
	client := newLLMClient(cfg)

	engine := library.NewEngine(mediascan.NewScanner(cfg.Library.Roots, logger), cfg.Library.SearchLimit, logger)

	var retriever agents.SummarySearcher
	if embedder, err := summaries.NewEmbedder(ctx, cfg); err != nil {
		logger.Warn("movie summaries retriever disabled", logging.Error(err))
	} else {
		retriever = summaries.NewRetriever(summariesStore, embedder, cfg.Summaries.TopK, logger)
	}

	torrentSvc := torrent.NewService(torrentTransfers(cfg, logger), cfg, logger).
		WithNotifier(notifications.NewService(cfg))
	subtitleSvc := subtitles.NewService(subtitleSearcher(cfg, logger), cfg, logger)

	roster := []agents.Agent{
		agents.NewLibraryAgent(engine, logger),
		agents.NewMovieLookupAgent(client, retriever, logger),
		agents.NewTorrentAgent(client, torrentSvc, logger),
		agents.NewSubtitlesAgent(client, subtitleSvc, logger),
	}
	return assistant.New(supervisor.NewRouter(client, logger), sessions, roster, logger)
}

func newLLMClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
}

// torrentTransfers returns a qBittorrent client, or nil when the WebUI URL
// is absent or unusable, so the agent reports the feature as unconfigured.
func torrentTransfers(cfg *config.Config, logger *slog.Logger) torrent.Transfers {
	if strings.TrimSpace(cfg.Torrent.URL) == "" {
		return nil
	}
	client, err := newQBittorrentClient(cfg)
	if err != nil {
		logger.Warn("torrent client disabled", logging.Error(err))
		return nil
	}
	return client
}

func newQBittorrentClient(cfg *config.Config) (*qbittorrent.Client, error) {
	return qbittorrent.New(qbittorrent.Config{
		URL:            cfg.Torrent.URL,
		Username:       cfg.Torrent.Username,
		Password:       cfg.Torrent.Password,
		RequestTimeout: time.Duration(cfg.Torrent.RequestTimeout) * time.Second,
		SearchTimeout:  time.Duration(cfg.Torrent.SearchTimeout) * time.Second,
	})
}

// subtitleSearcher returns an OpenSubtitles client, or nil when no API key
// is configured.
func subtitleSearcher(cfg *config.Config, logger *slog.Logger) subtitles.Searcher {
	if strings.TrimSpace(cfg.Subtitles.APIKey) == "" {
		return nil
	}
	client, err := newOpenSubtitlesClient(cfg)
	if err != nil {
		logger.Warn("subtitles client disabled", logging.Error(err))
		return nil
	}
	return client
}

func newOpenSubtitlesClient(cfg *config.Config) (*opensubtitles.Client, error) {
	return opensubtitles.New(opensubtitles.Config{
		APIKey:    cfg.Subtitles.APIKey,
		UserAgent: cfg.Subtitles.UserAgent,
		UserToken: cfg.Subtitles.UserToken,
		BaseURL:   cfg.Subtitles.BaseURL,
	})
}

// torrentService builds the torrent service for direct CLI use. Unlike chat,
// where an agent explains a missing setup, the dedicated command fails fast.
func torrentService(ctx *commandContext) (*torrent.Service, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Torrent.URL) == "" {
		return nil, errors.New("qbittorrent is not configured; set [torrent] url in the config file")
	}
	client, err := newQBittorrentClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("build qbittorrent client: %w", err)
	}
	return torrent.NewService(client, cfg, ctx.logger()).
		WithNotifier(notifications.NewService(cfg)), nil
}

// subtitleService builds the subtitles service for direct CLI use.
func subtitleService(ctx *commandContext) (*subtitles.Service, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Subtitles.APIKey) == "" {
		return nil, errors.New("opensubtitles is not configured; set [subtitles] api_key in the config file")
	}
	client, err := newOpenSubtitlesClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("build opensubtitles client: %w", err)
	}
	return subtitles.NewService(client, cfg, ctx.logger()), nil
}
