package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"usher/internal/agents"
	"usher/internal/api"
	"usher/internal/assistant"
	"usher/internal/config"
	"usher/internal/daemon"
	"usher/internal/library"
	"usher/internal/logging"
	"usher/internal/mediascan"
	"usher/internal/notifications"
	"usher/internal/preflight"
	"usher/internal/services/llm"
	"usher/internal/session"
	"usher/internal/subtitles"
	"usher/internal/subtitles/opensubtitles"
	"usher/internal/summaries"
	"usher/internal/supervisor"
	"usher/internal/torrent"
	"usher/internal/torrent/qbittorrent"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the usher daemon runtime loop and blocks until the context is
// cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := newLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "usherd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	sessions, err := session.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return err
	}
	defer sessions.Close()

	summariesStore, err := summaries.Open(cfg)
	if err != nil {
		logger.Error("open summaries store", logging.Error(err))
		return err
	}
	defer summariesStore.Close()

	logStartupChecks(signalCtx, logger, cfg)

	notifier := notifications.NewService(cfg)
	watcher := buildWatcher(cfg, logger)
	assistantSvc, err := buildAssistant(signalCtx, cfg, sessions, summariesStore, watcher, notifier, logger)
	if err != nil {
		return fmt.Errorf("build assistant: %w", err)
	}

	d, err := daemon.New(cfg, logger, api.NewChatService(assistantSvc), sessions, summariesStore, watcher, notifier)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("usher daemon shutting down")
	return nil
}

// buildAssistant wires the agent roster. Services whose connection settings
// are absent get a nil client so their agent reports the feature as
// unconfigured instead of failing the whole daemon.
func buildAssistant(ctx context.Context, cfg *config.Config, sessions *session.Store, summariesStore *summaries.Store, watcher *mediascan.Watcher, notifier notifications.Service, logger *slog.Logger) (*assistant.Assistant, error) {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	var scanner library.Scanner = mediascan.NewScanner(cfg.Library.Roots, logger)
	if watcher != nil {
		scanner = watcher.WrapScanner(scanner)
	}
	engine := library.NewEngine(scanner, cfg.Library.SearchLimit, logger)

	var retriever agents.SummarySearcher
	if embedder, err := summaries.NewEmbedder(ctx, cfg); err != nil {
		logger.Warn("movie summaries retriever disabled", logging.Error(err))
	} else {
		retriever = summaries.NewRetriever(summariesStore, embedder, cfg.Summaries.TopK, logger)
	}

	var transfers torrent.Transfers
	if strings.TrimSpace(cfg.Torrent.URL) != "" {
		qb, err := qbittorrent.New(qbittorrent.Config{
			URL:            cfg.Torrent.URL,
			Username:       cfg.Torrent.Username,
			Password:       cfg.Torrent.Password,
			RequestTimeout: time.Duration(cfg.Torrent.RequestTimeout) * time.Second,
			SearchTimeout:  time.Duration(cfg.Torrent.SearchTimeout) * time.Second,
		})
		if err != nil {
			logger.Warn("torrent client disabled", logging.Error(err))
		} else {
			transfers = qb
		}
	}
	torrentSvc := torrent.NewService(transfers, cfg, logger).WithNotifier(notifier)

	var searcher subtitles.Searcher
	if strings.TrimSpace(cfg.Subtitles.APIKey) != "" {
		osClient, err := opensubtitles.New(opensubtitles.Config{
			APIKey:    cfg.Subtitles.APIKey,
			UserAgent: cfg.Subtitles.UserAgent,
			UserToken: cfg.Subtitles.UserToken,
			BaseURL:   cfg.Subtitles.BaseURL,
		})
		if err != nil {
			logger.Warn("subtitles client disabled", logging.Error(err))
		} else {
			searcher = osClient
		}
	}
	subtitleSvc := subtitles.NewService(searcher, cfg, logger)

	roster := []agents.Agent{
		agents.NewLibraryAgent(engine, logger),
		agents.NewMovieLookupAgent(client, retriever, logger),
		agents.NewTorrentAgent(client, torrentSvc, logger),
		agents.NewSubtitlesAgent(client, subtitleSvc, logger),
	}
	router := supervisor.NewRouter(client, logger)
	return assistant.New(router, sessions, roster, logger)
}

func buildWatcher(cfg *config.Config, logger *slog.Logger) *mediascan.Watcher {
	watcher, err := mediascan.NewWatcher(cfg.Library.Roots, logger)
	if err != nil {
		logger.Warn("library watcher disabled", logging.Error(err))
		return nil
	}
	return watcher
}

// logStartupChecks runs the connectivity checks once and logs the outcome.
// Failures do not stop the daemon; the affected agent degrades instead.
func logStartupChecks(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
		} else {
			logger.Warn("preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
		}
	}
}

func newLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	if strings.TrimSpace(opts.LogLevel) == "" {
		return logging.NewFromConfig(cfg)
	}
	paths := []string{"stdout"}
	if cfg.Paths.LogDir != "" {
		paths = append(paths, filepath.Join(cfg.Paths.LogDir, "usher.log"))
	}
	return logging.New(logging.Options{
		Level:  opts.LogLevel,
		Format: cfg.Logging.Format,
		Paths:  paths,
	})
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
