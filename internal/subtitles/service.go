package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"usher/internal/config"
	"usher/internal/language"
	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/subtitles/opensubtitles"
	"usher/internal/textutil"
)

// Searcher is the slice of the OpenSubtitles client the service needs.
type Searcher interface {
	Search(ctx context.Context, req opensubtitles.SearchRequest) (opensubtitles.SearchResponse, error)
	Download(ctx context.Context, fileID int64, opts opensubtitles.DownloadOptions) (opensubtitles.DownloadResult, error)
}

// Service finds and saves subtitles for movies by name. Replies are
// sentences the subtitles agent hands straight back to the user.
type Service struct {
	client    Searcher
	dir       string
	languages []string
	limiter   *opensubtitles.Limiter
	logger    *slog.Logger

	retryAttempts int
	retryBackoff  time.Duration
	maxBackoff    time.Duration
}

// NewService wires the subtitles service against a client.
func NewService(client Searcher, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		client:        client,
		dir:           cfg.Paths.SubtitleDir,
		languages:     cfg.Subtitles.Languages,
		limiter:       opensubtitles.NewLimiter(opensubtitles.MinInterval),
		logger:        logging.WithComponent(logger, "subtitles"),
		retryAttempts: opensubtitles.MaxRateRetries,
		retryBackoff:  opensubtitles.InitialBackoff,
		maxBackoff:    opensubtitles.MaxBackoff,
	}
}

// ready reports whether an OpenSubtitles client is wired in. Agents turn
// the configuration error into a hint that the feature needs setup.
func (s *Service) ready(op string) error {
	if s.client == nil {
		return services.Wrap(services.ErrConfiguration, "subtitles", op, "opensubtitles is not configured", nil)
	}
	return nil
}

// SearchSubtitles lists available subtitles for a movie, grouped by
// language in order of first appearance.
func (s *Service) SearchSubtitles(ctx context.Context, query string) (string, error) {
	if err := s.ready("search"); err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", services.Wrap(services.ErrValidation, "subtitles", "search", "query required", nil)
	}

	resp, err := s.search(ctx, query, s.languages)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "subtitles", "search", fmt.Sprintf("search %q", query), err)
	}
	if len(resp.Subtitles) == 0 {
		return fmt.Sprintf("No subtitles found for '%s'.", query), nil
	}

	type group struct {
		lang  string
		count int
		best  opensubtitles.Subtitle
	}
	var order []string
	groups := make(map[string]*group)
	for _, subtitle := range resp.Subtitles {
		entry, ok := groups[subtitle.Language]
		if !ok {
			entry = &group{lang: subtitle.Language, best: subtitle}
			groups[subtitle.Language] = entry
			order = append(order, subtitle.Language)
		}
		entry.count++
		if subtitle.Downloads > entry.best.Downloads {
			entry.best = subtitle
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found subtitles for '%s':", query)
	for _, lang := range order {
		entry := groups[lang]
		fmt.Fprintf(&b, "\n- %s: %d candidate(s), best release '%s' (%d downloads)",
			language.DisplayName(lang), entry.count, entry.best.Release, entry.best.Downloads)
	}
	return b.String(), nil
}

// Download fetches the best subtitle per requested language and saves each
// as <query>.<lang>.srt under the configured subtitle directory. Languages
// may be codes or words ("es", "spa", "spanish"); empty means the
// configured defaults.
func (s *Service) Download(ctx context.Context, query string, langs []string) (string, error) {
	if err := s.ready("download"); err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", services.Wrap(services.ErrValidation, "subtitles", "download", "query required", nil)
	}

	normalized, err := normalizeLanguages(langs, s.languages)
	if err != nil {
		return "", err
	}

	resp, err := s.search(ctx, query, normalized)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "subtitles", "download", fmt.Sprintf("search %q", query), err)
	}
	best := bestPerLanguage(resp.Subtitles)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "subtitles", "download", "create subtitle directory", err)
	}

	var (
		saved    []string
		misses   []string
		failures []string
		lastErr  error
	)
	for _, lang := range normalized {
		candidate, ok := best[lang]
		if !ok {
			misses = append(misses, fmt.Sprintf("- %s: no subtitles found", language.DisplayName(lang)))
			continue
		}

		result, err := s.downloadWithRetry(ctx, candidate.FileID)
		if err != nil {
			lastErr = err
			failures = append(failures, fmt.Sprintf("- %s: download failed", language.DisplayName(lang)))
			s.logger.Warn("subtitle download failed",
				logging.String("query", query),
				logging.String("language", lang),
				logging.Error(err))
			continue
		}

		path := filepath.Join(s.dir, fmt.Sprintf("%s.%s.srt", textutil.SanitizeFileName(query), lang))
		if err := os.WriteFile(path, result.Data, 0o644); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "subtitles", "download", "write subtitle file", err)
		}
		saved = append(saved, fmt.Sprintf("- %s: %s", language.DisplayName(lang), path))
		s.logger.Info("subtitle saved",
			logging.String("query", query),
			logging.String("language", lang),
			logging.String("path", path))
	}

	if len(saved) == 0 {
		if lastErr != nil {
			return "", services.Wrap(services.ErrExternalTool, "subtitles", "download", fmt.Sprintf("download %q", query), lastErr)
		}
		return fmt.Sprintf("No subtitles found for '%s'.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Downloaded %d subtitle(s) for '%s':", len(saved), query)
	for _, line := range saved {
		b.WriteString("\n" + line)
	}
	for _, line := range failures {
		b.WriteString("\n" + line)
	}
	for _, line := range misses {
		b.WriteString("\n" + line)
	}
	return b.String(), nil
}

func (s *Service) search(ctx context.Context, query string, langs []string) (opensubtitles.SearchResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return opensubtitles.SearchResponse{}, err
	}
	return s.client.Search(ctx, opensubtitles.SearchRequest{
		Query:     query,
		Languages: langs,
	})
}

func (s *Service) downloadWithRetry(ctx context.Context, fileID int64) (opensubtitles.DownloadResult, error) {
	backoff := s.retryBackoff
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := opensubtitles.SleepWithContext(ctx, backoff); err != nil {
				return opensubtitles.DownloadResult{}, err
			}
			backoff *= 2
			if backoff > s.maxBackoff {
				backoff = s.maxBackoff
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return opensubtitles.DownloadResult{}, err
		}

		result, err := s.client.Download(ctx, fileID, opensubtitles.DownloadOptions{})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !opensubtitles.IsRetriable(err) {
			return opensubtitles.DownloadResult{}, err
		}
	}
	return opensubtitles.DownloadResult{}, lastErr
}

// normalizeLanguages maps codes and words to ISO 639-1, deduplicated in
// order. Unknown values are a validation error rather than a silent drop.
func normalizeLanguages(langs, defaults []string) ([]string, error) {
	source := langs
	if len(source) == 0 {
		source = defaults
	}
	if len(source) == 0 {
		source = []string{"en"}
	}

	normalized := make([]string, 0, len(source))
	seen := make(map[string]struct{}, len(source))
	for _, lang := range source {
		if strings.TrimSpace(lang) == "" {
			continue
		}
		code := language.ToISO2(lang)
		if code == "" {
			return nil, services.Wrap(services.ErrValidation, "subtitles", "download", fmt.Sprintf("unknown language %q", lang), nil)
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}
	if len(normalized) == 0 {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "download", "no usable languages", nil)
	}
	return normalized, nil
}

// bestPerLanguage keeps the highest-downloaded candidate per language.
func bestPerLanguage(subtitles []opensubtitles.Subtitle) map[string]opensubtitles.Subtitle {
	best := make(map[string]opensubtitles.Subtitle)
	for _, subtitle := range subtitles {
		current, ok := best[subtitle.Language]
		if !ok || subtitle.Downloads > current.Downloads {
			best[subtitle.Language] = subtitle
		}
	}
	return best
}
