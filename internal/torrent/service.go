package torrent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"usher/internal/config"
	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/torrent/qbittorrent"
)

// searchDisplayLimit caps how many results a reply lists before summarizing.
const searchDisplayLimit = 5

// searchFetchLimit caps how many results are pulled from the search job.
const searchFetchLimit = 50

// Transfers is the slice of the qBittorrent client the service needs.
type Transfers interface {
	Torrents(ctx context.Context) ([]qbittorrent.Torrent, error)
	Add(ctx context.Context, urls []string, opts qbittorrent.AddOptions) error
	Search(ctx context.Context, pattern string, limit int) ([]qbittorrent.SearchResult, error)
}

// DownloadNotifier receives a push message when a download starts.
type DownloadNotifier interface {
	NotifyDownloadStarted(ctx context.Context, name string) error
}

// Service renders download state and search results as sentences an agent
// can hand straight back to the user.
type Service struct {
	client   Transfers
	savePath string
	category string
	notifier DownloadNotifier
	logger   *slog.Logger
}

// NewService wires the torrent service against a client.
func NewService(client Transfers, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		savePath: cfg.Torrent.SavePath,
		category: cfg.Torrent.Category,
		logger:   logging.WithComponent(logger, "torrent"),
	}
}

// WithNotifier attaches a push notification sink for started downloads and
// returns the service for chaining.
func (s *Service) WithNotifier(notifier DownloadNotifier) *Service {
	s.notifier = notifier
	return s
}

// ready reports whether a qBittorrent client is wired in. Agents turn the
// configuration error into a hint that the feature needs setup.
func (s *Service) ready(op string) error {
	if s.client == nil {
		return services.Wrap(services.ErrConfiguration, "torrent", op, "qbittorrent is not configured", nil)
	}
	return nil
}

// Status reports the active downloads as a readable list.
func (s *Service) Status(ctx context.Context) (string, error) {
	if err := s.ready("status"); err != nil {
		return "", err
	}
	torrents, err := s.client.Torrents(ctx)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "torrent", "status", "list transfers", err)
	}

	active := make([]qbittorrent.Torrent, 0, len(torrents))
	for _, torrent := range torrents {
		if isDownloadingState(torrent.State) {
			active = append(active, torrent)
		}
	}
	if len(active) == 0 {
		return "No active downloads.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Currently downloading %d item(s):", len(active))
	for _, torrent := range active {
		fmt.Fprintf(&b, "\n- %s: %.1f%% (%s", torrent.Name, torrent.Progress*100, stateLabel(torrent.State))
		if torrent.HasETA() {
			fmt.Fprintf(&b, ", ETA %s", formatETA(torrent.ETA))
		}
		b.WriteString(")")
	}
	return b.String(), nil
}

// SearchTorrents runs a plugin search and lists the strongest results.
func (s *Service) SearchTorrents(ctx context.Context, query string) (string, error) {
	if err := s.ready("search"); err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", services.Wrap(services.ErrValidation, "torrent", "search", "query required", nil)
	}

	results, err := s.client.Search(ctx, query, searchFetchLimit)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "torrent", "search", fmt.Sprintf("search %q", query), err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No torrents found for '%s'.", query), nil
	}

	sortBySeeders(results)

	var b strings.Builder
	fmt.Fprintf(&b, "Found torrents for '%s':", query)
	shown := len(results)
	if shown > searchDisplayLimit {
		shown = searchDisplayLimit
	}
	for i := 0; i < shown; i++ {
		result := results[i]
		fmt.Fprintf(&b, "\n%d. %s (%s, %d seeders)", i+1, result.Name, formatSize(result.Size), result.Seeders)
	}
	if remaining := len(results) - shown; remaining > 0 {
		fmt.Fprintf(&b, "\n... and %d more available", remaining)
	}
	return b.String(), nil
}

// Download starts a transfer. Magnet links and torrent URLs are added
// directly; anything else is treated as a search query whose best-seeded
// result gets added.
func (s *Service) Download(ctx context.Context, target string) (string, error) {
	if err := s.ready("download"); err != nil {
		return "", err
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", services.Wrap(services.ErrValidation, "torrent", "download", "target required", nil)
	}

	if isDirectLink(target) {
		if err := s.add(ctx, target); err != nil {
			return "", err
		}
		s.notifyStarted(ctx, target)
		return "Download started.", nil
	}

	results, err := s.client.Search(ctx, target, searchFetchLimit)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "torrent", "download", fmt.Sprintf("search %q", target), err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No torrents found for '%s'.", target), nil
	}

	sortBySeeders(results)
	best := results[0]
	if err := s.add(ctx, best.FileURL); err != nil {
		return "", err
	}

	s.logger.Info("download started",
		logging.String("name", best.Name),
		logging.Int64("seeders", best.Seeders))
	s.notifyStarted(ctx, best.Name)
	return fmt.Sprintf("Download started: %s (%s, %d seeders).", best.Name, formatSize(best.Size), best.Seeders), nil
}

// notifyStarted pushes a best-effort notification; delivery failures are
// logged and never surface to the caller.
func (s *Service) notifyStarted(ctx context.Context, name string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDownloadStarted(ctx, name); err != nil {
		s.logger.Warn("download notification failed", logging.Error(err))
	}
}

func (s *Service) add(ctx context.Context, link string) error {
	err := s.client.Add(ctx, []string{link}, qbittorrent.AddOptions{
		SavePath: s.savePath,
		Category: s.category,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "torrent", "download", "add transfer", err)
	}
	return nil
}

func isDirectLink(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "magnet:") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://")
}

func sortBySeeders(results []qbittorrent.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Seeders > results[j].Seeders
	})
}

// isDownloadingState covers every state qBittorrent uses for transfers that
// are still fetching data.
func isDownloadingState(state string) bool {
	switch state {
	case "downloading", "stalledDL", "metaDL", "queuedDL", "checkingDL", "forcedDL", "allocating":
		return true
	default:
		return false
	}
}

func stateLabel(state string) string {
	switch state {
	case "downloading", "forcedDL":
		return "downloading"
	case "stalledDL":
		return "stalled"
	case "metaDL":
		return "fetching metadata"
	case "queuedDL":
		return "queued"
	case "checkingDL", "allocating":
		return "preparing"
	default:
		return state
	}
}

func formatETA(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	return fmt.Sprintf("%dh%02dm", hours, minutes%60)
}

func formatSize(bytes int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
		gib = 1024 * mib
	)
	switch {
	case bytes >= gib:
		return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(gib))
	case bytes >= mib:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/float64(mib))
	case bytes >= kib:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/float64(kib))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
