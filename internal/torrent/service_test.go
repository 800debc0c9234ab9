package torrent

import (
	"context"
	"errors"
	"testing"

	"usher/internal/config"
	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/torrent/qbittorrent"
)

type fakeTransfers struct {
	torrents    []qbittorrent.Torrent
	results     []qbittorrent.SearchResult
	torrentsErr error
	searchErr   error
	addErr      error

	searchPattern string
	added         []string
	addOpts       qbittorrent.AddOptions
}

func (f *fakeTransfers) Torrents(context.Context) ([]qbittorrent.Torrent, error) {
	return f.torrents, f.torrentsErr
}

func (f *fakeTransfers) Add(_ context.Context, urls []string, opts qbittorrent.AddOptions) error {
	f.added = append(f.added, urls...)
	f.addOpts = opts
	return f.addErr
}

func (f *fakeTransfers) Search(_ context.Context, pattern string, _ int) ([]qbittorrent.SearchResult, error) {
	f.searchPattern = pattern
	return f.results, f.searchErr
}

func newTestService(fake *fakeTransfers) *Service {
	cfg := config.Default()
	cfg.Torrent.SavePath = "/downloads/movies"
	cfg.Torrent.Category = "movies"
	return NewService(fake, &cfg, logging.NewNop())
}

func TestStatusNoActiveDownloads(t *testing.T) {
	fake := &fakeTransfers{
		torrents: []qbittorrent.Torrent{
			{Name: "Done Movie", State: "uploading", Progress: 1},
			{Name: "Paused Movie", State: "pausedUP", Progress: 1},
		},
	}
	got, err := newTestService(fake).Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got != "No active downloads." {
		t.Errorf("Status() = %q", got)
	}
}

func TestStatusListsActiveDownloads(t *testing.T) {
	fake := &fakeTransfers{
		torrents: []qbittorrent.Torrent{
			{Name: "Big Buck Bunny", State: "downloading", Progress: 0.421, ETA: 754},
			{Name: "Done Movie", State: "uploading", Progress: 1},
			{Name: "Sintel", State: "stalledDL", Progress: 0.05, ETA: 8640000},
		},
	}
	got, err := newTestService(fake).Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	want := "Currently downloading 2 item(s):\n" +
		"- Big Buck Bunny: 42.1% (downloading, ETA 12m)\n" +
		"- Sintel: 5.0% (stalled)"
	if got != want {
		t.Errorf("Status() = %q, want %q", got, want)
	}
}

func TestStatusWrapsClientErrors(t *testing.T) {
	fake := &fakeTransfers{torrentsErr: errors.New("connection refused")}
	_, err := newTestService(fake).Status(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("Status() error = %v, want ErrExternalTool", err)
	}
}

func TestSearchTorrentsRanksAndTruncates(t *testing.T) {
	fake := &fakeTransfers{
		results: []qbittorrent.SearchResult{
			{Name: "Movie.2020.720p.WEBRip", Size: 734003200, Seeders: 30},
			{Name: "Movie.2020.1080p.BluRay", Size: 1610612736, Seeders: 120},
			{Name: "Movie.2020.CAM", Size: 524288000, Seeders: 3},
			{Name: "Movie.2020.2160p.WEB-DL", Size: 5368709120, Seeders: 61},
			{Name: "Movie.2020.1080p.WEBRip", Size: 2147483648, Seeders: 80},
			{Name: "Movie.2020.HDRip", Size: 786432000, Seeders: 9},
			{Name: "Movie.2020.DVDRip", Size: 367001600, Seeders: 44},
		},
	}
	got, err := newTestService(fake).SearchTorrents(context.Background(), "movie 2020")
	if err != nil {
		t.Fatalf("SearchTorrents() error = %v", err)
	}
	want := "Found torrents for 'movie 2020':\n" +
		"1. Movie.2020.1080p.BluRay (1.5 GiB, 120 seeders)\n" +
		"2. Movie.2020.1080p.WEBRip (2.0 GiB, 80 seeders)\n" +
		"3. Movie.2020.2160p.WEB-DL (5.0 GiB, 61 seeders)\n" +
		"4. Movie.2020.DVDRip (350.0 MiB, 44 seeders)\n" +
		"5. Movie.2020.720p.WEBRip (700.0 MiB, 30 seeders)\n" +
		"... and 2 more available"
	if got != want {
		t.Errorf("SearchTorrents() = %q, want %q", got, want)
	}
	if fake.searchPattern != "movie 2020" {
		t.Errorf("search pattern = %q", fake.searchPattern)
	}
}

func TestSearchTorrentsNoResults(t *testing.T) {
	got, err := newTestService(&fakeTransfers{}).SearchTorrents(context.Background(), "obscure film")
	if err != nil {
		t.Fatalf("SearchTorrents() error = %v", err)
	}
	if got != "No torrents found for 'obscure film'." {
		t.Errorf("SearchTorrents() = %q", got)
	}
}

func TestSearchTorrentsRequiresQuery(t *testing.T) {
	_, err := newTestService(&fakeTransfers{}).SearchTorrents(context.Background(), "   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("SearchTorrents() error = %v, want ErrValidation", err)
	}
}

func TestDownloadAddsMagnetDirectly(t *testing.T) {
	fake := &fakeTransfers{}
	got, err := newTestService(fake).Download(context.Background(), "magnet:?xt=urn:btih:aabb")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != "Download started." {
		t.Errorf("Download() = %q", got)
	}
	if len(fake.added) != 1 || fake.added[0] != "magnet:?xt=urn:btih:aabb" {
		t.Errorf("added = %v", fake.added)
	}
	if fake.addOpts.SavePath != "/downloads/movies" || fake.addOpts.Category != "movies" {
		t.Errorf("add options = %+v", fake.addOpts)
	}
	if fake.searchPattern != "" {
		t.Error("direct link triggered a search")
	}
}

func TestDownloadSearchesAndAddsBestSeeded(t *testing.T) {
	fake := &fakeTransfers{
		results: []qbittorrent.SearchResult{
			{Name: "Movie.2020.720p.WEBRip", FileURL: "magnet:?xt=2", Size: 734003200, Seeders: 30},
			{Name: "Movie.2020.1080p.BluRay", FileURL: "magnet:?xt=1", Size: 1610612736, Seeders: 120},
		},
	}
	got, err := newTestService(fake).Download(context.Background(), "movie 2020")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	want := "Download started: Movie.2020.1080p.BluRay (1.5 GiB, 120 seeders)."
	if got != want {
		t.Errorf("Download() = %q, want %q", got, want)
	}
	if len(fake.added) != 1 || fake.added[0] != "magnet:?xt=1" {
		t.Errorf("added = %v", fake.added)
	}
}

type recordingNotifier struct {
	names []string
	err   error
}

func (r *recordingNotifier) NotifyDownloadStarted(_ context.Context, name string) error {
	r.names = append(r.names, name)
	return r.err
}

func TestDownloadNotifiesOnStart(t *testing.T) {
	fake := &fakeTransfers{
		results: []qbittorrent.SearchResult{
			{Name: "Movie.2020.1080p", FileURL: "magnet:?xt=1", Size: 1 << 30, Seeders: 50},
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestService(fake).WithNotifier(notifier)

	if _, err := svc.Download(context.Background(), "movie 2020"); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if len(notifier.names) != 1 || notifier.names[0] != "Movie.2020.1080p" {
		t.Errorf("notified = %v", notifier.names)
	}
}

func TestDownloadIgnoresNotifierFailure(t *testing.T) {
	fake := &fakeTransfers{}
	notifier := &recordingNotifier{err: errors.New("ntfy down")}
	svc := newTestService(fake).WithNotifier(notifier)

	got, err := svc.Download(context.Background(), "magnet:?xt=urn:btih:aabb")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != "Download started." {
		t.Errorf("Download() = %q", got)
	}
	if len(notifier.names) != 1 {
		t.Errorf("notifier calls = %d, want 1", len(notifier.names))
	}
}

func TestDownloadNoResults(t *testing.T) {
	got, err := newTestService(&fakeTransfers{}).Download(context.Background(), "obscure film")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != "No torrents found for 'obscure film'." {
		t.Errorf("Download() = %q", got)
	}
}

func TestDownloadWrapsAddErrors(t *testing.T) {
	fake := &fakeTransfers{addErr: errors.New("banned")}
	_, err := newTestService(fake).Download(context.Background(), "magnet:?xt=urn:btih:aabb")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("Download() error = %v, want ErrExternalTool", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{734003200, "700.0 MiB"},
		{1610612736, "1.5 GiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{42, "42s"},
		{754, "12m"},
		{7321, "2h02m"},
	}
	for _, tt := range tests {
		if got := formatETA(tt.seconds); got != tt.want {
			t.Errorf("formatETA(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestServiceReportsMissingClient(t *testing.T) {
	cfg := config.Default()
	service := NewService(nil, &cfg, logging.NewNop())

	if _, err := service.Status(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("Status error = %v, want ErrConfiguration", err)
	}
	if _, err := service.SearchTorrents(context.Background(), "dune"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("SearchTorrents error = %v, want ErrConfiguration", err)
	}
	if _, err := service.Download(context.Background(), "dune"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("Download error = %v, want ErrConfiguration", err)
	}
}
