package subtitles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"usher/internal/config"
	"usher/internal/logging"
	"usher/internal/services"
	"usher/internal/subtitles/opensubtitles"
)

type fakeSearcher struct {
	resp      opensubtitles.SearchResponse
	searchErr error
	searchReq opensubtitles.SearchRequest

	downloads  []int64
	downloadFn func(fileID int64) (opensubtitles.DownloadResult, error)
}

func (f *fakeSearcher) Search(_ context.Context, req opensubtitles.SearchRequest) (opensubtitles.SearchResponse, error) {
	f.searchReq = req
	return f.resp, f.searchErr
}

func (f *fakeSearcher) Download(_ context.Context, fileID int64, _ opensubtitles.DownloadOptions) (opensubtitles.DownloadResult, error) {
	f.downloads = append(f.downloads, fileID)
	if f.downloadFn != nil {
		return f.downloadFn(fileID)
	}
	return opensubtitles.DownloadResult{Data: []byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n")}, nil
}

func newTestService(t *testing.T, fake *fakeSearcher) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SubtitleDir = dir
	cfg.Subtitles.Languages = []string{"en"}

	service := NewService(fake, &cfg, logging.NewNop())
	service.limiter = opensubtitles.NewLimiter(time.Millisecond)
	service.retryBackoff = time.Millisecond
	service.maxBackoff = 2 * time.Millisecond
	return service, dir
}

func TestSearchSubtitlesGroupsByLanguage(t *testing.T) {
	fake := &fakeSearcher{
		resp: opensubtitles.SearchResponse{
			Subtitles: []opensubtitles.Subtitle{
				{Language: "en", Release: "Inception.2010.1080p.BluRay", Downloads: 150000, FileID: 1},
				{Language: "es", Release: "Inception.2010.BDRip.ES", Downloads: 9000, FileID: 2},
				{Language: "en", Release: "Inception.2010.WEBRip", Downloads: 12000, FileID: 3},
			},
			Total: 3,
		},
	}
	service, _ := newTestService(t, fake)

	got, err := service.SearchSubtitles(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("SearchSubtitles() error = %v", err)
	}
	want := "Found subtitles for 'Inception':\n" +
		"- English: 2 candidate(s), best release 'Inception.2010.1080p.BluRay' (150000 downloads)\n" +
		"- Spanish: 1 candidate(s), best release 'Inception.2010.BDRip.ES' (9000 downloads)"
	if got != want {
		t.Errorf("SearchSubtitles() = %q, want %q", got, want)
	}
	if fake.searchReq.Query != "Inception" {
		t.Errorf("search query = %q", fake.searchReq.Query)
	}
	if len(fake.searchReq.Languages) != 1 || fake.searchReq.Languages[0] != "en" {
		t.Errorf("search languages = %v", fake.searchReq.Languages)
	}
}

func TestSearchSubtitlesNoResults(t *testing.T) {
	service, _ := newTestService(t, &fakeSearcher{})
	got, err := service.SearchSubtitles(context.Background(), "Obscure Film")
	if err != nil {
		t.Fatalf("SearchSubtitles() error = %v", err)
	}
	if got != "No subtitles found for 'Obscure Film'." {
		t.Errorf("SearchSubtitles() = %q", got)
	}
}

func TestDownloadSavesBestPerLanguage(t *testing.T) {
	fake := &fakeSearcher{
		resp: opensubtitles.SearchResponse{
			Subtitles: []opensubtitles.Subtitle{
				{Language: "en", Release: "weak", Downloads: 100, FileID: 11},
				{Language: "en", Release: "strong", Downloads: 150000, FileID: 999},
				{Language: "es", Release: "única", Downloads: 9000, FileID: 111},
			},
		},
	}
	fake.downloadFn = func(fileID int64) (opensubtitles.DownloadResult, error) {
		return opensubtitles.DownloadResult{Data: []byte(fmt.Sprintf("payload-%d", fileID))}, nil
	}
	service, dir := newTestService(t, fake)

	got, err := service.Download(context.Background(), "Inception", []string{"english", "es"})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	enPath := filepath.Join(dir, "Inception.en.srt")
	esPath := filepath.Join(dir, "Inception.es.srt")
	want := fmt.Sprintf("Downloaded 2 subtitle(s) for 'Inception':\n- English: %s\n- Spanish: %s", enPath, esPath)
	if got != want {
		t.Errorf("Download() = %q, want %q", got, want)
	}

	data, err := os.ReadFile(enPath)
	if err != nil {
		t.Fatalf("read saved subtitle: %v", err)
	}
	if string(data) != "payload-999" {
		t.Errorf("english payload = %q, want payload-999 (best by downloads)", data)
	}
	if _, err := os.Stat(esPath); err != nil {
		t.Errorf("spanish subtitle missing: %v", err)
	}
}

func TestDownloadReportsMissingLanguage(t *testing.T) {
	fake := &fakeSearcher{
		resp: opensubtitles.SearchResponse{
			Subtitles: []opensubtitles.Subtitle{
				{Language: "en", Release: "only english", Downloads: 500, FileID: 42},
			},
		},
	}
	service, dir := newTestService(t, fake)

	got, err := service.Download(context.Background(), "Inception", []string{"en", "german"})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	want := fmt.Sprintf("Downloaded 1 subtitle(s) for 'Inception':\n- English: %s\n- German: no subtitles found",
		filepath.Join(dir, "Inception.en.srt"))
	if got != want {
		t.Errorf("Download() = %q, want %q", got, want)
	}
}

func TestDownloadRetriesRateLimits(t *testing.T) {
	attempts := 0
	fake := &fakeSearcher{
		resp: opensubtitles.SearchResponse{
			Subtitles: []opensubtitles.Subtitle{
				{Language: "en", Downloads: 500, FileID: 42},
			},
		},
	}
	fake.downloadFn = func(int64) (opensubtitles.DownloadResult, error) {
		attempts++
		if attempts < 3 {
			return opensubtitles.DownloadResult{}, errors.New("download negotiation failed (429 Too Many Requests)")
		}
		return opensubtitles.DownloadResult{Data: []byte("fine")}, nil
	}
	service, _ := newTestService(t, fake)

	got, err := service.Download(context.Background(), "Inception", []string{"en"})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("download attempts = %d, want 3", attempts)
	}
	if got == "" {
		t.Error("Download() returned empty reply")
	}
}

func TestDownloadStopsOnHardError(t *testing.T) {
	fake := &fakeSearcher{
		resp: opensubtitles.SearchResponse{
			Subtitles: []opensubtitles.Subtitle{
				{Language: "en", Downloads: 500, FileID: 42},
			},
		},
	}
	fake.downloadFn = func(int64) (opensubtitles.DownloadResult, error) {
		return opensubtitles.DownloadResult{}, errors.New("download negotiation failed (401 Unauthorized)")
	}
	service, _ := newTestService(t, fake)

	_, err := service.Download(context.Background(), "Inception", []string{"en"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("Download() error = %v, want ErrExternalTool", err)
	}
	if len(fake.downloads) != 1 {
		t.Errorf("download attempts = %d, want 1 for non-retriable error", len(fake.downloads))
	}
}

func TestDownloadRejectsUnknownLanguage(t *testing.T) {
	service, _ := newTestService(t, &fakeSearcher{})
	_, err := service.Download(context.Background(), "Inception", []string{"klingon"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Download() error = %v, want ErrValidation", err)
	}
}

func TestDownloadDefaultsToConfiguredLanguages(t *testing.T) {
	fake := &fakeSearcher{}
	service, _ := newTestService(t, fake)

	if _, err := service.Download(context.Background(), "Inception", nil); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if len(fake.searchReq.Languages) != 1 || fake.searchReq.Languages[0] != "en" {
		t.Errorf("search languages = %v, want configured default [en]", fake.searchReq.Languages)
	}
}

func TestDownloadSanitizesFileName(t *testing.T) {
	fake := &fakeSearcher{
		resp: opensubtitles.SearchResponse{
			Subtitles: []opensubtitles.Subtitle{
				{Language: "en", Downloads: 500, FileID: 42},
			},
		},
	}
	service, dir := newTestService(t, fake)

	if _, err := service.Download(context.Background(), "Mission: Impossible", []string{"en"}); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Mission- Impossible.en.srt")); err != nil {
		t.Errorf("sanitized subtitle file missing: %v", err)
	}
}

func TestServiceReportsMissingClient(t *testing.T) {
	cfg := config.Default()
	service := NewService(nil, &cfg, logging.NewNop())

	if _, err := service.SearchSubtitles(context.Background(), "Arrival"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("SearchSubtitles error = %v, want ErrConfiguration", err)
	}
	if _, err := service.Download(context.Background(), "Arrival", nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("Download error = %v, want ErrConfiguration", err)
	}
}
