package qbittorrent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrAuthFailed reports rejected WebUI credentials.
var ErrAuthFailed = errors.New("qbittorrent: authentication failed")

// etaInfinity is the sentinel qBittorrent reports when no estimate exists.
const etaInfinity = 8640000

// Config carries the WebUI connection settings.
type Config struct {
	URL            string
	Username       string
	Password       string
	RequestTimeout time.Duration
	SearchTimeout  time.Duration
}

// Torrent is one entry from torrents/info.
type Torrent struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	Size     int64   `json:"size"`
	DLSpeed  int64   `json:"dlspeed"`
	ETA      int64   `json:"eta"`
	Category string  `json:"category"`
	SavePath string  `json:"save_path"`
}

// HasETA reports whether the torrent carries a usable time estimate.
func (t Torrent) HasETA() bool {
	return t.ETA > 0 && t.ETA < etaInfinity
}

// SearchResult is one entry from the plugin search results.
type SearchResult struct {
	Name     string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	Size     int64  `json:"fileSize"`
	Seeders  int64  `json:"nbSeeders"`
	Leechers int64  `json:"nbLeechers"`
	SiteURL  string `json:"siteUrl"`
}

// AddOptions tunes how a new transfer is registered.
type AddOptions struct {
	SavePath string
	Category string
}

// Client talks to the qBittorrent WebUI v2 API. Sessions are cookie based;
// the client logs in lazily and retries once when the cookie expires.
type Client struct {
	baseURL       string
	username      string
	password      string
	http          *http.Client
	searchTimeout time.Duration

	mu       sync.Mutex
	loggedIn bool
}

// New constructs a client for the given WebUI endpoint.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("qbittorrent: url required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = 60 * time.Second
	}
	return &Client{
		baseURL:       base,
		username:      cfg.Username,
		password:      cfg.Password,
		http:          &http.Client{Jar: jar, Timeout: requestTimeout},
		searchTimeout: searchTimeout,
	}, nil
}

// Login authenticates against the WebUI. qBittorrent answers 200 with the
// literal body "Ok." on success and "Fails." on bad credentials.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	body, err := c.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(body)) != "Ok." {
		return ErrAuthFailed
	}

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	return nil
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	loggedIn := c.loggedIn
	c.mu.Unlock()
	if loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// Torrents returns all registered transfers.
func (c *Client) Torrents(ctx context.Context) ([]Torrent, error) {
	var torrents []Torrent
	if err := c.getJSON(ctx, "/api/v2/torrents/info", nil, &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// Add registers new transfers from magnet links or torrent URLs.
func (c *Client) Add(ctx context.Context, urls []string, opts AddOptions) error {
	if len(urls) == 0 {
		return errors.New("qbittorrent: no urls to add")
	}
	form := url.Values{}
	form.Set("urls", strings.Join(urls, "\n"))
	if opts.SavePath != "" {
		form.Set("savepath", opts.SavePath)
	}
	if opts.Category != "" {
		form.Set("category", opts.Category)
	}

	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	body, err := c.postForm(ctx, "/api/v2/torrents/add", form)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(body)) == "Fails." {
		return errors.New("qbittorrent: add rejected")
	}
	return nil
}

// Search runs the plugin search flow: start a job, poll until it stops,
// collect results, and always delete the job afterwards.
func (c *Client) Search(ctx context.Context, pattern string, limit int) ([]SearchResult, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("pattern", pattern)
	form.Set("plugins", "all")
	form.Set("category", "all")

	var started struct {
		ID int64 `json:"id"`
	}
	if err := c.postJSON(ctx, "/api/v2/search/start", form, &started); err != nil {
		return nil, fmt.Errorf("start search: %w", err)
	}
	defer c.deleteSearch(started.ID)

	if err := c.waitForSearch(ctx, started.ID); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("id", fmt.Sprintf("%d", started.ID))
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}
	var results struct {
		Results []SearchResult `json:"results"`
		Status  string         `json:"status"`
		Total   int            `json:"total"`
	}
	if err := c.getJSON(ctx, "/api/v2/search/results", query, &results); err != nil {
		return nil, fmt.Errorf("fetch search results: %w", err)
	}
	return results.Results, nil
}

func (c *Client) waitForSearch(ctx context.Context, id int64) error {
	deadline := time.NewTimer(c.searchTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	query := url.Values{}
	query.Set("id", fmt.Sprintf("%d", id))

	for {
		var statuses []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
			Total  int    `json:"total"`
		}
		if err := c.getJSON(ctx, "/api/v2/search/status", query, &statuses); err != nil {
			return fmt.Errorf("poll search status: %w", err)
		}
		for _, status := range statuses {
			if status.ID == id && status.Status == "Stopped" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("qbittorrent: search %d still running after %s", id, c.searchTimeout)
		case <-ticker.C:
		}
	}
}

func (c *Client) deleteSearch(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	form := url.Values{}
	form.Set("id", fmt.Sprintf("%d", id))
	_, _ = c.postForm(ctx, "/api/v2/search/delete", form)
}

// Version returns the application version, used as a reachability probe.
func (c *Client) Version(ctx context.Context) (string, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return "", err
	}
	body, err := c.get(ctx, "/api/v2/app/version", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// CheckHealth verifies the WebUI is reachable and the credentials work.
func (c *Client) CheckHealth(ctx context.Context) error {
	if err := c.Login(ctx); err != nil {
		return err
	}
	if _, err := c.Version(ctx); err != nil {
		return fmt.Errorf("query version: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, form url.Values, out any) error {
	body, err := c.postForm(ctx, path, form)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req, path)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qbittorrent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusForbidden {
		c.mu.Lock()
		c.loggedIn = false
		c.mu.Unlock()
		return nil, fmt.Errorf("qbittorrent %s %s returned 403: %w", req.Method, path, ErrAuthFailed)
	}
	if resp.StatusCode >= 400 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("qbittorrent %s %s returned %d: %s", req.Method, path, resp.StatusCode, snippet)
	}
	return body, nil
}
