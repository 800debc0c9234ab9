package config

import (
	"fmt"
	"os"
	"strings"

	"usher/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeEmbeddings()
	c.normalizeSummaries()
	c.normalizeTorrent()
	c.normalizeSubtitles()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SubtitleDir) == "" {
		c.Paths.SubtitleDir = defaultSubtitleDir
	}
	if c.Paths.SubtitleDir, err = expandPath(c.Paths.SubtitleDir); err != nil {
		return fmt.Errorf("paths.subtitle_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeLibrary() error {
	roots := make([]string, 0, len(c.Library.Roots))
	seen := make(map[string]struct{}, len(c.Library.Roots))
	for _, root := range c.Library.Roots {
		trimmed := strings.TrimSpace(root)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("library.roots: %w", err)
		}
		if _, dup := seen[expanded]; dup {
			continue
		}
		seen[expanded] = struct{}{}
		roots = append(roots, expanded)
	}
	c.Library.Roots = roots
	if c.Library.SearchLimit <= 0 {
		c.Library.SearchLimit = defaultSearchLimit
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeEmbeddings() {
	c.Embeddings.Provider = strings.ToLower(strings.TrimSpace(c.Embeddings.Provider))
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = defaultEmbedProvider
	}
	c.Embeddings.APIKey = strings.TrimSpace(c.Embeddings.APIKey)
	if c.Embeddings.APIKey == "" {
		switch c.Embeddings.Provider {
		case "gemini":
			if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
				c.Embeddings.APIKey = strings.TrimSpace(value)
			} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
				c.Embeddings.APIKey = strings.TrimSpace(value)
			}
		default:
			if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
				c.Embeddings.APIKey = strings.TrimSpace(value)
			}
		}
	}
	c.Embeddings.BaseURL = strings.TrimSpace(c.Embeddings.BaseURL)
	if c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = defaultEmbedBaseURL
	}
	c.Embeddings.Model = strings.TrimSpace(c.Embeddings.Model)
	if c.Embeddings.Model == "" {
		if c.Embeddings.Provider == "gemini" {
			c.Embeddings.Model = defaultGeminiModel
		} else {
			c.Embeddings.Model = defaultEmbedModel
		}
	}
	if c.Embeddings.Dimension <= 0 {
		c.Embeddings.Dimension = defaultEmbedDimension
	}
}

func (c *Config) normalizeSummaries() {
	if c.Summaries.TopK <= 0 {
		c.Summaries.TopK = defaultSummariesTopK
	}
}

// normalizeTorrent leaves a blank URL blank: an explicit `url = ""` in the
// config switches the qBittorrent integration off.
func (c *Config) normalizeTorrent() {
	c.Torrent.URL = strings.TrimRight(strings.TrimSpace(c.Torrent.URL), "/")
	c.Torrent.Username = strings.TrimSpace(c.Torrent.Username)
	c.Torrent.Password = strings.TrimSpace(c.Torrent.Password)
	if c.Torrent.Password == "" {
		if value, ok := os.LookupEnv("QBITTORRENT_PASSWORD"); ok {
			c.Torrent.Password = strings.TrimSpace(value)
		}
	}
	if c.Torrent.RequestTimeout <= 0 {
		c.Torrent.RequestTimeout = defaultTorrentReqSecs
	}
	if c.Torrent.SearchTimeout <= 0 {
		c.Torrent.SearchTimeout = defaultSearchSecs
	}
	c.Torrent.SavePath = strings.TrimSpace(c.Torrent.SavePath)
	c.Torrent.Category = strings.TrimSpace(c.Torrent.Category)
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.APIKey = strings.TrimSpace(c.Subtitles.APIKey)
	if c.Subtitles.APIKey == "" {
		if value, ok := os.LookupEnv("OPENSUBTITLES_API_KEY"); ok {
			c.Subtitles.APIKey = strings.TrimSpace(value)
		}
	}
	c.Subtitles.UserAgent = strings.TrimSpace(c.Subtitles.UserAgent)
	if c.Subtitles.UserAgent == "" {
		c.Subtitles.UserAgent = defaultOSUserAgent
	}
	c.Subtitles.UserToken = strings.TrimSpace(c.Subtitles.UserToken)
	if c.Subtitles.UserToken == "" {
		if value, ok := os.LookupEnv("OPENSUBTITLES_USER_TOKEN"); ok {
			c.Subtitles.UserToken = strings.TrimSpace(value)
		}
	}
	c.Subtitles.BaseURL = strings.TrimRight(strings.TrimSpace(c.Subtitles.BaseURL), "/")
	if c.Subtitles.BaseURL == "" {
		c.Subtitles.BaseURL = defaultOSBaseURL
	}
	langs := language.NormalizeList(c.Subtitles.Languages)
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	c.Subtitles.Languages = langs
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
