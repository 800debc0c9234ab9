package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateEmbeddings(); err != nil {
		return err
	}
	if err := c.validateTorrent(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if len(c.Library.Roots) == 0 {
		return errors.New("library.roots must name at least one media directory")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/usher/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'usher config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateEmbeddings() error {
	switch c.Embeddings.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("embeddings.provider must be \"openai\" or \"gemini\", got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Dimension <= 0 {
		return errors.New("embeddings.dimension must be positive")
	}
	return nil
}

func (c *Config) validateTorrent() error {
	if strings.TrimSpace(c.Torrent.URL) == "" {
		return nil
	}
	if !strings.HasPrefix(c.Torrent.URL, "http://") && !strings.HasPrefix(c.Torrent.URL, "https://") {
		return fmt.Errorf("torrent.url must start with http:// or https://, got %q", c.Torrent.URL)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"torrent.request_timeout":       c.Torrent.RequestTimeout,
		"torrent.search_timeout":        c.Torrent.SearchTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"library.search_limit":          c.Library.SearchLimit,
		"summaries.top_k":               c.Summaries.TopK,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
