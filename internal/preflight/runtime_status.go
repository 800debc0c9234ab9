package preflight

import (
	"context"
	"strings"

	"usher/internal/config"
)

// CheckLLMFromConfig evaluates chat LLM status from config and connectivity.
func CheckLLMFromConfig(cfg *config.Config) Result {
	const name = "LLM API"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return CheckLLM(context.Background(), name, cfg.GetLLM())
}

// CheckEmbeddingsFromConfig evaluates embedding provider status from config
// and connectivity.
func CheckEmbeddingsFromConfig(cfg *config.Config) Result {
	const name = "Embeddings API"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Embeddings.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	check := CheckEmbeddings(context.Background(), cfg)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// CheckQBittorrentFromConfig evaluates qBittorrent status from config and
// connectivity. A blank WebUI URL means the integration is switched off.
func CheckQBittorrentFromConfig(cfg *config.Config) Result {
	const name = "qBittorrent"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Torrent.URL) == "" {
		return Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	check := CheckQBittorrent(context.Background(), cfg)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// CheckOpenSubtitlesFromConfig evaluates OpenSubtitles status from config and
// connectivity. A blank API key means the integration is switched off.
func CheckOpenSubtitlesFromConfig(cfg *config.Config) Result {
	const name = "OpenSubtitles"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Subtitles.APIKey) == "" {
		return Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	check := CheckOpenSubtitles(
		context.Background(),
		cfg.Subtitles.BaseURL,
		cfg.Subtitles.APIKey,
		cfg.Subtitles.UserAgent,
	)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}
