package config

const (
	defaultStateDir       = "~/.local/share/usher"
	defaultLogDir         = "~/.local/share/usher/logs"
	defaultSubtitleDir    = "~/.local/share/usher/subtitles"
	defaultAPIBind        = "127.0.0.1:7817"
	defaultLibraryRoot    = "~/movies"
	defaultSearchLimit    = 20
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLLMBaseURL     = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel       = "gpt-4o-mini"
	defaultLLMReferer     = "https://github.com/five82/usher"
	defaultLLMTitle       = "Usher Assistant"
	defaultLLMTimeout     = 60
	defaultEmbedProvider  = "openai"
	defaultEmbedBaseURL   = "https://api.openai.com/v1"
	defaultEmbedModel     = "text-embedding-3-small"
	defaultEmbedDimension = 1536
	defaultGeminiModel    = "gemini-embedding-001"
	defaultSummariesTopK  = 5
	defaultTorrentURL     = "http://localhost:8080"
	defaultTorrentReqSecs = 15
	defaultSearchSecs     = 60
	defaultOSBaseURL      = "https://api.opensubtitles.com/api/v1"
	defaultOSUserAgent    = "Usher/dev"
	defaultNotifyTimeout  = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
			SubtitleDir: defaultSubtitleDir,
			APIBind:     defaultAPIBind,
		},
		Library: Library{
			Roots:       []string{defaultLibraryRoot},
			SearchLimit: defaultSearchLimit,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Embeddings: Embeddings{
			Provider:  defaultEmbedProvider,
			BaseURL:   defaultEmbedBaseURL,
			Model:     defaultEmbedModel,
			Dimension: defaultEmbedDimension,
		},
		Summaries: Summaries{
			TopK: defaultSummariesTopK,
		},
		Torrent: Torrent{
			URL:            defaultTorrentURL,
			RequestTimeout: defaultTorrentReqSecs,
			SearchTimeout:  defaultSearchSecs,
		},
		Subtitles: Subtitles{
			BaseURL:   defaultOSBaseURL,
			UserAgent: defaultOSUserAgent,
			Languages: []string{"en"},
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Daemon:         true,
			Downloads:      true,
			Scans:          true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
