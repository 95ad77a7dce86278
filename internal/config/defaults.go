package config

const (
	defaultConfigPath           = "~/.config/scriptforge/config.toml"
	defaultDataDir              = "~/.local/share/scriptforge"
	defaultExportDir            = "~/scriptforge/exports"
	defaultLogDir               = "~/.local/share/scriptforge/logs"
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "google/gemini-3-flash-Preview"
	defaultLLMReferer           = "https://github.com/scriptforge/scriptforge"
	defaultLLMTitle             = "YuanMu AI Script Workshop"
	defaultLLMTimeoutSeconds    = 600
	defaultLLMMaxTokens         = 8192
	defaultLLMRetryAttempts     = 1
	defaultBatchWidth           = 3
	defaultAssumedTotalEpisodes = 80
	defaultWindowSize           = 150000
	defaultWindowBacktrack      = 20000
	defaultOutlineSourceLimit   = 300000
	defaultContinuityChars      = 25000
	defaultHandoffChars         = 1500
	defaultTemperature          = 0.85
	defaultSummaryMarker        = "【全剧累积剧情快照更新】"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxTokens:      defaultLLMMaxTokens,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Generation: Generation{
			BatchWidth:           defaultBatchWidth,
			AssumedTotalEpisodes: defaultAssumedTotalEpisodes,
			WindowSize:           defaultWindowSize,
			WindowBacktrack:      defaultWindowBacktrack,
			OutlineSourceLimit:   defaultOutlineSourceLimit,
			ContinuityChars:      defaultContinuityChars,
			HandoffChars:         defaultHandoffChars,
			Temperature:          defaultTemperature,
			SummaryMarker:        defaultSummaryMarker,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
