package pipeline

import "scriptforge/internal/config"

// Settings are the generation knobs the pipeline needs.
type Settings struct {
	BatchWidth           int
	AssumedTotalEpisodes int
	WindowSize           int
	WindowBacktrack      int
	OutlineSourceLimit   int
	ContinuityChars      int
	HandoffChars         int
	Temperature          float64
	SummaryMarker        string
	// Model overrides the client's configured model when set.
	Model string
	// LockDir holds per-project generation lock files. Empty disables
	// cross-process locking.
	LockDir string
}

// SettingsFromConfig maps the loaded configuration onto Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	g := cfg.Generation
	return Settings{
		BatchWidth:           g.BatchWidth,
		AssumedTotalEpisodes: g.AssumedTotalEpisodes,
		WindowSize:           g.WindowSize,
		WindowBacktrack:      g.WindowBacktrack,
		OutlineSourceLimit:   g.OutlineSourceLimit,
		ContinuityChars:      g.ContinuityChars,
		HandoffChars:         g.HandoffChars,
		Temperature:          g.Temperature,
		SummaryMarker:        g.SummaryMarker,
		Model:                cfg.LLM.Model,
		LockDir:              cfg.LockDir(),
	}
}
