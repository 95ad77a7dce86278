package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGeneration() error {
	g := c.Generation
	if err := ensurePositiveMap(map[string]int{
		"generation.batch_width":            g.BatchWidth,
		"generation.assumed_total_episodes": g.AssumedTotalEpisodes,
		"generation.window_size":            g.WindowSize,
		"generation.outline_source_limit":   g.OutlineSourceLimit,
		"generation.continuity_chars":       g.ContinuityChars,
		"generation.handoff_chars":          g.HandoffChars,
	}); err != nil {
		return err
	}
	if g.WindowBacktrack < 0 {
		return errors.New("generation.window_backtrack must be >= 0")
	}
	if g.HandoffChars > g.ContinuityChars {
		return errors.New("generation.handoff_chars must not exceed generation.continuity_chars")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		return errors.New("generation.temperature must be between 0 and 2")
	}
	if strings.TrimSpace(g.SummaryMarker) == "" {
		return errors.New("generation.summary_marker must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		return fmt.Errorf("llm.base_url must be an http(s) URL, got %q", c.LLM.BaseURL)
	}
	return nil
}

// RequireAPIKey reports a configuration error when no API key is available.
// Only commands that contact the generation service call it.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'scriptforge config init')", defaultPath)
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
