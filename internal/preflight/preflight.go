package preflight

import (
	"context"

	"scriptforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options controls which checks run.
type Options struct {
	// SkipLLM omits the network round trip to the generation service.
	SkipLLM bool
}

// RunAll executes the preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckFreeSpace("Data free space", cfg.Paths.DataDir, minFreeBytes),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckOptionalDirectory("Export directory", cfg.Paths.ExportDir),
	}

	llmCfg := cfg.GetLLM()
	results = append(results, CheckAPIKey(llmCfg))
	if !opts.SkipLLM && llmCfg.APIKey != "" {
		results = append(results, CheckLLM(ctx, "Generation LLM", llmCfg))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
