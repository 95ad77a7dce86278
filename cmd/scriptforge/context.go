package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scriptforge/internal/config"
	"scriptforge/internal/logging"
	"scriptforge/internal/pipeline"
	"scriptforge/internal/project"
	"scriptforge/internal/prompt"
	"scriptforge/internal/services/llm"
	"scriptforge/internal/statestore"
)

type commandContext struct {
	configFlag  *string
	projectFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, projectFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		projectFlag: projectFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore opens the state store for the duration of fn.
func (c *commandContext) withStore(ctx context.Context, fn func(*statestore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := statestore.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) newPipeline(store *statestore.Store) (*pipeline.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	renderer, err := prompt.New(prompt.Options{
		OutlineTemplatePath: cfg.Prompts.OutlineTemplate,
		BatchTemplatePath:   cfg.Prompts.BatchTemplate,
	})
	if err != nil {
		return nil, err
	}
	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
		MaxTokens:      llmCfg.MaxTokens,
	}, llm.WithRetryMaxAttempts(llmCfg.RetryAttempts))
	return pipeline.NewService(store, client, renderer, pipeline.SettingsFromConfig(cfg), logger), nil
}

// targetProject resolves --project, falling back to the active project.
func (c *commandContext) targetProject(state project.ApplicationState) (project.Project, error) {
	if c.projectFlag != nil {
		if id := strings.TrimSpace(*c.projectFlag); id != "" {
			p, ok := state.Project(id)
			if !ok {
				return project.Project{}, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
			}
			return p, nil
		}
	}
	p, ok := state.ActiveProject()
	if !ok {
		return project.Project{}, project.ErrNoActiveProject
	}
	return p, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
