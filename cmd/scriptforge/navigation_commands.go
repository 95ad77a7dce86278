package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
	"scriptforge/internal/textutil"
	"scriptforge/internal/window"
)

func newWorkspaceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "workspace",
		Short: "Enter the generation workspace for the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndReport(cmd, ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
				p, err := ctx.targetProject(s)
				if err != nil {
					return s, err
				}
				return s.EnterWorkspace(p.ID)
			}, func(s project.ApplicationState) string {
				p, _ := s.ActiveProject()
				return fmt.Sprintf("Workspace: %s", p.Name)
			})
		},
	}
}

func newBackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Step back one screen towards project management",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndReport(cmd, ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
				return s.Back(), nil
			}, func(s project.ApplicationState) string {
				return fmt.Sprintf("Screen: %s", s.CurrentScreen)
			})
		},
	}
}

type statusView struct {
	Screen                string `json:"screen"`
	ProjectID             string `json:"project_id,omitempty"`
	ProjectName           string `json:"project_name,omitempty"`
	Mode                  string `json:"mode,omitempty"`
	PrimarySource         string `json:"primary_source,omitempty"`
	LayoutTemplate        string `json:"layout_template,omitempty"`
	StyleTemplate         string `json:"style_template,omitempty"`
	OutlineChars          int    `json:"outline_chars"`
	CompletedBatches      int    `json:"completed_batches"`
	FailedBatches         int    `json:"failed_batches"`
	HighestCompletedIndex int    `json:"highest_completed_index"`
	NextIndex             int    `json:"next_index,omitempty"`
	NextEpisodes          string `json:"next_episodes,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current screen and project progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				state := store.Snapshot()
				view := statusView{Screen: string(state.CurrentScreen)}
				p, err := ctx.targetProject(state)
				hasProject := err == nil
				if hasProject {
					view = buildStatusView(state, p, cfg.Generation.BatchWidth)
				}
				if jsonOutput {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("ScriptForge", colorize)
				lines = append(lines, renderField("Screen", view.Screen))
				if !hasProject {
					lines = append(lines, renderStatusLine("Project", statusInfo, "none selected", colorize))
					fmt.Fprintln(out, strings.Join(lines, "\n"))
					return nil
				}
				lines = append(lines,
					renderField("Project", fmt.Sprintf("%s (%s)", view.ProjectName, view.ProjectID)),
					renderField("Mode", p.Mode.Label()),
					"",
				)
				lines = append(lines, renderSectionHeader("Knowledge Base", colorize)...)
				lines = append(lines,
					selectionLine(project.RolePrimarySource.Label(), view.PrimarySource, statusError, colorize),
					selectionLine(project.RoleLayoutTemplate.Label(), view.LayoutTemplate, statusInfo, colorize),
					selectionLine(project.RoleStyleTemplate.Label(), view.StyleTemplate, statusInfo, colorize),
					"",
				)
				lines = append(lines, renderSectionHeader("Progress", colorize)...)
				if view.OutlineChars > 0 {
					lines = append(lines, renderStatusLine("Outline", statusOK, formatChars(view.OutlineChars), colorize))
				} else {
					lines = append(lines, renderStatusLine("Outline", statusWarn, "not generated", colorize))
				}
				lines = append(lines,
					renderField("Completed batches", fmt.Sprintf("%d (highest %d)", view.CompletedBatches, view.HighestCompletedIndex)),
				)
				if view.FailedBatches > 0 {
					lines = append(lines, renderStatusLine("Failed batches", statusWarn, fmt.Sprintf("%d", view.FailedBatches), colorize))
				}
				lines = append(lines, renderField("Next batch", fmt.Sprintf("%d (episodes %s)", view.NextIndex, view.NextEpisodes)))
				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func buildStatusView(state project.ApplicationState, p project.Project, batchWidth int) statusView {
	view := statusView{
		Screen:                string(state.CurrentScreen),
		ProjectID:             p.ID,
		ProjectName:           p.Name,
		Mode:                  string(p.Mode),
		OutlineChars:          textutil.RuneLen(p.Outline),
		HighestCompletedIndex: p.HighestCompletedIndex,
		NextIndex:             p.NextSequenceIndex(),
	}
	view.NextEpisodes = window.ForBatch(view.NextIndex, batchWidth).String()
	if d, ok := p.Selected(project.RolePrimarySource); ok {
		view.PrimarySource = d.Name
	}
	if d, ok := p.Selected(project.RoleLayoutTemplate); ok {
		view.LayoutTemplate = d.Name
	}
	if d, ok := p.Selected(project.RoleStyleTemplate); ok {
		view.StyleTemplate = d.Name
	}
	for _, b := range p.Batches {
		if b.Completed() {
			view.CompletedBatches++
		} else if b.Status == project.StatusFailed {
			view.FailedBatches++
		}
	}
	return view
}

func selectionLine(label, name string, missing statusKind, colorize bool) string {
	if name == "" {
		return renderStatusLine(label, missing, "not selected", colorize)
	}
	return renderStatusLine(label, statusOK, name, colorize)
}
