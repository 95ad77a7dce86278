package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
	"scriptforge/internal/textutil"
)

type projectView struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Mode                  string    `json:"mode"`
	CreatedAt             time.Time `json:"created_at"`
	Documents             int       `json:"documents"`
	OutlineChars          int       `json:"outline_chars"`
	Batches               int       `json:"batches"`
	HighestCompletedIndex int       `json:"highest_completed_index"`
	Active                bool      `json:"active"`
}

func newProjectView(p project.Project, activeID string) projectView {
	return projectView{
		ID:                    p.ID,
		Name:                  p.Name,
		Mode:                  string(p.Mode),
		CreatedAt:             p.CreatedAt,
		Documents:             len(p.Documents),
		OutlineChars:          textutil.RuneLen(p.Outline),
		Batches:               len(p.Batches),
		HighestCompletedIndex: p.HighestCompletedIndex,
		Active:                p.ID == activeID,
	}
}

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create, list, select and delete projects",
	}
	projectCmd.AddCommand(newProjectCreateCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectSelectCommand(ctx))
	projectCmd.AddCommand(newProjectDeleteCommand(ctx))
	projectCmd.AddCommand(newProjectRenameCommand(ctx))
	projectCmd.AddCommand(newProjectModeCommand(ctx))
	return projectCmd
}

func newProjectCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				var created project.Project
				_, err := store.Mutate(cmd.Context(), func(s project.ApplicationState) (project.ApplicationState, error) {
					next, p, err := s.CreateProject(args[0], time.Now())
					created = p
					return next, err
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created project %s (%s)\n", created.Name, created.ID)
				fmt.Fprintln(out, "Next: add the novel with `scriptforge doc add <file> --role primary --select`")
				return nil
			})
		},
	}
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				state := store.Snapshot()
				projects := state.ListProjects()
				views := make([]projectView, 0, len(projects))
				for _, p := range projects {
					views = append(views, newProjectView(p, state.ActiveProjectID))
				}
				if jsonOutput {
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintln(out, "No projects. Create one with `scriptforge project create <name>`.")
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					marker := ""
					if v.Active {
						marker = "*"
					}
					rows = append(rows, []string{
						marker,
						v.ID,
						v.Name,
						project.ProductionMode(v.Mode).Label(),
						strconv.Itoa(v.Documents),
						strconv.Itoa(v.HighestCompletedIndex),
						formatTime(v.CreatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"", "ID", "Name", "Mode", "Docs", "Done", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newProjectSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a project active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndReport(cmd, ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
				return s.SelectProject(args[0])
			}, func(s project.ApplicationState) string {
				p, _ := s.ActiveProject()
				return fmt.Sprintf("Active project: %s (%s)", p.Name, p.ID)
			})
		},
	}
}

func newProjectDeleteCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project with its documents, outline and batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to delete project %s without --yes", args[0])
			}
			return mutateAndReport(cmd, ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
				return s.DeleteProject(args[0])
			}, func(project.ApplicationState) string {
				return fmt.Sprintf("Deleted project %s", args[0])
			})
		},
	}
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm deletion")
	return cmd
}

func newProjectRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return updateTarget(cmd, ctx, project.Update{Name: &name}, func(p project.Project) string {
				return fmt.Sprintf("Renamed project %s to %s", p.ID, p.Name)
			})
		},
	}
}

func newProjectModeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "mode male|female",
		Short:     "Set the audience channel the scripts are written for",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(project.ModeMale), string(project.ModeFemale)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := project.ParseMode(args[0])
			if err != nil {
				return err
			}
			return updateTarget(cmd, ctx, project.Update{Mode: &mode}, func(p project.Project) string {
				return fmt.Sprintf("Production mode: %s (%s)", p.Mode.Label(), p.Mode)
			})
		},
	}
}

// mutateAndReport applies fn and prints report(next state).
func mutateAndReport(cmd *cobra.Command, ctx *commandContext, fn func(project.ApplicationState) (project.ApplicationState, error), report func(project.ApplicationState) string) error {
	return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
		next, err := store.Mutate(cmd.Context(), fn)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report(next))
		return nil
	})
}

// updateTarget merges u into the target project.
func updateTarget(cmd *cobra.Command, ctx *commandContext, u project.Update, report func(project.Project) string) error {
	return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
		var id string
		next, err := store.Mutate(cmd.Context(), func(s project.ApplicationState) (project.ApplicationState, error) {
			p, err := ctx.targetProject(s)
			if err != nil {
				return s, err
			}
			id = p.ID
			return s.UpdateProject(p.ID, u)
		})
		if err != nil {
			return err
		}
		p, _ := next.Project(id)
		fmt.Fprintln(cmd.OutOrStdout(), report(p))
		return nil
	})
}
