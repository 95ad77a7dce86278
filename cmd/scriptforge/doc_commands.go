package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scriptforge/internal/ingest"
	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
	"scriptforge/internal/textutil"
)

type documentView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	MediaType string `json:"media_type"`
	Chars     int    `json:"chars"`
	Selected  bool   `json:"selected"`
}

func newDocCommand(ctx *commandContext) *cobra.Command {
	docCmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage the project's knowledge base documents",
	}
	docCmd.AddCommand(newDocAddCommand(ctx))
	docCmd.AddCommand(newDocListCommand(ctx))
	docCmd.AddCommand(newDocRemoveCommand(ctx))
	docCmd.AddCommand(newDocSelectCommand(ctx))
	return docCmd
}

func newDocAddCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string
	var selectThem bool
	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Extract text from files and add them under one role",
		Long: "Extract text from PDF, DOCX or plain text files and add them to the project.\n" +
			"Roles: primary (原著小说), layout (排版参考), style (文笔参考).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := project.ParseRole(roleFlag)
			if err != nil {
				return err
			}
			extracted, err := ingest.NewExtractor().ExtractAll(cmd.Context(), args)
			if err != nil {
				return err
			}
			docs := make([]project.ReferenceDocument, 0, len(extracted))
			for _, d := range extracted {
				docs = append(docs, project.NewDocument(d.Name, role, d.Content, d.MediaType))
			}
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				_, err := store.Mutate(cmd.Context(), func(s project.ApplicationState) (project.ApplicationState, error) {
					p, err := ctx.targetProject(s)
					if err != nil {
						return s, err
					}
					return s.AddDocuments(p.ID, selectThem, docs...)
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, d := range docs {
					fmt.Fprintf(out, "Added %s %s (%s, %s)\n", role.Label(), d.Name, d.ID, formatChars(textutil.RuneLen(d.Content)))
				}
				if selectThem {
					fmt.Fprintf(out, "Selected %s: %s\n", role.Label(), docs[len(docs)-1].Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&roleFlag, "role", "r", string(project.RolePrimarySource), "Document role: primary, layout or style")
	cmd.Flags().BoolVarP(&selectThem, "select", "s", false, "Select the added document for its role")
	return cmd
}

func newDocListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents grouped by role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				p, err := ctx.targetProject(store.Snapshot())
				if err != nil {
					return err
				}
				var views []documentView
				for _, role := range project.Roles() {
					selected := p.SelectionID(role)
					for _, d := range p.DocumentsByRole(role) {
						views = append(views, documentView{
							ID:        d.ID,
							Name:      d.Name,
							Role:      string(d.Role),
							MediaType: d.MediaType,
							Chars:     textutil.RuneLen(d.Content),
							Selected:  d.ID == selected,
						})
					}
				}
				if jsonOutput {
					if views == nil {
						views = []documentView{}
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintf(out, "Project %s has no documents.\n", p.Name)
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					marker := ""
					if v.Selected {
						marker = "*"
					}
					rows = append(rows, []string{
						marker,
						v.ID,
						project.DocumentRole(v.Role).Label(),
						v.Name,
						strconv.Itoa(v.Chars),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"", "ID", "Role", "Name", "Chars"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newDocRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <doc-id>",
		Short: "Remove a document, clearing its selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndReport(cmd, ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
				p, err := ctx.targetProject(s)
				if err != nil {
					return s, err
				}
				return s.RemoveDocument(p.ID, args[0])
			}, func(project.ApplicationState) string {
				return fmt.Sprintf("Removed document %s", args[0])
			})
		},
	}
}

func newDocSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <doc-id>",
		Short: "Select a document for its role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected project.ReferenceDocument
			return mutateAndReport(cmd, ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
				p, err := ctx.targetProject(s)
				if err != nil {
					return s, err
				}
				doc, ok := p.Document(args[0])
				if !ok {
					return s, fmt.Errorf("%w: %s", project.ErrDocumentNotFound, args[0])
				}
				selected = doc
				return s.SelectDocument(p.ID, doc.ID)
			}, func(project.ApplicationState) string {
				return fmt.Sprintf("Selected %s: %s", selected.Role.Label(), selected.Name)
			})
		},
	}
}
