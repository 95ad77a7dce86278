package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriptforge/internal/export"
	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
	"scriptforge/internal/textutil"
)

func newOutlineCommand(ctx *commandContext) *cobra.Command {
	outlineCmd := &cobra.Command{
		Use:   "outline",
		Short: "Generate, show and export the staged outline",
	}
	outlineCmd.AddCommand(newOutlineGenerateCommand(ctx))
	outlineCmd.AddCommand(newOutlineShowCommand(ctx))
	outlineCmd.AddCommand(newOutlineExportCommand(ctx))
	return outlineCmd
}

func newOutlineGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the outline from the selected source, replacing any existing outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				p, err := ctx.targetProject(store.Snapshot())
				if err != nil {
					return err
				}
				svc, err := ctx.newPipeline(store)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Generating outline for %s...\n", p.Name)
				updated, err := svc.RequestOutline(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Outline stored (%s)\n", formatChars(textutil.RuneLen(updated.Outline)))
				fmt.Fprintln(out, "Next: `scriptforge batch next`")
				return nil
			})
		},
	}
}

func newOutlineShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				p, err := ctx.targetProject(store.Snapshot())
				if err != nil {
					return err
				}
				if p.Outline == "" {
					return fmt.Errorf("project %s has no outline yet", p.Name)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(p.Outline, "\n"))
				return nil
			})
		},
	}
}

func newOutlineExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var dirFlag string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the outline to the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				p, err := ctx.targetProject(store.Snapshot())
				if err != nil {
					return err
				}
				if p.Outline == "" {
					return fmt.Errorf("%w: project %s has no outline to export", project.ErrInvalidInput, p.Name)
				}
				path, err := export.Write(exportDir(dirFlag, cfg.Paths.ExportDir), export.OutlineFileName(p.Name, format), p.Outline, format)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported outline to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(export.FormatText), "Export format: txt or docx")
	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Export directory (defaults to paths.export_dir)")
	return cmd
}

func exportDir(flagValue, configured string) string {
	if dir := strings.TrimSpace(flagValue); dir != "" {
		return dir
	}
	return configured
}
