package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scriptforge/internal/continuity"
	"scriptforge/internal/export"
	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
	"scriptforge/internal/textutil"
	"scriptforge/internal/window"
)

type batchView struct {
	SequenceIndex int       `json:"sequence_index"`
	Episodes      string    `json:"episodes"`
	Status        string    `json:"status"`
	Chars         int       `json:"chars"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate, inspect and export episode script batches",
	}
	batchCmd.AddCommand(newBatchNextCommand(ctx))
	batchCmd.AddCommand(newBatchGenerateCommand(ctx))
	batchCmd.AddCommand(newBatchListCommand(ctx))
	batchCmd.AddCommand(newBatchShowCommand(ctx))
	batchCmd.AddCommand(newBatchExportCommand(ctx))
	return batchCmd
}

func newBatchNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Generate the batch after the highest completed one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatchGeneration(cmd, ctx, 0)
		},
	}
}

func newBatchGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <index>",
		Short: "Generate or regenerate the batch at a sequence index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return runBatchGeneration(cmd, ctx, index)
		},
	}
}

// runBatchGeneration generates index, or the next index when index is 0.
func runBatchGeneration(cmd *cobra.Command, ctx *commandContext, index int) error {
	return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
		p, err := ctx.targetProject(store.Snapshot())
		if err != nil {
			return err
		}
		svc, err := ctx.newPipeline(store)
		if err != nil {
			return err
		}
		if index == 0 {
			index = svc.NextSequenceIndex(p)
		}
		episodes := svc.EpisodeRange(index)
		fmt.Fprintf(cmd.ErrOrStderr(), "Generating batch %d (episodes %s) for %s...\n", index, episodes, p.Name)
		batch, err := svc.RequestBatch(cmd.Context(), p.ID, index)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Batch %d stored: episodes %s (%s)\n", batch.SequenceIndex, episodes, formatChars(textutil.RuneLen(batch.Content)))
		fmt.Fprintf(out, "Next: `scriptforge batch next` continues with episodes %s\n", svc.EpisodeRange(batch.SequenceIndex+1))
		return nil
	})
}

func newBatchListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored batches in sequence order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), func(store *statestore.Store) error {
				p, err := ctx.targetProject(store.Snapshot())
				if err != nil {
					return err
				}
				batches := p.SortedBatches()
				views := make([]batchView, 0, len(batches))
				for _, b := range batches {
					views = append(views, batchView{
						SequenceIndex: b.SequenceIndex,
						Episodes:      window.ForBatch(b.SequenceIndex, cfg.Generation.BatchWidth).String(),
						Status:        string(b.Status),
						Chars:         textutil.RuneLen(b.Content),
						ErrorMessage:  b.ErrorMessage,
						UpdatedAt:     b.UpdatedAt,
					})
				}
				if jsonOutput {
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintf(out, "Project %s has no batches.\n", p.Name)
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					detail := strconv.Itoa(v.Chars)
					if v.ErrorMessage != "" {
						detail = preview(v.ErrorMessage, 60)
					}
					rows = append(rows, []string{
						strconv.Itoa(v.SequenceIndex),
						v.Episodes,
						v.Status,
						detail,
						formatTime(v.UpdatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Episodes", "Status", "Chars/Error", "Updated"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func newBatchShowCommand(ctx *commandContext) *cobra.Command {
	var summaryOnly bool
	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Print a stored batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
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
				b, ok := p.Batch(index)
				if !ok {
					return fmt.Errorf("%w: batch %d", project.ErrInvalidInput, index)
				}
				out := cmd.OutOrStdout()
				if !b.Completed() {
					fmt.Fprintf(out, "Batch %d failed: %s\n", index, b.ErrorMessage)
					return nil
				}
				if summaryOnly {
					summary := continuity.ExtractSummary(b.Content, cfg.Generation.SummaryMarker)
					if summary == "" {
						return fmt.Errorf("batch %d has no cumulative summary", index)
					}
					fmt.Fprintln(out, summary)
					return nil
				}
				fmt.Fprintln(out, strings.TrimRight(b.Content, "\n"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the cumulative summary section")
	return cmd
}

func newBatchExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var dirFlag string
	cmd := &cobra.Command{
		Use:   "export <index>",
		Short: "Write a completed batch to the export directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
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
				b, ok := p.Batch(index)
				if !ok || !b.Completed() {
					return fmt.Errorf("%w: batch %d is not completed", project.ErrInvalidInput, index)
				}
				episodes := window.ForBatch(index, cfg.Generation.BatchWidth)
				path, err := export.Write(exportDir(dirFlag, cfg.Paths.ExportDir), export.BatchFileName(p.Name, episodes, format), b.Content, format)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported batch %d to %s\n", index, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(export.FormatText), "Export format: txt or docx")
	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Export directory (defaults to paths.export_dir)")
	return cmd
}

func parseIndex(value string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || index < 1 {
		return 0, fmt.Errorf("%w: sequence index must be a positive integer, got %q", project.ErrInvalidInput, value)
	}
	return index, nil
}
