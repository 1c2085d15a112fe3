package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pixelmill/internal/config"
	"pixelmill/internal/journal"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded pipeline runs",
		Long:  "Lists recent runs from the journal, or the items of one run when a run id is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journal is disabled in the configuration")
			}
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				runID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				return printRunItems(cmd, store, runID)
			}
			return printRecentRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to list")
	return cmd
}

func printRecentRuns(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			finished,
			fmt.Sprintf("%d", run.Items),
			fmt.Sprintf("%d", run.Failures),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Run", "Started", "Finished", "Items", "Failures"}, rows, 1, 4, 5))
	return nil
}

func printRunItems(cmd *cobra.Command, store *journal.Store, runID int64) error {
	records, err := store.RunItems(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no items recorded for run %d\n", runID)
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		note := rec.Errors
		if note == "" {
			note = rec.Warnings
		}
		rows = append(rows, []string{
			rec.Filename,
			string(rec.Status),
			rec.Output,
			fmt.Sprintf("%d", rec.BytesIn),
			fmt.Sprintf("%d", rec.BytesOut),
			note,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Status", "Output", "In", "Out", "Notes"}, rows, 4, 5))
	return nil
}
