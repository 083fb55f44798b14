package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lodprobe/lodprobe/internal/config"
	"github.com/lodprobe/lodprobe/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists past probe runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past probe runs",
		Long: `History lists probe runs previously saved to the database.

Each completed 'lodprobe probe' run is stored with its start time, sampling
ratio, dataset counts, and the full provider report. Use --show to print
the stored report of a specific run.

Examples:
  # List the 20 most recent runs
  lodprobe history

  # List all runs
  lodprobe history --limit 0

  # Print the stored report of run 5 as JSON
  lodprobe history --show 5`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the stored JSON report of the run with this ID")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if showID > 0 {
		return showRun(ctx, cmd, db, showID)
	}

	return listRunHistory(ctx, cmd, db, limit)
}

// listRunHistory lists the stored probe runs.
func listRunHistory(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()

	if len(runs) == 0 {
		fmt.Fprintln(out, "No probe runs found in the database.")
		fmt.Fprintln(out, "\nUse 'lodprobe probe' to analyze datasets.")
		return nil
	}

	fmt.Fprintf(out, "Probe runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-9s  %-6s  %-9s  %-7s  %s\n",
		"ID", "Started", "Elapsed", "Ratio", "Datasets", "Failed", "Providers")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-9s  %-6.2f  %-9d  %-7d  %d\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Elapsed.Round(time.Millisecond),
			run.SamplingRatio,
			run.Datasets,
			run.Failed,
			run.Providers,
		)
	}

	fmt.Fprintln(out, "\nUse 'lodprobe history --show <id>' to print a stored report.")

	return nil
}

// showRun prints the stored report of one run as pretty-printed JSON.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, id int64) error {
	runReport, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(runReport)
}
