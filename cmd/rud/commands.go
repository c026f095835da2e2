package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/reader-usage-dashboard/internal/export"
	"github.com/j-veylop/reader-usage-dashboard/internal/importer"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
	"github.com/j-veylop/reader-usage-dashboard/internal/version"
)

const defaultRetentionDays = 180

// currentReport returns the manager's report, rebuilding it when the
// initial refresh failed so the error surfaces.
func currentReport(ctx context.Context, mgr *services.Manager) (*models.Report, error) {
	if r := mgr.Report(); r != nil {
		return r, nil
	}
	r, err := mgr.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	return r, nil
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the usage report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := openManager(flags)
			if err != nil {
				return err
			}
			defer mgr.Close()

			r, err := currentReport(cmd.Context(), mgr)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(r)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export PATH.xlsx",
		Short: "Write the usage report to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
				return fmt.Errorf("export path %q must end in .xlsx", path)
			}

			mgr, err := openManager(flags)
			if err != nil {
				return err
			}
			defer mgr.Close()

			r, err := currentReport(cmd.Context(), mgr)
			if err != nil {
				return err
			}
			if err := export.WriteXLSX(path, r); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s report to %s\n", r.Window, path)
			return nil
		},
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH.json",
		Short: "Load playback, tutor and completion events into the store",
		Long: `Import reads a JSON document of the form

  {"playback": [...], "tutor": [...], "completions": [...]}

validates every event and inserts the batch in one transaction. Events
without a timestamp are stamped with the import time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}

			mgr, err := openManager(flags)
			if err != nil {
				return err
			}
			defer mgr.Close()

			err = mgr.Import(cmd.Context(), batch)
			switch {
			case errors.Is(err, services.ErrReportStale):
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			case err != nil:
				return fmt.Errorf("failed to import events: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d playback, %d tutor and %d completion events\n",
				len(batch.Playback), len(batch.Tutor), len(batch.Completions))
			return nil
		},
	}
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show event store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := openManager(flags)
			if err != nil {
				return err
			}
			defer mgr.Close()

			stats, err := mgr.GetStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:    %s\n", stats.DatabasePath)
			fmt.Fprintf(out, "Playback:    %d\n", stats.Counts.Playback)
			fmt.Fprintf(out, "Tutor:       %d\n", stats.Counts.Tutor)
			fmt.Fprintf(out, "Completions: %d\n", stats.Counts.Completions)
			fmt.Fprintf(out, "Total:       %d\n", stats.Counts.Total())
			return nil
		},
	}
}

func newPruneCmd(flags *globalFlags) *cobra.Command {
	var (
		days   int
		vacuum bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete events older than a retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}

			mgr, err := openManager(flags)
			if err != nil {
				return err
			}
			defer mgr.Close()

			before := time.Now().AddDate(0, 0, -days)
			removed, err := mgr.Database().CleanupEventsBefore(cmd.Context(), before)
			if err != nil {
				return fmt.Errorf("failed to prune events: %w", err)
			}
			if vacuum {
				if err := mgr.Database().Vacuum(); err != nil {
					return fmt.Errorf("failed to vacuum database: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d events recorded before %s\n", removed, before.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultRetentionDays, "keep events from the last N days")
	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "reclaim disk space afterwards")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
