package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/j-veylop/reader-usage-dashboard/internal/config"
	"github.com/j-veylop/reader-usage-dashboard/internal/models"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
)

// globalFlags override values loaded from the environment.
type globalFlags struct {
	dbPath string
	user   string
	window string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "rud",
		Short: "Usage analytics for the reader's voice playback and AI tutor",
		Long: `rud aggregates text-to-speech playback, AI-tutor requests and article
completions into cost, quota, engagement and streak reports.

Run without a subcommand to open the terminal dashboard.

Environment Variables:
  DATABASE_PATH     SQLite event store path
  REPORT_WINDOW     Reporting window: all, 30d, 7d or 24h (default: all)
  REPORT_USER_ID    User whose completions drive the streak
  REFRESH_INTERVAL  Report refresh interval (default: 30s)
  TIMEZONE          IANA zone for day and hour bucketing (default: local)
  NOTIFICATIONS     Desktop alerts when a tier exceeds its quota (default: true)
  LOG_PATH          Log file (the dashboard defaults to rud.log next to the database)
  LOG_LEVEL         debug, info, warn or error (default: info)`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "event store path (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&flags.user, "user", "", "streak user (overrides REPORT_USER_ID)")
	root.PersistentFlags().StringVarP(&flags.window, "window", "w", "", "reporting window: all, 30d, 7d or 24h")

	root.AddCommand(
		newReportCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newStatsCmd(flags),
		newPruneCmd(flags),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if flags.dbPath != "" {
		cfg.DatabasePath = flags.dbPath
	}
	if flags.user != "" {
		cfg.ReportUserID = flags.user
	}
	if flags.window != "" {
		window, ok := models.ParseTimeRange(flags.window)
		if !ok {
			return nil, fmt.Errorf("invalid window %q (want all, 30d, 7d or 24h)", flags.window)
		}
		cfg.Window = window
	}

	return cfg, nil
}

// openManager starts a manager for a one-shot command: no file watching,
// no periodic refresh and no desktop notifications.
func openManager(flags *globalFlags) (*services.Manager, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	cfg.Notifications = false

	mgr, err := services.NewManager(cfg, services.WithoutWatcher())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return mgr, nil
}

func defaultLogPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.DatabasePath), "rud.log")
}
