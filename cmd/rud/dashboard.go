package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/reader-usage-dashboard/internal/app"
	"github.com/j-veylop/reader-usage-dashboard/internal/logger"
	"github.com/j-veylop/reader-usage-dashboard/internal/services"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/tabs/info"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/tabs/playback"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/tabs/trends"
	"github.com/j-veylop/reader-usage-dashboard/internal/ui/tabs/tutor"
)

// runDashboard runs the terminal dashboard until the user quits.
func runDashboard(flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	// Logs go to a file so they do not draw over the UI.
	if cfg.LogPath == "" {
		cfg.LogPath = defaultLogPath(cfg)
	}
	logCloser, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Error("error closing services", "error", closeErr)
		}
	}()

	model := app.NewModel(svcManager)
	if wd, err := os.Getwd(); err == nil {
		model.SetExportDir(wd)
	}

	state := model.GetState()
	model.SetTabs([]app.Tab{
		playback.New(state),
		tutor.New(state),
		trends.New(state),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("dashboard started", "database", cfg.DatabasePath, "window", cfg.Window.Key())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
