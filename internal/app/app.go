package app

import (
	"context"
	"errors"

	"threadwatch/internal/config"
	"threadwatch/internal/logging"
	"threadwatch/internal/monitor"
	"threadwatch/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Backend is everything the terminal UI needs from the backend client.
type Backend interface {
	monitor.API
	GetReport(ctx context.Context, id string) (*types.ReportData, error)
	GetHistory(ctx context.Context, page, limit int) (*types.HistoryPage, error)
}

type Options struct {
	Client  Backend
	Config  config.Config
	Logger  logging.Logger
	Version string
	// Light renders markdown for a light terminal background.
	Light bool
}

// Run blocks until the user quits. Any live session is torn down before it
// returns.
func Run(opts Options) error {
	if opts.Client == nil {
		return errors.New("app: backend client is required")
	}
	model := NewModel(opts)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}
