package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"

	"threadwatch/internal/app"
	"threadwatch/internal/config"
	"threadwatch/internal/logging"
)

type UICommand struct {
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
	version    string
}

func NewUICommand(stderr io.Writer, loadConfig func() (config.Config, error), newClient clientFactory, version string) *UICommand {
	return &UICommand{
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
		version:    version,
	}
}

func (c *UICommand) Run(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	light := fs.Bool("light", false, "render markdown for a light terminal background")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := uiLogger(cfg)
	defer closeLog()
	client, err := c.newClient(cfg, logger)
	if err != nil {
		return err
	}
	return client.RunUI(app.Options{
		Config:  cfg,
		Logger:  logger,
		Version: c.version,
		Light:   *light,
	})
}

// uiLogger sends logs to ~/.threadwatch/ui.log so they never draw over the
// terminal UI. Logging is dropped when the file cannot be opened.
func uiLogger(cfg config.Config) (logging.Logger, func()) {
	logPath, err := config.UILogPath()
	if err != nil {
		return logging.Nop(), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return logging.Nop(), func() {}
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return logging.Nop(), func() {}
	}
	return logging.New(file, logging.ParseLevel(cfg.LogLevel())), func() { _ = file.Close() }
}
