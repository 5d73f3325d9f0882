package main

import (
	"context"
	"io"
	"os"

	"threadwatch/internal/config"
)

type commandRunner interface {
	Run(ctx context.Context, args []string) error
}

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
	version    string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.Load,
		newClient:  newThreadwatchClient,
		version:    buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"monitor": NewMonitorCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient),
		"report":  NewReportCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient),
		"history": NewHistoryCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient),
		"config":  NewConfigCommand(wiring.stdout, wiring.stderr, wiring.loadConfig),
		"ui":      NewUICommand(wiring.stderr, wiring.loadConfig, wiring.newClient, wiring.version),
	}
}
