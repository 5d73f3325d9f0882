package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usageText = `threadwatch starts keyword monitoring runs and browses their reports.

Usage:
  threadwatch <command> [flags]

Commands:
  monitor  start a run and follow its progress
  report   show the report of a finished run
  history  list past runs
  config   print configuration (effective or defaults)
  ui       run terminal UI
  help     show help

Flags:
  -h, --help   show help

Monitor flags:
  --keyword        keyword to monitor (repeatable, also accepts k1,k2)
  --wait           give up following after this long (0 waits forever)
  --metrics-addr   serve Prometheus metrics on this address while running

Examples:
  threadwatch monitor AI,blockchain
  threadwatch monitor --keyword earthquake --keyword tsunami --metrics-addr :9090
  threadwatch report --format markdown 550e8400-e29b-41d4-a716-446655440000
  threadwatch history --page 2
  threadwatch config --default --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runner.Run(ctx, args[1:])
	stop()
	exitOnErr(args[0], err, wiring.stderr)
}
