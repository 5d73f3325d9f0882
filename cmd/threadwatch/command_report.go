package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"threadwatch/internal/config"
	"threadwatch/internal/report"
	"threadwatch/internal/runid"
)

const (
	reportFormatText     = "text"
	reportFormatJSON     = "json"
	reportFormatMarkdown = "markdown"
)

type ReportCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
}

func NewReportCommand(stdout, stderr io.Writer, loadConfig func() (config.Config, error), newClient clientFactory) *ReportCommand {
	return &ReportCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
	}
}

func (c *ReportCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", reportFormatText, "output format: text|json|markdown")
	top := fs.Int("top", 0, "number of posts in the importance chart (default from config)")
	posts := fs.Bool("posts", true, "include big fish and the full post list")
	width := fs.Int("width", 0, "wrap width for text output (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("report requires a run id")
	}
	id := strings.TrimSpace(fs.Arg(0))
	if err := runid.Validate(id); err != nil {
		return err
	}
	resolvedFormat, err := resolveReportFormat(*format)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	client, err := c.newClient(cfg, commandLogger(c.stderr, cfg))
	if err != nil {
		return err
	}
	data, err := client.GetReport(ctx, id)
	if err != nil {
		return err
	}

	if resolvedFormat == reportFormatJSON {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	topN := *top
	if topN <= 0 {
		topN = cfg.TopN()
	}
	doc := report.Document(data, report.Options{TopN: topN, Posts: *posts})
	if resolvedFormat == reportFormatMarkdown {
		_, err := io.WriteString(c.stdout, doc)
		return err
	}
	wrap := *width
	if wrap <= 0 {
		wrap = cfg.UIWidth()
	}
	_, err = fmt.Fprintln(c.stdout, report.RenderMarkdown(doc, wrap, true))
	return err
}

func resolveReportFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", reportFormatText:
		return reportFormatText, nil
	case reportFormatJSON:
		return reportFormatJSON, nil
	case reportFormatMarkdown, "md":
		return reportFormatMarkdown, nil
	default:
		return "", errors.New("invalid format: must be text, json or markdown")
	}
}
