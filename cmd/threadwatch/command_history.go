package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"threadwatch/internal/config"
	"threadwatch/internal/history"
	"threadwatch/internal/sanitizer"
	"threadwatch/internal/types"
)

type HistoryCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
}

func NewHistoryCommand(stdout, stderr io.Writer, loadConfig func() (config.Config, error), newClient clientFactory) *HistoryCommand {
	return &HistoryCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
	}
}

func (c *HistoryCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	page := fs.Int("page", 1, "page to show")
	limit := fs.Int("limit", 0, "runs per page (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	perPage := *limit
	if perPage == 0 {
		perPage = cfg.PageSize()
	}
	client, err := c.newClient(cfg, commandLogger(c.stderr, cfg))
	if err != nil {
		return err
	}
	resp, err := client.GetHistory(ctx, *page, perPage)
	if err != nil {
		return err
	}
	if len(resp.Runs) == 0 {
		fmt.Fprintln(c.stdout, "No runs yet. Start one with: threadwatch monitor <keywords>")
		return nil
	}
	printRuns(c.stdout, resp.Runs)
	if resp.Limit > 0 {
		perPage = resp.Limit
	}
	if pages := history.TotalPages(resp.Total, perPage); pages > 1 {
		fmt.Fprintf(c.stdout, "\nPage %d of %d (%d total runs)\n", resp.Page, pages, resp.Total)
	}
	return nil
}

func printRuns(output io.Writer, runs []types.RunSummary) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSTATUS\tKEYWORDS\tPOSTS\tCREATED")
	for _, run := range runs {
		posts := "-"
		if run.Stats != nil {
			posts = fmt.Sprintf("%d", run.Stats.ValidCount)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", run.ID, run.Status, keywordSummary(run.Keywords, 3), posts, run.CreatedAt)
	}
	_ = writer.Flush()
}

// keywordSummary shows the first max keywords and a +N for the rest.
func keywordSummary(keywords []string, max int) string {
	shown := keywords
	if len(shown) > max {
		shown = shown[:max]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, kw := range shown {
		parts = append(parts, sanitizer.SingleLine(kw))
	}
	if extra := len(keywords) - len(shown); extra > 0 {
		parts = append(parts, fmt.Sprintf("+%d", extra))
	}
	return strings.Join(parts, ", ")
}
