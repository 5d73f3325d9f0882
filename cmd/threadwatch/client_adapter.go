package main

import (
	"context"

	"threadwatch/internal/app"
	twclient "threadwatch/internal/client"
	"threadwatch/internal/config"
	"threadwatch/internal/logging"
	"threadwatch/internal/types"
)

type clientFactory func(cfg config.Config, logger logging.Logger) (commandClient, error)

type commandClient interface {
	StartRun(ctx context.Context, keywords []string) (string, error)
	OpenStream(ctx context.Context, runID string) (<-chan twclient.StreamMessage, func(), error)
	GetReport(ctx context.Context, id string) (*types.ReportData, error)
	GetHistory(ctx context.Context, page, limit int) (*types.HistoryPage, error)
	RunUI(opts app.Options) error
}

type threadwatchClientAdapter struct {
	client *twclient.Client
}

func newThreadwatchClient(cfg config.Config, logger logging.Logger) (commandClient, error) {
	client, err := twclient.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &threadwatchClientAdapter{client: client}, nil
}

func (c *threadwatchClientAdapter) StartRun(ctx context.Context, keywords []string) (string, error) {
	return c.client.StartRun(ctx, keywords)
}

func (c *threadwatchClientAdapter) OpenStream(ctx context.Context, runID string) (<-chan twclient.StreamMessage, func(), error) {
	return c.client.OpenStream(ctx, runID)
}

func (c *threadwatchClientAdapter) GetReport(ctx context.Context, id string) (*types.ReportData, error) {
	return c.client.GetReport(ctx, id)
}

func (c *threadwatchClientAdapter) GetHistory(ctx context.Context, page, limit int) (*types.HistoryPage, error) {
	return c.client.GetHistory(ctx, page, limit)
}

func (c *threadwatchClientAdapter) RunUI(opts app.Options) error {
	opts.Client = c.client
	return app.Run(opts)
}
