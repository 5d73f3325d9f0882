package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"threadwatch/internal/config"
	"threadwatch/internal/logging"
	"threadwatch/internal/metrics"
	"threadwatch/internal/monitor"
	"threadwatch/internal/sanitizer"

	"golang.org/x/sync/errgroup"
)

type MonitorCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
}

func NewMonitorCommand(stdout, stderr io.Writer, loadConfig func() (config.Config, error), newClient clientFactory) *MonitorCommand {
	return &MonitorCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
	}
}

func (c *MonitorCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var keywordFlags stringList
	fs.Var(&keywordFlags, "keyword", "keyword to monitor (repeatable)")
	wait := fs.Duration("wait", 0, "stop following after this long (0 waits forever)")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var keywords []string
	for _, raw := range append([]string(keywordFlags), fs.Args()...) {
		keywords = append(keywords, monitor.ParseKeywords(raw)...)
	}
	if len(keywords) == 0 {
		return errors.New("monitor requires at least one keyword")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := commandLogger(c.stderr, cfg)
	client, err := c.newClient(cfg, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	ctrl := monitor.NewController(client, monitor.WithLogger(logger), monitor.WithRecorder(recorder))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if *metricsAddr != "" {
		listener, err := net.Listen("tcp", *metricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		fmt.Fprintf(c.stderr, "metrics on http://%s/metrics\n", listener.Addr())
		g.Go(func() error {
			return serveMetrics(gctx, listener, recorder.Handler(), logger)
		})
	}
	g.Go(func() error {
		defer cancel()
		return c.follow(gctx, ctrl, keywords, *wait)
	})
	return g.Wait()
}

// follow runs one session to a terminal state and prints its progress.
func (c *MonitorCommand) follow(ctx context.Context, ctrl *monitor.Controller, keywords []string, wait time.Duration) error {
	feed := newStateFeed()
	unsubscribe := ctrl.Subscribe(feed.push)
	defer unsubscribe()
	defer ctrl.Reset()

	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	fmt.Fprintf(c.stdout, "starting run for %s\n", strings.Join(keywords, ", "))
	_ = ctrl.Start(ctx, keywords)

	printer := &progressPrinter{out: c.stdout}
	for {
		for _, state := range feed.drain() {
			printer.print(state)
			switch state.Status {
			case monitor.StatusCompleted:
				fmt.Fprintf(c.stdout, "run %s completed; view it with: threadwatch report %s\n", state.RunID, state.RunID)
				return nil
			case monitor.StatusFailed:
				return errors.New(state.Err)
			}
		}
		select {
		case <-feed.ready:
		case <-ctx.Done():
			state := ctrl.State()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("stopped following run %s after %s while %s", state.RunID, wait, state.Status)
			}
			if state.RunID != "" {
				fmt.Fprintf(c.stdout, "stopped following run %s; it may still be running on the backend\n", state.RunID)
			}
			return nil
		}
	}
}

// stateFeed hands published states from the controller to the printing
// loop without blocking the publisher.
type stateFeed struct {
	mu    sync.Mutex
	queue []monitor.State
	ready chan struct{}
}

func newStateFeed() *stateFeed {
	return &stateFeed{ready: make(chan struct{}, 1)}
}

func (f *stateFeed) push(state monitor.State) {
	f.mu.Lock()
	f.queue = append(f.queue, state)
	f.mu.Unlock()
	select {
	case f.ready <- struct{}{}:
	default:
	}
}

func (f *stateFeed) drain() []monitor.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.queue
	f.queue = nil
	return out
}

type progressPrinter struct {
	out     io.Writer
	status  monitor.Status
	runID   string
	printed int
}

func (p *progressPrinter) print(state monitor.State) {
	if state.Status != p.status || state.RunID != p.runID {
		if state.RunID != "" {
			fmt.Fprintf(p.out, "[%s] run %s\n", state.Status, state.RunID)
		} else {
			fmt.Fprintf(p.out, "[%s]\n", state.Status)
		}
		if state.Status == monitor.StatusRunning && p.status != monitor.StatusRunning {
			p.printed = 0
		}
		p.status = state.Status
		p.runID = state.RunID
	}
	for ; p.printed < len(state.Events); p.printed++ {
		ev := state.Events[p.printed]
		fmt.Fprintf(p.out, "  %-16s %s\n", ev.Kind, sanitizer.SingleLine(ev.Describe()))
	}
}

func serveMetrics(ctx context.Context, listener net.Listener, handler http.Handler, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", logging.F("err", err))
		}
		return nil
	}
}
