package app

import (
	"context"
	"sync"
	"time"

	"threadwatch/internal/history"
	"threadwatch/internal/monitor"
	"threadwatch/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

type sessionStateMsg struct {
	state monitor.State
}

type sessionStartedMsg struct {
	keywords []string
	err      error
}

type sessionResetMsg struct{}

type reportLoadedMsg struct {
	seq  uint64
	id   string
	data *types.ReportData
	err  error
}

type historyLoadedMsg struct {
	seq    uint64
	result *types.HistoryPage
	err    error
}

type clipboardMsg struct {
	text   string
	method clipboardMethod
	err    error
}

// sessionBridge feeds controller state into the program. Only the newest
// state is buffered; each State carries the whole event log, so skipping
// intermediate snapshots loses nothing the view shows.
type sessionBridge struct {
	ctrl        *monitor.Controller
	states      chan monitor.State
	unsubscribe func()
	closeOnce   sync.Once
}

func newSessionBridge(api monitor.API, opts ...monitor.Option) *sessionBridge {
	b := &sessionBridge{
		ctrl:   monitor.NewController(api, opts...),
		states: make(chan monitor.State, 1),
	}
	b.unsubscribe = b.ctrl.Subscribe(b.publish)
	return b
}

// publish runs under the controller lock and never blocks.
func (b *sessionBridge) publish(s monitor.State) {
	for {
		select {
		case b.states <- s:
			return
		default:
		}
		select {
		case <-b.states:
		default:
		}
	}
}

func (b *sessionBridge) wait() tea.Cmd {
	states := b.states
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return sessionStateMsg{state: s}
	}
}

func (b *sessionBridge) close() {
	b.closeOnce.Do(func() {
		b.unsubscribe()
		b.ctrl.Reset()
		close(b.states)
	})
}

func startSessionCmd(b *sessionBridge, keywords []string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := b.ctrl.Start(ctx, keywords)
		return sessionStartedMsg{keywords: keywords, err: err}
	}
}

func resetSessionCmd(b *sessionBridge) tea.Cmd {
	return func() tea.Msg {
		b.ctrl.Reset()
		return sessionResetMsg{}
	}
}

func loadReportCmd(api Backend, seq uint64, id string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		data, err := api.GetReport(ctx, id)
		return reportLoadedMsg{seq: seq, id: id, data: data, err: err}
	}
}

func loadHistoryCmd(pager *history.Pager, seq uint64, page int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := pager.Fetch(ctx, page)
		return historyLoadedMsg{seq: seq, result: result, err: err}
	}
}

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		method, err := copyTextToClipboard(text)
		return clipboardMsg{text: text, method: method, err: err}
	}
}
