package app

import (
	"strings"

	"threadwatch/internal/config"
	"threadwatch/internal/history"
	"threadwatch/internal/logging"
	"threadwatch/internal/monitor"
	"threadwatch/internal/report"
	"threadwatch/internal/runid"
	"threadwatch/internal/types"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewMode int

const (
	viewMonitor viewMode = iota
	viewHistory
	viewReport
)

func (v viewMode) String() string {
	switch v {
	case viewHistory:
		return "History"
	case viewReport:
		return "Report"
	default:
		return "Monitor"
	}
}

const (
	reportContentRunes = 600
	minPanelHeight     = 3
)

type Model struct {
	client  Backend
	cfg     config.Config
	logger  logging.Logger
	version string
	dark    bool

	bridge  *sessionBridge
	session monitor.State

	pager         *history.Pager
	historyCursor int

	mode       viewMode
	returnMode viewMode
	width      int
	height     int
	ready      bool

	keywordInput textinput.Model
	progressView viewport.Model
	reportView   viewport.Model
	spinner      spinner.Model
	spinning     bool

	starting      bool
	reportSeq     uint64
	reportID      string
	report        *types.ReportData
	reportLoading bool
	reportErr     error

	statusText string
	errorText  string
}

func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With(logging.F("component", "ui"))

	input := textinput.New()
	input.Placeholder = "keywords, comma separated"
	input.Prompt = "> "
	input.CharLimit = 600
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(accentSecondary)

	var fetcher history.Fetcher
	if opts.Client != nil {
		fetcher = opts.Client
	}

	return Model{
		client:       opts.Client,
		cfg:          opts.Config,
		logger:       logger,
		version:      opts.Version,
		dark:         !opts.Light,
		bridge:       newSessionBridge(opts.Client, monitor.WithLogger(logger)),
		session:      monitor.State{Status: monitor.StatusIdle},
		pager:        history.NewPager(fetcher, opts.Config.PageSize(), logger),
		keywordInput: input,
		progressView: viewport.New(80, 10),
		reportView:   viewport.New(80, 20),
		spinner:      spin,
		statusText:   "Enter keywords and press enter to start monitoring.",
	}
}

// Close tears down the live session, if any.
func (m Model) Close() {
	m.bridge.close()
}

func (m Model) Init() tea.Cmd {
	seq := m.pager.Request()
	return tea.Batch(
		textinput.Blink,
		m.bridge.wait(),
		loadHistoryCmd(m.pager, seq, 1, m.cfg.Timeout()),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanels()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.mode == viewReport && m.reportLoading {
			m.refreshReportView()
		}
		return m, cmd

	case sessionStateMsg:
		m.applySession(msg.state)
		cmd := tea.Batch(m.bridge.wait(), m.ensureSpinner())
		return m, cmd

	case sessionStartedMsg:
		m.starting = false
		if msg.err != nil {
			m.logger.Warn("start failed", logging.F("keywords", msg.keywords), logging.F("err", msg.err))
			m.statusText = ""
		}
		return m, nil

	case sessionResetMsg:
		m.statusText = "Session reset."
		m.errorText = ""
		return m, nil

	case reportLoadedMsg:
		if msg.seq != m.reportSeq {
			return m, nil
		}
		m.reportLoading = false
		m.reportErr = msg.err
		if msg.err == nil {
			m.report = msg.data
		} else {
			m.logger.Warn("report load failed", logging.F("run_id", msg.id), logging.F("err", msg.err))
		}
		m.refreshReportView()
		m.reportView.GotoTop()
		return m, nil

	case historyLoadedMsg:
		if m.pager.Apply(msg.seq, msg.result, msg.err) {
			m.clampHistoryCursor()
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.errorText = "Copy failed: " + msg.err.Error()
			return m, nil
		}
		m.statusText = "Copied " + msg.text + " (" + msg.method.String() + " clipboard)."
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		switch m.mode {
		case viewMonitor:
			m.progressView, cmd = m.progressView.Update(msg)
		case viewReport:
			m.reportView, cmd = m.reportView.Update(msg)
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		cmd := m.setMode(m.nextMode(1))
		return m, cmd
	case "shift+tab":
		cmd := m.setMode(m.nextMode(-1))
		return m, cmd
	}

	switch m.mode {
	case viewHistory:
		return m.handleHistoryKey(msg)
	case viewReport:
		return m.handleReportKey(msg)
	default:
		return m.handleMonitorKey(msg)
	}
}

func (m Model) handleMonitorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		keywords := monitor.ParseKeywords(m.keywordInput.Value())
		if len(keywords) == 0 {
			m.errorText = "Enter at least one keyword."
			return m, nil
		}
		m.errorText = ""
		m.starting = true
		m.statusText = "Starting run for " + strings.Join(keywords, ", ") + "..."
		cmd := tea.Batch(startSessionCmd(m.bridge, keywords, m.cfg.Timeout()), m.ensureSpinner())
		return m, cmd
	case "ctrl+r":
		if m.session.Status == monitor.StatusIdle {
			return m, nil
		}
		return m, resetSessionCmd(m.bridge)
	case "ctrl+o":
		if m.session.Status != monitor.StatusCompleted || m.session.RunID == "" {
			return m, nil
		}
		cmd := m.openReport(m.session.RunID)
		return m, cmd
	case "ctrl+y":
		if m.session.RunID == "" {
			return m, nil
		}
		return m, copyToClipboardCmd(m.session.RunID)
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.progressView, cmd = m.progressView.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.keywordInput, cmd = m.keywordInput.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.pager.Snapshot()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		cmd := m.setMode(viewMonitor)
		return m, cmd
	case "up", "k":
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case "down", "j":
		if m.historyCursor < len(snap.Runs)-1 {
			m.historyCursor++
		}
	case "right", "n", "pgdown":
		if snap.HasNext() {
			cmd := m.requestHistory(snap.Page + 1)
			return m, cmd
		}
	case "left", "p", "pgup":
		if snap.HasPrev() {
			cmd := m.requestHistory(snap.Page - 1)
			return m, cmd
		}
	case "r":
		cmd := m.requestHistory(snap.Page)
		return m, cmd
	case "enter":
		if run, ok := m.selectedRun(); ok {
			cmd := m.openReport(run.ID)
			return m, cmd
		}
	case "y":
		if run, ok := m.selectedRun(); ok {
			return m, copyToClipboardCmd(run.ID)
		}
	}
	return m, nil
}

func (m Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		cmd := m.setMode(m.returnMode)
		return m, cmd
	case "r":
		if m.reportID != "" {
			cmd := m.openReport(m.reportID)
			return m, cmd
		}
		return m, nil
	case "y":
		if m.reportID != "" {
			return m, copyToClipboardCmd(m.reportID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.reportView, cmd = m.reportView.Update(msg)
	return m, cmd
}

func (m *Model) applySession(next monitor.State) {
	prev := m.session
	m.session = next
	m.refreshProgressView()
	if prev.Status == next.Status && prev.RunID == next.RunID {
		return
	}
	switch next.Status {
	case monitor.StatusConnecting:
		m.statusText = "Connecting to the progress stream..."
	case monitor.StatusRunning:
		m.statusText = "Monitoring run " + report.ShortID(next.RunID) + "."
	case monitor.StatusCompleted:
		m.statusText = "Run " + report.ShortID(next.RunID) + " completed. Press ctrl+o to open the report."
	case monitor.StatusFailed:
		m.statusText = ""
	case monitor.StatusIdle:
		m.statusText = "Enter keywords and press enter to start monitoring."
	}
}

func (m *Model) setMode(mode viewMode) tea.Cmd {
	if mode == m.mode {
		return nil
	}
	if mode != viewReport {
		m.returnMode = mode
	}
	m.mode = mode
	if mode == viewMonitor {
		m.keywordInput.Focus()
	} else {
		m.keywordInput.Blur()
	}
	if mode == viewHistory {
		return m.requestHistory(m.pager.Snapshot().Page)
	}
	return nil
}

// nextMode cycles the tabs, skipping the report tab until one was opened.
func (m Model) nextMode(step int) viewMode {
	modes := []viewMode{viewMonitor, viewHistory}
	if m.reportID != "" {
		modes = append(modes, viewReport)
	}
	idx := 0
	for i, mode := range modes {
		if mode == m.mode {
			idx = i
		}
	}
	idx = (idx + step + len(modes)) % len(modes)
	return modes[idx]
}

func (m *Model) openReport(id string) tea.Cmd {
	if !runid.Valid(id) {
		m.errorText = "Cannot open report: invalid run ID."
		return nil
	}
	if m.mode != viewReport {
		m.returnMode = m.mode
	}
	m.mode = viewReport
	m.keywordInput.Blur()
	m.reportSeq++
	m.reportID = id
	m.report = nil
	m.reportErr = nil
	m.reportLoading = true
	m.refreshReportView()
	return tea.Batch(loadReportCmd(m.client, m.reportSeq, id, m.cfg.Timeout()), m.ensureSpinner())
}

func (m *Model) requestHistory(page int) tea.Cmd {
	seq := m.pager.Request()
	return tea.Batch(loadHistoryCmd(m.pager, seq, page, m.cfg.Timeout()), m.ensureSpinner())
}

func (m *Model) selectedRun() (types.RunSummary, bool) {
	runs := m.pager.Snapshot().Runs
	if m.historyCursor < 0 || m.historyCursor >= len(runs) {
		return types.RunSummary{}, false
	}
	return runs[m.historyCursor], true
}

func (m *Model) clampHistoryCursor() {
	n := len(m.pager.Snapshot().Runs)
	if m.historyCursor >= n {
		m.historyCursor = n - 1
	}
	if m.historyCursor < 0 {
		m.historyCursor = 0
	}
}

func (m Model) busy() bool {
	if m.starting || m.reportLoading || m.pager.Snapshot().Loading {
		return true
	}
	return m.session.Status == monitor.StatusConnecting || m.session.Status == monitor.StatusRunning
}

func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || !m.busy() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) resizePanels() {
	width := max(m.width-4, 20)
	// header, tabs, input panel, badge, status, help and the panel border.
	progressHeight := m.height - 13
	if m.errorMessage() != "" {
		progressHeight -= 3
	}
	m.progressView.Width = width
	m.progressView.Height = max(progressHeight, minPanelHeight)
	m.reportView.Width = max(m.width-2, 20)
	m.reportView.Height = max(m.height-6, minPanelHeight)
	m.keywordInput.Width = max(width-4, 10)
	m.refreshProgressView()
	m.refreshReportView()
}

func (m Model) errorMessage() string {
	if m.errorText != "" {
		return m.errorText
	}
	if m.session.Status == monitor.StatusFailed {
		return m.session.Err
	}
	return ""
}
