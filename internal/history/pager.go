package history

import (
	"context"
	"sync"

	"threadwatch/internal/logging"
	"threadwatch/internal/types"
)

const DefaultPerPage = 20

// Fetcher loads one page of past runs.
type Fetcher interface {
	GetHistory(ctx context.Context, page, limit int) (*types.HistoryPage, error)
}

// Snapshot is what a history view renders.
type Snapshot struct {
	Runs    []types.RunSummary
	Total   int
	Page    int
	PerPage int
	Loading bool
	Err     error
}

func (s Snapshot) TotalPages() int {
	return TotalPages(s.Total, s.PerPage)
}

func (s Snapshot) HasPrev() bool {
	return s.Page > 1
}

func (s Snapshot) HasNext() bool {
	return s.Page < s.TotalPages()
}

// TotalPages is ceil(total/perPage), and 0 when there is nothing to show.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Pager tracks the page a view wants and applies only the response to the
// most recent request. Responses to superseded requests are discarded.
type Pager struct {
	fetcher Fetcher
	perPage int
	logger  logging.Logger

	mu   sync.Mutex
	seq  uint64
	snap Snapshot
}

func NewPager(fetcher Fetcher, perPage int, logger logging.Logger) *Pager {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pager{
		fetcher: fetcher,
		perPage: perPage,
		logger:  logger,
		snap:    Snapshot{Page: 1, PerPage: perPage, Runs: []types.RunSummary{}},
	}
}

func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Request marks a fetch of page as in flight and returns its sequence
// number. Pair it with Fetch and Apply when the fetch runs elsewhere, such
// as in a UI command.
func (p *Pager) Request() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.snap.Loading = true
	p.snap.Err = nil
	return p.seq
}

func (p *Pager) Fetch(ctx context.Context, page int) (*types.HistoryPage, error) {
	return p.fetcher.GetHistory(ctx, page, p.perPage)
}

// Apply stores the outcome of request seq. It reports false and leaves the
// snapshot untouched when a newer request has been made since.
func (p *Pager) Apply(seq uint64, result *types.HistoryPage, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		p.logger.Debug("history response dropped", logging.F("seq", seq), logging.F("latest", p.seq))
		return false
	}
	p.snap.Loading = false
	if err != nil {
		p.snap.Err = err
		return true
	}
	p.snap.Err = nil
	if result == nil {
		return true
	}
	p.snap.Runs = result.Runs
	if p.snap.Runs == nil {
		p.snap.Runs = []types.RunSummary{}
	}
	p.snap.Total = result.Total
	if result.Page > 0 {
		p.snap.Page = result.Page
	}
	return true
}

// FetchPage loads page and returns the snapshot after the response has been
// applied. applied is false when a later FetchPage superseded this one.
func (p *Pager) FetchPage(ctx context.Context, page int) (snap Snapshot, applied bool) {
	seq := p.Request()
	result, err := p.Fetch(ctx, page)
	applied = p.Apply(seq, result, err)
	return p.Snapshot(), applied
}

func (p *Pager) Next(ctx context.Context) (Snapshot, bool) {
	snap := p.Snapshot()
	if !snap.HasNext() {
		return snap, false
	}
	return p.FetchPage(ctx, snap.Page+1)
}

func (p *Pager) Prev(ctx context.Context) (Snapshot, bool) {
	snap := p.Snapshot()
	if !snap.HasPrev() {
		return snap, false
	}
	return p.FetchPage(ctx, snap.Page-1)
}
