package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"threadwatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type gatedFetcher struct {
	mu     sync.Mutex
	gates  map[int]chan struct{}
	limits []int
	total  int
	err    error
}

func newGatedFetcher(total int) *gatedFetcher {
	return &gatedFetcher{gates: map[int]chan struct{}{}, total: total}
}

func (f *gatedFetcher) gate(page int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[page]
	if !ok {
		ch = make(chan struct{})
		f.gates[page] = ch
	}
	return ch
}

func (f *gatedFetcher) open(page int) {
	close(f.gate(page))
}

func (f *gatedFetcher) GetHistory(ctx context.Context, page, limit int) (*types.HistoryPage, error) {
	<-f.gate(page)
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &types.HistoryPage{
		Runs:  []types.RunSummary{{ID: "run-page-" + string(rune('0'+page))}},
		Total: f.total,
		Page:  page,
		Limit: limit,
	}, nil
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 3, TotalPages(41, 20))
	assert.Equal(t, 3, TotalPages(41, 0))
}

func TestFetchPageAppliesResult(t *testing.T) {
	f := newGatedFetcher(41)
	f.open(2)
	p := NewPager(f, 20, nil)

	snap, applied := p.FetchPage(context.Background(), 2)
	require.True(t, applied)
	assert.False(t, snap.Loading)
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, 3, snap.TotalPages())
	assert.True(t, snap.HasPrev())
	assert.True(t, snap.HasNext())
	assert.Equal(t, []int{20}, f.limits)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	f := newGatedFetcher(100)
	p := NewPager(f, 20, nil)

	first := p.Request()
	second := p.Request()

	f.open(3)
	res3, err := p.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, p.Apply(second, res3, nil))

	f.open(2)
	res2, err := p.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, p.Apply(first, res2, nil))

	snap := p.Snapshot()
	assert.Equal(t, 3, snap.Page)
	require.Len(t, snap.Runs, 1)
	assert.Equal(t, "run-page-3", snap.Runs[0].ID)
}

func TestConcurrentFetchPageLastRequestWins(t *testing.T) {
	f := newGatedFetcher(100)
	p := NewPager(f, 20, nil)

	done := make(chan bool, 1)
	go func() {
		_, applied := p.FetchPage(context.Background(), 2)
		done <- applied
	}()
	require.Eventually(t, func() bool { return p.Snapshot().Loading }, timeout, tick)

	f.open(4)
	snap, applied := p.FetchPage(context.Background(), 4)
	require.True(t, applied)
	assert.Equal(t, 4, snap.Page)

	f.open(2)
	assert.False(t, <-done)
	assert.Equal(t, 4, p.Snapshot().Page)
}

func TestFetchErrorKeepsPreviousRuns(t *testing.T) {
	f := newGatedFetcher(10)
	f.open(1)
	p := NewPager(f, 20, nil)
	_, _ = p.FetchPage(context.Background(), 1)

	f.mu.Lock()
	f.err = errors.New("failed to get history: Bad Gateway")
	f.mu.Unlock()
	snap, applied := p.FetchPage(context.Background(), 1)
	require.True(t, applied)
	require.Error(t, snap.Err)
	assert.Len(t, snap.Runs, 1)
	assert.False(t, snap.Loading)
}

func TestNextPrevRespectBounds(t *testing.T) {
	f := newGatedFetcher(30)
	f.open(1)
	f.open(2)
	p := NewPager(f, 20, nil)

	_, applied := p.Prev(context.Background())
	assert.False(t, applied)

	_, _ = p.FetchPage(context.Background(), 1)
	snap, applied := p.Next(context.Background())
	require.True(t, applied)
	assert.Equal(t, 2, snap.Page)

	_, applied = p.Next(context.Background())
	assert.False(t, applied)

	snap, applied = p.Prev(context.Background())
	require.True(t, applied)
	assert.Equal(t, 1, snap.Page)
}
