package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestRegistry(clock *fakeClock) *SessionRegistry {
	log := zerolog.Nop()
	r := NewSessionRegistry(func() *dashboard.Orchestrator {
		return dashboard.New(nil, nil, nil, nil, log, dashboard.Options{PageSize: dashboard.DefaultPageSize})
	}, SessionOptions{}, log)
	r.now = clock.Now
	return r
}

func TestSessionRegistry_CreateGetRemove(t *testing.T) {
	r := newTestRegistry(&fakeClock{t: time.Unix(1000, 0)})

	a := r.Create()
	b := r.Create()
	require.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, r.Remove(a.ID))
	assert.False(t, r.Remove(a.ID))
	_, ok = r.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{b.ID}, r.IDs())
}

func TestSessionRegistry_VersionFollowsEvents(t *testing.T) {
	r := newTestRegistry(&fakeClock{t: time.Unix(1000, 0)})
	s := r.Create()
	require.Equal(t, uint64(0), s.Version())

	s.Orchestrator.SetFilterMerchantState("CA")
	v := s.Version()
	assert.Greater(t, v, uint64(0))

	s.Orchestrator.ResetFilters()
	assert.Greater(t, s.Version(), v)

	r.Remove(s.ID)
	v = s.Version()
	s.Orchestrator.SetFilterMerchantState("NY")
	assert.Equal(t, v, s.Version(), "removed sessions stop tracking events")
}

func TestSessionRegistry_Reap(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := newTestRegistry(clock)

	idle := r.Create()
	clock.Advance(20 * time.Minute)
	active := r.Create()
	clock.Advance(15 * time.Minute)
	_, _ = r.Get(active.ID)

	removed := r.Reap(30 * time.Minute)

	assert.Equal(t, 1, removed)
	_, ok := r.Get(idle.ID)
	assert.False(t, ok)
	_, ok = r.Get(active.ID)
	assert.True(t, ok)
}

func TestSessionRegistry_RateLimiter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := newTestRegistry(clock)
	r.opts = SessionOptions{Rate: 1, Burst: 1}

	s := r.Create()
	assert.True(t, s.limiter.Allow())
	assert.False(t, s.limiter.Allow())

	r.opts = SessionOptions{}
	unlimited := r.Create()
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.limiter.Allow())
	}
}

func TestLoadContextIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/x/dashboard/load", nil).WithContext(ctx)
	cancel()

	assert.NoError(t, loadContext(req).Err())
}
