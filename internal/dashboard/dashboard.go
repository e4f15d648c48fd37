package dashboard

import (
	"context"
	"encoding/json"

	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/domain"
)

// LoadDashboard fetches the overview, recent transactions, health and metadata
// concurrently. It is a no-op while the dashboard cache key is fresh and an
// overview is already published.
func (o *Orchestrator) LoadDashboard(ctx context.Context) {
	var cached bool
	o.read(func(s *State) {
		cached = len(s.StatsOverview) > 0
	})
	if cached && o.cache.IsFresh(cache.KeyDashboard) {
		return
	}

	start := o.begin(SectionDashboard)
	defer o.end(SectionDashboard)

	var (
		overview, health, metadata domain.Document
		recent                     []json.RawMessage
	)
	b := gather(ctx,
		call{name: "stats_overview", run: func(ctx context.Context) (err error) {
			overview, err = o.api.GetStatsOverview(ctx)
			return err
		}},
		call{name: "recent_transactions", run: func(ctx context.Context) (err error) {
			recent, err = o.api.GetRecentTransactions(ctx, RecentTransactionsLimit)
			return err
		}},
		call{name: "system_health", run: func(ctx context.Context) (err error) {
			health, err = o.api.GetHealth(ctx)
			return err
		}},
		call{name: "system_metadata", run: func(ctx context.Context) (err error) {
			metadata, err = o.api.GetMetadata(ctx)
			return err
		}},
	)

	var recentTxs []domain.Transaction
	if b.ok("recent_transactions") {
		recentTxs = o.normalizer.Transactions(recent)
	}

	o.update(func(s *State) {
		if b.ok("stats_overview") {
			s.StatsOverview = overview
		}
		if b.ok("recent_transactions") {
			s.RecentTransactions = recentTxs
		}
		if b.ok("system_health") {
			s.SystemHealth = health
		}
		if b.ok("system_metadata") {
			s.SystemMetadata = metadata
		}
	})
	o.settle(SectionDashboard, cache.KeyDashboard, "dashboard", start, b)
}
