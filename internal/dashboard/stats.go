package dashboard

import (
	"context"
	"encoding/json"

	"github.com/aristath/bankdash/internal/analytics"
	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/domain"
)

// LoadStatsData fetches the amount distribution, per-type stats and daily stats
// concurrently, and derives the daily trend.
func (o *Orchestrator) LoadStatsData(ctx context.Context) {
	var cached bool
	o.read(func(s *State) {
		cached = len(s.AmountDistribution) > 0
	})
	if cached && o.cache.IsFresh(cache.KeyStats) {
		return
	}

	start := o.begin(SectionStats)
	defer o.end(SectionStats)

	var (
		distribution domain.Document
		byType       []json.RawMessage
		daily        []json.RawMessage
	)
	b := gather(ctx,
		call{name: "amount_distribution", run: func(ctx context.Context) (err error) {
			distribution, err = o.api.GetAmountDistribution(ctx, AmountDistributionBins)
			return err
		}},
		call{name: "stats_by_type", run: func(ctx context.Context) (err error) {
			byType, err = o.api.GetStatsByType(ctx)
			return err
		}},
		call{name: "daily_stats", run: func(ctx context.Context) (err error) {
			daily, err = o.api.GetDailyStats(ctx, DailyStatsLimit)
			return err
		}},
	)

	var (
		typeStats  []domain.TypeStat
		dailyStats []domain.DailyStat
		trend      []analytics.TrendPoint
	)
	if b.ok("stats_by_type") {
		typeStats = o.normalizer.TypeStats(byType)
	}
	if b.ok("daily_stats") {
		dailyStats = o.normalizer.DailyStats(daily)
		trend = analytics.MovingAverage(dailyStats, analytics.DefaultTrendPeriod)
	}

	o.update(func(s *State) {
		if b.ok("amount_distribution") {
			s.AmountDistribution = distribution
		}
		if b.ok("stats_by_type") {
			s.StatsByType = typeStats
		}
		if b.ok("daily_stats") {
			s.DailyStats = dailyStats
			s.DailyTrend = trend
		}
	})
	o.settle(SectionStats, cache.KeyStats, "stats", start, b)
}
