package report

import (
	"context"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/aggregate"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Realtime reports today so far against the same span yesterday, the last
// hour, the hourly series and the latest orders.
func (s *Service) Realtime(ctx context.Context) (*entity.RealtimeReport, error) {
	now := s.now()
	rr := period.Today(now)

	var g errgroup.Group
	cmp := s.compare(ctx, &g, rr, entity.CountedFilter())
	lastHour := spawn(ctx, &g, "last hour", func(ctx context.Context) (*aggregate.Result, error) {
		return s.agg.Aggregate(ctx, entity.TimeRange{From: now.Add(-time.Hour), To: now}, entity.CountedFilter())
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n notices
	cmp.collect(&n)
	hour := lastHour.get(&n)
	if hour == nil {
		hour = aggregate.Empty(entity.TimeRange{From: now.Add(-time.Hour), To: now})
	}
	n.add(hour.Notices...)

	cur, prev := cmp.cur, cmp.prev
	recent := cur.Recent
	if recent == nil {
		recent = []entity.RecentOrder{}
	}
	return &entity.RealtimeReport{
		Timestamp:       now,
		Range:           rr,
		TodayRevenue:    metric(cur.Totals.Revenue, prev.Totals.Revenue),
		TodayOrders:     countMetric(cur.Totals.Orders, prev.Totals.Orders),
		LastHourOrders:  hour.Totals.Orders,
		LastHourRevenue: hour.Totals.Revenue,
		Hourly:          aggregate.Hourly(cur),
		RecentOrders:    recent,
		Notices:         n,
	}, nil
}
