package report

import (
	"context"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/aggregate"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Overview reports headline metrics for the selected window against the
// previous one, with the daily revenue series and the best selling products.
func (s *Service) Overview(ctx context.Context, q Query) (*entity.OverviewReport, error) {
	rr := period.Resolve(q.Period, q.From, q.To, s.now())

	var g errgroup.Group
	cmp := s.compare(ctx, &g, rr, entity.CountedFilter())
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n notices
	cmp.collect(&n)
	cur, prev := cmp.cur, cmp.prev

	rep := &entity.OverviewReport{
		Range:              rr,
		ConversionRate:     placeholderRate,
		RevenueByDay:       aggregate.FillDays(cur),
		ProductPerformance: top(aggregate.Products(cur, prev), s.c.TopProductsLimit),
		TotalOrders:        cur.Totals.Orders,
		TotalRevenue:       cur.Totals.Revenue,
	}
	rep.Revenue, rep.Orders, rep.AvgOrderValue, rep.UnitsSold = kpis(cur, prev)
	rep.Notices = n
	return rep, nil
}

// Advanced reports customer cohorts, the order status funnel and the
// category revenue breakdown.
func (s *Service) Advanced(ctx context.Context, q Query) (*entity.AdvancedReport, error) {
	rr := period.Resolve(q.Period, q.From, q.To, s.now())

	var g errgroup.Group
	cmp := s.compare(ctx, &g, rr, entity.CountedFilter())
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n notices
	cmp.collect(&n)

	return &entity.AdvancedReport{
		Range:            rr,
		CohortData:       aggregate.Cohorts(cmp.cur),
		FunnelData:       aggregate.Funnel(cmp.cur),
		RevenueBreakdown: aggregate.Categories(cmp.cur, cmp.prev),
		Notices:          n,
	}, nil
}
