package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/aggregate"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Dashboard reports all-time catalog and order totals, the selected period
// against the previous one, low stock products and notifications. The period
// accepts the dashboard aliases today, week, month and year.
func (s *Service) Dashboard(ctx context.Context, token string) (*entity.DashboardReport, error) {
	if strings.TrimSpace(token) == "" {
		token = period.PeriodMonth
	}
	now := s.now()
	rr := period.Resolve(token, "", "", now)

	var g errgroup.Group
	cmp := s.compare(ctx, &g, rr, entity.CountedFilter())
	products := spawn(ctx, &g, "product count", func(ctx context.Context) (int64, error) {
		return s.repo.Products().CountProducts(ctx)
	})
	categories := spawn(ctx, &g, "category count", func(ctx context.Context) (int64, error) {
		return s.repo.Categories().CountCategories(ctx)
	})
	orders := spawn(ctx, &g, "order count", func(ctx context.Context) (int64, error) {
		return s.repo.Orders().CountOrders(ctx)
	})
	revenue := spawn(ctx, &g, "all-time revenue", func(ctx context.Context) (decimal.Decimal, error) {
		res, err := s.agg.Aggregate(ctx, period.AllTime(now), entity.RevenueFilter())
		if err != nil {
			return decimal.Zero, err
		}
		return res.Totals.Revenue, nil
	})
	lowStock := spawn(ctx, &g, "low stock products", func(ctx context.Context) ([]entity.Product, error) {
		return s.repo.Products().FindLowStockProducts(ctx, s.c.LowStockThreshold, s.c.LowStockLimit)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n notices
	rep := &entity.DashboardReport{
		Totals: entity.DashboardTotals{
			Products:   products.get(&n),
			Categories: categories.get(&n),
			Orders:     orders.get(&n),
			Revenue:    revenue.get(&n),
		},
		Range:            rr,
		LowStockProducts: lowStock.get(&n),
		ConversionRate:   placeholderRate,
		BounceRate:       placeholderRate,
	}
	cmp.collect(&n)
	cur, prev := cmp.cur, cmp.prev

	rep.Revenue, rep.Orders, rep.AvgOrderValue, rep.UnitsSold = kpis(cur, prev)
	rep.Sales = aggregate.FillDays(cur)
	rep.Visitors = aggregate.Visitors(cur)
	rep.TopProducts = top(aggregate.Products(cur, prev), s.c.TopProductsLimit)
	if rep.LowStockProducts == nil {
		rep.LowStockProducts = []entity.Product{}
	}
	rep.Notifications = s.notifications(cur, rep.LowStockProducts, n)
	return rep, nil
}

func (s *Service) notifications(cur *aggregate.Result, lowStock []entity.Product, n notices) []entity.Notification {
	now := s.now()
	out := []entity.Notification{}
	push := func(typ entity.NotificationType, msg string) {
		out = append(out, entity.Notification{
			ID:        uuid.NewString(),
			Type:      typ,
			Message:   msg,
			CreatedAt: now,
		})
	}

	if pending := cur.ByStatus[entity.OrderStatusNew] + cur.ByStatus[entity.OrderStatusProcessing]; pending > 0 {
		push(entity.NotificationInfo, fmt.Sprintf("%d orders are waiting to be fulfilled", pending))
	}
	if len(lowStock) > 0 {
		push(entity.NotificationWarning, fmt.Sprintf("%d products are at or below %d units in stock", len(lowStock), s.c.LowStockThreshold))
	}
	for _, msg := range n {
		push(entity.NotificationWarning, msg)
	}
	return out
}
