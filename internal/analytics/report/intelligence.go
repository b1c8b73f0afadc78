package report

import (
	"context"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/aggregate"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"golang.org/x/sync/errgroup"
)

// BusinessIntelligence reports KPIs with growth, top and low performing
// products, category share and the number of unresolved line items.
func (s *Service) BusinessIntelligence(ctx context.Context, q Query) (*entity.BusinessIntelligenceReport, error) {
	rr := period.Resolve(q.Period, q.From, q.To, s.now())

	var g errgroup.Group
	cmp := s.compare(ctx, &g, rr, entity.CountedFilter())
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n notices
	cmp.collect(&n)
	cur, prev := cmp.cur, cmp.prev
	products := aggregate.Products(cur, prev)

	rep := &entity.BusinessIntelligenceReport{
		Range:           rr,
		ItemsPerOrder:   metric(cur.Totals.ItemsPerOrder(), prev.Totals.ItemsPerOrder()),
		TopPerformers:   top(products, s.c.TopProductsLimit),
		LowPerformers:   bottom(products, s.c.TopProductsLimit),
		CategoryShare:   aggregate.Categories(cur, prev),
		UnresolvedItems: cur.Totals.Unresolved,
	}
	rep.Revenue, rep.Orders, rep.AvgOrderValue, rep.UnitsSold = kpis(cur, prev)
	rep.Notices = n
	return rep, nil
}

var reportTitles = map[entity.ReportType]string{
	entity.ReportTypeSales:      "Sales report",
	entity.ReportTypeProducts:   "Product performance report",
	entity.ReportTypeCategories: "Category revenue report",
}

// ParseReportType returns the report type for a path value, sales for
// anything unknown.
func ParseReportType(v string) entity.ReportType {
	t := entity.ReportType(strings.ToLower(strings.TrimSpace(v)))
	if entity.ValidReportTypes[t] {
		return t
	}
	return entity.ReportTypeSales
}

// Generate builds a report of the given type. Only the rows matching the type
// are populated.
func (s *Service) Generate(ctx context.Context, typ entity.ReportType, q Query) (*entity.GeneratedReport, error) {
	typ = ParseReportType(string(typ))
	rr := period.Resolve(q.Period, q.From, q.To, s.now())

	var g errgroup.Group
	cmp := s.compare(ctx, &g, rr, entity.CountedFilter())
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n notices
	cmp.collect(&n)
	cur, prev := cmp.cur, cmp.prev

	rep := &entity.GeneratedReport{
		Type:          typ,
		Title:         reportTitles[typ],
		GeneratedAt:   s.now(),
		Range:         rr,
		Revenue:       metric(cur.Totals.Revenue, prev.Totals.Revenue),
		Orders:        countMetric(cur.Totals.Orders, prev.Totals.Orders),
		AvgOrderValue: metric(cur.Totals.AvgOrderValue(), prev.Totals.AvgOrderValue()),
	}
	switch typ {
	case entity.ReportTypeProducts:
		rep.Products = aggregate.Products(cur, prev)
	case entity.ReportTypeCategories:
		rep.Categories = aggregate.Categories(cur, prev)
	default:
		rep.Days = aggregate.FillDays(cur)
	}
	rep.Notices = n
	return rep, nil
}
