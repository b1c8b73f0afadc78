package aggregate

import (
	"sort"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/growth"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// FillDays returns one point per calendar day of the window, zero-filled
// where no order was placed.
func FillDays(r *Result) []entity.DayPoint {
	days := period.Days(r.Window)
	out := make([]entity.DayPoint, 0, len(days))
	for _, d := range days {
		p := entity.DayPoint{Date: d, Revenue: decimal.Zero}
		if b, ok := r.ByDay[d]; ok {
			p.Revenue = b.Revenue
			p.Orders = b.Orders
			p.Units = b.Units
		}
		out = append(out, p)
	}
	return out
}

// Visitors returns a zero visitor series aligned with FillDays.
func Visitors(r *Result) []entity.VisitorPoint {
	days := period.Days(r.Window)
	out := make([]entity.VisitorPoint, 0, len(days))
	for _, d := range days {
		out = append(out, entity.VisitorPoint{Date: d})
	}
	return out
}

// Hourly returns the 24 hour buckets of the window's location.
func Hourly(r *Result) []entity.HourPoint {
	out := make([]entity.HourPoint, 24)
	for h := range out {
		out[h] = entity.HourPoint{
			Hour:    h,
			Orders:  r.ByHour[h].Orders,
			Revenue: r.ByHour[h].Revenue,
		}
	}
	return out
}

// Products merges current and previous product rows sorted by current revenue.
// Products that only sold in the previous window are kept with zero revenue.
func Products(cur, prev *Result) []entity.ProductPerformance {
	rows := map[string]*entity.ProductPerformance{}
	for k, b := range cur.ByProduct {
		rows[k] = &entity.ProductPerformance{
			Key:       k,
			ProductID: b.ProductID,
			Name:      b.Name,
			Category:  b.Category,
			Resolved:  b.Resolved,
			Revenue:   b.Revenue,
			Units:     b.Units,
			Orders:    b.Orders,
		}
	}
	for k, b := range prev.ByProduct {
		row, ok := rows[k]
		if !ok {
			row = &entity.ProductPerformance{
				Key:       k,
				ProductID: b.ProductID,
				Name:      b.Name,
				Category:  b.Category,
				Resolved:  b.Resolved,
			}
			rows[k] = row
		}
		row.PreviousRevenue = b.Revenue
	}

	out := make([]entity.ProductPerformance, 0, len(rows))
	for _, row := range rows {
		row.Growth = growth.Percent(row.Revenue, row.PreviousRevenue)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		if c := out[i].PreviousRevenue.Cmp(out[j].PreviousRevenue); c != 0 {
			return c > 0
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Categories merges current and previous category rows sorted by current
// revenue, with each category's share of current revenue.
func Categories(cur, prev *Result) []entity.CategoryRevenue {
	rows := map[string]*entity.CategoryRevenue{}
	for name, b := range cur.ByCategory {
		rows[name] = &entity.CategoryRevenue{
			Category: name,
			Value:    b.Revenue,
			Orders:   b.Orders,
			Units:    b.Units,
		}
	}
	for name, b := range prev.ByCategory {
		row, ok := rows[name]
		if !ok {
			row = &entity.CategoryRevenue{Category: name}
			rows[name] = row
		}
		row.Previous = b.Revenue
	}

	total := cur.Totals.Revenue
	out := make([]entity.CategoryRevenue, 0, len(rows))
	for _, row := range rows {
		row.Share = growth.Share(row.Value, total)
		row.Growth = growth.Percent(row.Value, row.Previous)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Cohorts groups customers by the month of their first order in the window.
func Cohorts(r *Result) []entity.CohortRow {
	loc := r.Window.From.Location()
	rows := map[string]*entity.CohortRow{}
	for _, c := range r.Customers {
		key := c.FirstOrder.In(loc).Format("2006-01")
		row, ok := rows[key]
		if !ok {
			row = &entity.CohortRow{Cohort: key, Revenue: decimal.Zero}
			rows[key] = row
		}
		row.Customers++
		row.Orders += c.Orders
		row.Revenue = row.Revenue.Add(c.Revenue)
	}

	out := make([]entity.CohortRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cohort < out[j].Cohort })
	return out
}

// Funnel returns how many orders reached each stage of the order lifecycle.
// An order counts toward its own stage and every stage before it; the
// percentage is relative to placed orders.
func Funnel(r *Result) []entity.FunnelStage {
	counts := make([]int, len(entity.FunnelStatuses))
	for status, n := range r.ByStatus {
		stage := status.FunnelStage()
		for i := 0; i <= stage; i++ {
			counts[i] += n
		}
	}

	placed := counts[0]
	out := make([]entity.FunnelStage, len(counts))
	for i, s := range entity.FunnelStatuses {
		out[i] = entity.FunnelStage{
			Stage: s.String(),
			Count: counts[i],
		}
		if placed > 0 {
			out[i].Percentage = growth.Share(decimal.NewFromInt(int64(counts[i])), decimal.NewFromInt(int64(placed)))
		}
	}
	return out
}
