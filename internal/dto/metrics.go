package dto

import (
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/growth"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

type Range struct {
	Period       string    `json:"period"`
	Days         int       `json:"days"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	PreviousFrom time.Time `json:"previousFrom"`
	PreviousTo   time.Time `json:"previousTo"`
}

type Metric struct {
	Value       float64 `json:"value"`
	Previous    float64 `json:"previous"`
	Growth      string  `json:"growth"`
	GrowthValue float64 `json:"growthValue"`
}

type DayPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Units   int64   `json:"units"`
}

type VisitorPoint struct {
	Date     string `json:"date"`
	Visitors int    `json:"visitors"`
}

type HourPoint struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type ProductRow struct {
	ProductID       string  `json:"productId,omitempty"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Resolved        bool    `json:"resolved"`
	Revenue         float64 `json:"revenue"`
	PreviousRevenue float64 `json:"previousRevenue"`
	Units           int64   `json:"units"`
	Orders          int     `json:"orders"`
	Growth          string  `json:"growth"`
}

type CategoryRow struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Previous float64 `json:"previous"`
	Orders   int     `json:"orders"`
	Units    int64   `json:"units"`
	Share    float64 `json:"share"`
	Growth   string  `json:"growth"`
}

type CohortRow struct {
	Cohort    string  `json:"cohort"`
	Customers int     `json:"customers"`
	Orders    int     `json:"orders"`
	Revenue   float64 `json:"revenue"`
}

type FunnelStage struct {
	Stage      string  `json:"stage"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type RecentOrder struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

type LowStockProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	SKU   string `json:"sku,omitempty"`
	Stock int64  `json:"stock"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Overview struct {
	Range   Range `json:"range"`
	Metrics struct {
		Revenue           Metric `json:"revenue"`
		Orders            Metric `json:"orders"`
		AverageOrderValue Metric `json:"averageOrderValue"`
		UnitsSold         Metric `json:"unitsSold"`
		ConversionRate    string `json:"conversionRate"`
	} `json:"metrics"`
	Charts struct {
		RevenueByDay       []DayPoint   `json:"revenueByDay"`
		ProductPerformance []ProductRow `json:"productPerformance"`
	} `json:"charts"`
	Totals struct {
		Orders  int     `json:"orders"`
		Revenue float64 `json:"revenue"`
	} `json:"totals"`
	Notices []string `json:"notices"`
}

type Advanced struct {
	Period           string        `json:"period"`
	Range            Range         `json:"range"`
	CohortData       []CohortRow   `json:"cohortData"`
	FunnelData       []FunnelStage `json:"funnelData"`
	RevenueBreakdown []CategoryRow `json:"revenueBreakdown"`
	Notices          []string      `json:"notices"`
}

type Dashboard struct {
	Totals struct {
		Products   int64   `json:"products"`
		Categories int64   `json:"categories"`
		Orders     int64   `json:"orders"`
		Revenue    float64 `json:"revenue"`
	} `json:"totals"`
	Current struct {
		Period            string `json:"period"`
		Range             Range  `json:"range"`
		Revenue           Metric `json:"revenue"`
		Orders            Metric `json:"orders"`
		AverageOrderValue Metric `json:"averageOrderValue"`
		UnitsSold         Metric `json:"unitsSold"`
	} `json:"current"`
	Analytics struct {
		Sales          []DayPoint     `json:"sales"`
		Visitors       []VisitorPoint `json:"visitors"`
		TopProducts    []ProductRow   `json:"topProducts"`
		ConversionRate string         `json:"conversionRate"`
		BounceRate     string         `json:"bounceRate"`
	} `json:"analytics"`
	LowStockProducts []LowStockProduct `json:"lowStockProducts"`
	Notifications    []Notification    `json:"notifications"`
}

type Realtime struct {
	Timestamp time.Time `json:"timestamp"`
	Today     struct {
		Revenue Metric `json:"revenue"`
		Orders  Metric `json:"orders"`
	} `json:"today"`
	LastHour struct {
		Orders  int     `json:"orders"`
		Revenue float64 `json:"revenue"`
	} `json:"lastHour"`
	Hourly         []HourPoint   `json:"hourly"`
	RecentOrders   []RecentOrder `json:"recentOrders"`
	ActiveVisitors int           `json:"activeVisitors"`
	Notices        []string      `json:"notices"`
}

type BusinessIntelligence struct {
	Range Range `json:"range"`
	KPIs  struct {
		Revenue           Metric `json:"revenue"`
		Orders            Metric `json:"orders"`
		AverageOrderValue Metric `json:"averageOrderValue"`
		UnitsSold         Metric `json:"unitsSold"`
		ItemsPerOrder     Metric `json:"itemsPerOrder"`
	} `json:"kpis"`
	TopPerformers   []ProductRow  `json:"topPerformers"`
	LowPerformers   []ProductRow  `json:"lowPerformers"`
	CategoryShare   []CategoryRow `json:"categoryShare"`
	UnresolvedItems int           `json:"unresolvedItems"`
	Notices         []string      `json:"notices"`
}

type GeneratedReport struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generatedAt"`
	Range       Range     `json:"range"`
	Summary     struct {
		Revenue           Metric `json:"revenue"`
		Orders            Metric `json:"orders"`
		AverageOrderValue Metric `json:"averageOrderValue"`
	} `json:"summary"`
	Rows    any      `json:"rows"`
	Notices []string `json:"notices"`
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func rangeToDTO(rr entity.ReportRange) Range {
	return Range{
		Period:       rr.Period,
		Days:         rr.Days,
		From:         rr.Current.From,
		To:           rr.Current.To,
		PreviousFrom: rr.Previous.From,
		PreviousTo:   rr.Previous.To,
	}
}

func metricToDTO(m entity.MetricWithComparison) Metric {
	return Metric{
		Value:       money(m.Value),
		Previous:    money(m.Previous),
		Growth:      m.Growth,
		GrowthValue: growth.Value(m.Value, m.Previous),
	}
}

func noticesToDTO(n []string) []string {
	if n == nil {
		return []string{}
	}
	return n
}

func daysToDTO(points []entity.DayPoint) []DayPoint {
	out := make([]DayPoint, 0, len(points))
	for _, p := range points {
		out = append(out, DayPoint{
			Date:    p.Date,
			Revenue: money(p.Revenue),
			Orders:  p.Orders,
			Units:   p.Units,
		})
	}
	return out
}

func visitorsToDTO(points []entity.VisitorPoint) []VisitorPoint {
	out := make([]VisitorPoint, 0, len(points))
	for _, p := range points {
		out = append(out, VisitorPoint{Date: p.Date, Visitors: p.Visitors})
	}
	return out
}

func hoursToDTO(points []entity.HourPoint) []HourPoint {
	out := make([]HourPoint, 0, len(points))
	for _, p := range points {
		out = append(out, HourPoint{Hour: p.Hour, Orders: p.Orders, Revenue: money(p.Revenue)})
	}
	return out
}

func productsToDTO(rows []entity.ProductPerformance) []ProductRow {
	out := make([]ProductRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductRow{
			ProductID:       r.ProductID,
			Name:            r.Name,
			Category:        r.Category,
			Resolved:        r.Resolved,
			Revenue:         money(r.Revenue),
			PreviousRevenue: money(r.PreviousRevenue),
			Units:           r.Units,
			Orders:          r.Orders,
			Growth:          r.Growth,
		})
	}
	return out
}

func categoriesToDTO(rows []entity.CategoryRevenue) []CategoryRow {
	out := make([]CategoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryRow{
			Category: r.Category,
			Value:    money(r.Value),
			Previous: money(r.Previous),
			Orders:   r.Orders,
			Units:    r.Units,
			Share:    r.Share,
			Growth:   r.Growth,
		})
	}
	return out
}

func ConvertEntityOverviewToDTO(r *entity.OverviewReport) *Overview {
	if r == nil {
		return nil
	}
	o := &Overview{Range: rangeToDTO(r.Range)}
	o.Metrics.Revenue = metricToDTO(r.Revenue)
	o.Metrics.Orders = metricToDTO(r.Orders)
	o.Metrics.AverageOrderValue = metricToDTO(r.AvgOrderValue)
	o.Metrics.UnitsSold = metricToDTO(r.UnitsSold)
	o.Metrics.ConversionRate = r.ConversionRate
	o.Charts.RevenueByDay = daysToDTO(r.RevenueByDay)
	o.Charts.ProductPerformance = productsToDTO(r.ProductPerformance)
	o.Totals.Orders = r.TotalOrders
	o.Totals.Revenue = money(r.TotalRevenue)
	o.Notices = noticesToDTO(r.Notices)
	return o
}

func ConvertEntityAdvancedToDTO(r *entity.AdvancedReport) *Advanced {
	if r == nil {
		return nil
	}
	a := &Advanced{
		Period:           r.Range.Period,
		Range:            rangeToDTO(r.Range),
		CohortData:       make([]CohortRow, 0, len(r.CohortData)),
		FunnelData:       make([]FunnelStage, 0, len(r.FunnelData)),
		RevenueBreakdown: categoriesToDTO(r.RevenueBreakdown),
		Notices:          noticesToDTO(r.Notices),
	}
	for _, c := range r.CohortData {
		a.CohortData = append(a.CohortData, CohortRow{
			Cohort:    c.Cohort,
			Customers: c.Customers,
			Orders:    c.Orders,
			Revenue:   money(c.Revenue),
		})
	}
	for _, f := range r.FunnelData {
		a.FunnelData = append(a.FunnelData, FunnelStage{Stage: f.Stage, Count: f.Count, Percentage: f.Percentage})
	}
	return a
}

func ConvertEntityDashboardToDTO(r *entity.DashboardReport) *Dashboard {
	if r == nil {
		return nil
	}
	d := &Dashboard{
		LowStockProducts: make([]LowStockProduct, 0, len(r.LowStockProducts)),
		Notifications:    make([]Notification, 0, len(r.Notifications)),
	}
	d.Totals.Products = r.Totals.Products
	d.Totals.Categories = r.Totals.Categories
	d.Totals.Orders = r.Totals.Orders
	d.Totals.Revenue = money(r.Totals.Revenue)

	d.Current.Period = r.Range.Period
	d.Current.Range = rangeToDTO(r.Range)
	d.Current.Revenue = metricToDTO(r.Revenue)
	d.Current.Orders = metricToDTO(r.Orders)
	d.Current.AverageOrderValue = metricToDTO(r.AvgOrderValue)
	d.Current.UnitsSold = metricToDTO(r.UnitsSold)

	d.Analytics.Sales = daysToDTO(r.Sales)
	d.Analytics.Visitors = visitorsToDTO(r.Visitors)
	d.Analytics.TopProducts = productsToDTO(r.TopProducts)
	d.Analytics.ConversionRate = r.ConversionRate
	d.Analytics.BounceRate = r.BounceRate

	for _, p := range r.LowStockProducts {
		d.LowStockProducts = append(d.LowStockProducts, LowStockProduct{ID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Stock})
	}
	for _, n := range r.Notifications {
		d.Notifications = append(d.Notifications, Notification{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	return d
}

func ConvertEntityRealtimeToDTO(r *entity.RealtimeReport) *Realtime {
	if r == nil {
		return nil
	}
	rt := &Realtime{
		Timestamp:      r.Timestamp,
		Hourly:         hoursToDTO(r.Hourly),
		RecentOrders:   make([]RecentOrder, 0, len(r.RecentOrders)),
		ActiveVisitors: r.ActiveVisitors,
		Notices:        noticesToDTO(r.Notices),
	}
	rt.Today.Revenue = metricToDTO(r.TodayRevenue)
	rt.Today.Orders = metricToDTO(r.TodayOrders)
	rt.LastHour.Orders = r.LastHourOrders
	rt.LastHour.Revenue = money(r.LastHourRevenue)
	for _, o := range r.RecentOrders {
		rt.RecentOrders = append(rt.RecentOrders, RecentOrder{
			ID:        o.ID,
			Status:    o.Status.String(),
			Total:     money(o.Total),
			Items:     o.Items,
			CreatedAt: o.CreatedAt,
		})
	}
	return rt
}

func ConvertEntityBusinessIntelligenceToDTO(r *entity.BusinessIntelligenceReport) *BusinessIntelligence {
	if r == nil {
		return nil
	}
	bi := &BusinessIntelligence{
		Range:           rangeToDTO(r.Range),
		TopPerformers:   productsToDTO(r.TopPerformers),
		LowPerformers:   productsToDTO(r.LowPerformers),
		CategoryShare:   categoriesToDTO(r.CategoryShare),
		UnresolvedItems: r.UnresolvedItems,
		Notices:         noticesToDTO(r.Notices),
	}
	bi.KPIs.Revenue = metricToDTO(r.Revenue)
	bi.KPIs.Orders = metricToDTO(r.Orders)
	bi.KPIs.AverageOrderValue = metricToDTO(r.AvgOrderValue)
	bi.KPIs.UnitsSold = metricToDTO(r.UnitsSold)
	bi.KPIs.ItemsPerOrder = metricToDTO(r.ItemsPerOrder)
	return bi
}

func ConvertEntityGeneratedReportToDTO(r *entity.GeneratedReport) *GeneratedReport {
	if r == nil {
		return nil
	}
	g := &GeneratedReport{
		Type:        string(r.Type),
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt,
		Range:       rangeToDTO(r.Range),
		Notices:     noticesToDTO(r.Notices),
	}
	g.Summary.Revenue = metricToDTO(r.Revenue)
	g.Summary.Orders = metricToDTO(r.Orders)
	g.Summary.AverageOrderValue = metricToDTO(r.AvgOrderValue)
	switch r.Type {
	case entity.ReportTypeProducts:
		g.Rows = productsToDTO(r.Products)
	case entity.ReportTypeCategories:
		g.Rows = categoriesToDTO(r.Categories)
	default:
		g.Rows = daysToDTO(r.Days)
	}
	return g
}
