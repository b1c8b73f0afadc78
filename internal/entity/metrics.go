package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeTick is the resolution of window boundaries.
const TimeTick = time.Millisecond

// TimeRange is a reporting window. To is the last instant inside the window.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window. Membership is evaluated
// against To+TimeTick exclusively so adjacent windows never overlap or leave a gap.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.From) && t.Before(tr.To.Add(TimeTick))
}

// Duration returns To - From.
func (tr TimeRange) Duration() time.Duration {
	return tr.To.Sub(tr.From)
}

// ReportRange is a resolved reporting period and the equally sized window
// immediately before it.
type ReportRange struct {
	Period   string
	Days     int
	Current  TimeRange
	Previous TimeRange
}

// MetricWithComparison is a metric value for the current window, the same
// metric for the previous window and the formatted growth between them.
type MetricWithComparison struct {
	Value    decimal.Decimal
	Previous decimal.Decimal
	Growth   string
}

// DayPoint is one day of a gap-filled time series.
type DayPoint struct {
	Date    string
	Revenue decimal.Decimal
	Orders  int
	Units   int64
}

// VisitorPoint is one day of the visitor series. Visitors are not tracked,
// the value is always zero.
type VisitorPoint struct {
	Date     string
	Visitors int
}

// HourPoint is one hour bucket of the realtime series.
type HourPoint struct {
	Hour    int
	Orders  int
	Revenue decimal.Decimal
}

type ProductPerformance struct {
	Key             string
	ProductID       string
	Name            string
	Category        string
	Resolved        bool
	Revenue         decimal.Decimal
	PreviousRevenue decimal.Decimal
	Units           int64
	Orders          int
	Growth          string
}

type CategoryRevenue struct {
	Category string
	Value    decimal.Decimal
	Previous decimal.Decimal
	Orders   int
	Units    int64
	Share    float64
	Growth   string
}

type CohortRow struct {
	Cohort    string
	Customers int
	Orders    int
	Revenue   decimal.Decimal
}

type FunnelStage struct {
	Stage      string
	Count      int
	Percentage float64
}

type RecentOrder struct {
	ID        string
	Status    OrderStatus
	Total     decimal.Decimal
	Items     int
	CreatedAt time.Time
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
)

type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
}

// OverviewReport backs GET /analytics/overview.
type OverviewReport struct {
	Range              ReportRange
	Revenue            MetricWithComparison
	Orders             MetricWithComparison
	AvgOrderValue      MetricWithComparison
	UnitsSold          MetricWithComparison
	ConversionRate     string
	RevenueByDay       []DayPoint
	ProductPerformance []ProductPerformance
	TotalOrders        int
	TotalRevenue       decimal.Decimal
	Notices            []string
}

// AdvancedReport backs GET /analytics/advanced.
type AdvancedReport struct {
	Range            ReportRange
	CohortData       []CohortRow
	FunnelData       []FunnelStage
	RevenueBreakdown []CategoryRevenue
	Notices          []string
}

type DashboardTotals struct {
	Products   int64
	Categories int64
	Orders     int64
	Revenue    decimal.Decimal
}

// DashboardReport backs GET /dashboard.
type DashboardReport struct {
	Totals           DashboardTotals
	Range            ReportRange
	Revenue          MetricWithComparison
	Orders           MetricWithComparison
	AvgOrderValue    MetricWithComparison
	UnitsSold        MetricWithComparison
	Sales            []DayPoint
	Visitors         []VisitorPoint
	TopProducts      []ProductPerformance
	ConversionRate   string
	BounceRate       string
	LowStockProducts []Product
	Notifications    []Notification
}

// RealtimeReport backs GET /analytics/realtime.
type RealtimeReport struct {
	Timestamp       time.Time
	Range           ReportRange
	TodayRevenue    MetricWithComparison
	TodayOrders     MetricWithComparison
	LastHourOrders  int
	LastHourRevenue decimal.Decimal
	Hourly          []HourPoint
	RecentOrders    []RecentOrder
	ActiveVisitors  int
	Notices         []string
}

// BusinessIntelligenceReport backs GET /analytics/business-intelligence.
type BusinessIntelligenceReport struct {
	Range           ReportRange
	Revenue         MetricWithComparison
	Orders          MetricWithComparison
	AvgOrderValue   MetricWithComparison
	UnitsSold       MetricWithComparison
	ItemsPerOrder   MetricWithComparison
	TopPerformers   []ProductPerformance
	LowPerformers   []ProductPerformance
	CategoryShare   []CategoryRevenue
	UnresolvedItems int
	Notices         []string
}

type ReportType string

const (
	ReportTypeSales      ReportType = "sales"
	ReportTypeProducts   ReportType = "products"
	ReportTypeCategories ReportType = "categories"
)

var ValidReportTypes = map[ReportType]bool{
	ReportTypeSales:      true,
	ReportTypeProducts:   true,
	ReportTypeCategories: true,
}

// GeneratedReport backs GET /analytics/reports/{type}. Only the rows matching
// Type are populated.
type GeneratedReport struct {
	Type          ReportType
	Title         string
	GeneratedAt   time.Time
	Range         ReportRange
	Revenue       MetricWithComparison
	Orders        MetricWithComparison
	AvgOrderValue MetricWithComparison
	Days          []DayPoint
	Products      []ProductPerformance
	Categories    []CategoryRevenue
	Notices       []string
}
