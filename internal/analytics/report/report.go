// Package report assembles the analytics reports served by the admin API.
// Every report fans its sections out concurrently and joins them; a section
// whose collaborator fails is replaced by its zero value plus a notice.
package report

import (
	"fmt"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/aggregate"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/growth"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/resolve"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// Config tunes the report assemblers.
type Config struct {
	LowStockThreshold int64                   `mapstructure:"low_stock_threshold"`
	LowStockLimit     int                     `mapstructure:"low_stock_limit"`
	TopProductsLimit  int                     `mapstructure:"top_products_limit"`
	CategorySynonyms  []resolve.SynonymConfig `mapstructure:"category_synonyms"`
}

const (
	defaultLowStockThreshold = 5
	defaultLowStockLimit     = 10
	defaultTopProductsLimit  = 10

	// placeholderRate is reported for figures that need visitor tracking.
	placeholderRate = "0%"
)

// Query carries the raw period selection of a request.
type Query struct {
	Period string
	From   string
	To     string
}

// Service builds reports from a repository.
type Service struct {
	repo dependency.Repository
	agg  *aggregate.Aggregator
	c    Config
	now  func() time.Time
}

// New creates a report service. Synonym rules from the config replace the
// default table when present.
func New(repo dependency.Repository, c *Config) (*Service, error) {
	cfg := *c
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = defaultLowStockThreshold
	}
	if cfg.LowStockLimit <= 0 {
		cfg.LowStockLimit = defaultLowStockLimit
	}
	if cfg.TopProductsLimit <= 0 {
		cfg.TopProductsLimit = defaultTopProductsLimit
	}

	var synonyms []resolve.SynonymRule
	if len(cfg.CategorySynonyms) > 0 {
		var err error
		synonyms, err = resolve.CompileSynonyms(cfg.CategorySynonyms)
		if err != nil {
			return nil, fmt.Errorf("category synonyms: %w", err)
		}
	}

	return &Service{
		repo: repo,
		agg: aggregate.New(
			repo.Orders(),
			resolve.NewResolver(repo.Products()),
			resolve.NewCategoryNormalizer(repo.Categories(), synonyms),
		),
		c:   cfg,
		now: time.Now,
	}, nil
}

func metric(cur, prev decimal.Decimal) entity.MetricWithComparison {
	return entity.MetricWithComparison{
		Value:    cur,
		Previous: prev,
		Growth:   growth.Percent(cur, prev),
	}
}

func countMetric(cur, prev int) entity.MetricWithComparison {
	return entity.MetricWithComparison{
		Value:    decimal.NewFromInt(int64(cur)),
		Previous: decimal.NewFromInt(int64(prev)),
		Growth:   growth.PercentInt(int64(cur), int64(prev)),
	}
}

// kpis returns revenue, orders, average order value and units sold.
func kpis(cur, prev *aggregate.Result) (revenue, orders, aov, units entity.MetricWithComparison) {
	return metric(cur.Totals.Revenue, prev.Totals.Revenue),
		countMetric(cur.Totals.Orders, prev.Totals.Orders),
		metric(cur.Totals.AvgOrderValue(), prev.Totals.AvgOrderValue()),
		metric(decimal.NewFromInt(cur.Totals.Units), decimal.NewFromInt(prev.Totals.Units))
}

func top(rows []entity.ProductPerformance, limit int) []entity.ProductPerformance {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// bottom returns the limit weakest rows, weakest first.
func bottom(rows []entity.ProductPerformance, limit int) []entity.ProductPerformance {
	out := make([]entity.ProductPerformance, 0, limit)
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rows[i])
	}
	return out
}
