package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/growth"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/resolve"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/jekabolt/grbpwr-analytics/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shoesCategoryID = "65a1b2c3d4e5f60718293a4b"

var now = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seed() *memory.Store {
	s := memory.New()
	s.AddCategories(entity.Category{ID: shoesCategoryID, Name: "Shoes"})
	s.AddProducts(
		entity.Product{ID: "65a1b2c3d4e5f60718293a01", Slug: "trail-runner", Name: "Trail Runner", Category: shoesCategoryID, Stock: 2},
		entity.Product{ID: "65a1b2c3d4e5f60718293a02", Slug: "pan", Name: "Cast Iron Pan", Category: "Home and Kitchen", Stock: 40},
	)
	s.AddOrders(
		entity.Order{ID: "a", Status: entity.OrderStatusPaid, CreatedAt: now.Add(-2 * time.Hour), CustomerID: "c1",
			Items: []entity.OrderItem{{ProductID: "trail-runner", Quantity: 2, Price: dec(100)}}},
		entity.Order{ID: "b", Status: entity.OrderStatusDelivered, CreatedAt: now.AddDate(0, 0, -3), CustomerID: "c2",
			Items: []entity.OrderItem{
				{ProductID: "pan", Quantity: 1, Price: dec(50)},
				{Name: "Mystery Gadget", Quantity: 1, Price: dec(25)},
			}},
		entity.Order{ID: "c", Status: entity.OrderStatusNew, CreatedAt: now.Add(-30 * time.Minute),
			Items: []entity.OrderItem{{ProductID: "pan", Quantity: 1, Price: dec(50)}}},
		entity.Order{ID: "d", Status: entity.OrderStatusCancelled, CreatedAt: now.Add(-time.Hour),
			Items: []entity.OrderItem{{ProductID: "pan", Quantity: 9, Price: dec(50)}}},
		entity.Order{ID: "e", Status: entity.OrderStatusPaid, CreatedAt: now.AddDate(0, 0, -10),
			Items: []entity.OrderItem{{ProductID: "trail-runner", Quantity: 1, Price: dec(100)}}},
		entity.Order{ID: "f", Status: entity.OrderStatusShipped, CreatedAt: now.AddDate(0, 0, -1).Add(-time.Hour),
			Items: []entity.OrderItem{{ProductID: "trail-runner", Quantity: 1, Price: dec(80)}}},
	)
	return s
}

func newService(t *testing.T, repo dependency.Repository, c Config) *Service {
	t.Helper()
	s, err := New(repo, &c)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestOverview(t *testing.T) {
	s := newService(t, seed(), Config{})

	rep, err := s.Overview(context.Background(), Query{Period: "7d"})
	require.NoError(t, err)

	assert.Equal(t, "7d", rep.Range.Period)
	assert.Equal(t, "355", rep.Revenue.Value.String())
	assert.Equal(t, "100", rep.Revenue.Previous.String())
	assert.Equal(t, "+255.0%", rep.Revenue.Growth)
	assert.Equal(t, 4, rep.TotalOrders)
	assert.Equal(t, "4", rep.Orders.Value.String())
	assert.Equal(t, growth.PercentInt(4, rep.Orders.Previous.IntPart()), rep.Orders.Growth)
	assert.Equal(t, "0%", rep.ConversionRate)
	assert.Len(t, rep.RevenueByDay, 7)
	require.NotEmpty(t, rep.ProductPerformance)
	assert.Equal(t, "Trail Runner", rep.ProductPerformance[0].Name)
	assert.Equal(t, "280", rep.ProductPerformance[0].Revenue.String())
	assert.Empty(t, rep.Notices)
}

func TestAdvanced(t *testing.T) {
	s := newService(t, seed(), Config{})

	rep, err := s.Advanced(context.Background(), Query{Period: "30d"})
	require.NoError(t, err)

	require.NotEmpty(t, rep.RevenueBreakdown)
	assert.Equal(t, "Shoes", rep.RevenueBreakdown[0].Category)
	assert.Equal(t, "380", rep.RevenueBreakdown[0].Value.String())

	names := map[string]string{}
	for _, c := range rep.RevenueBreakdown {
		names[c.Category] = c.Value.String()
	}
	assert.Equal(t, "50", names["Kitchen"])
	assert.Equal(t, "25", names[entity.UncategorizedLabel])

	require.Len(t, rep.FunnelData, 5)
	assert.Equal(t, 5, rep.FunnelData[0].Count)
	require.Len(t, rep.CohortData, 1)
	assert.Equal(t, "2024-03", rep.CohortData[0].Cohort)
	assert.Equal(t, 2, rep.CohortData[0].Customers)
}

func TestDashboard(t *testing.T) {
	s := newService(t, seed(), Config{LowStockThreshold: 5})

	rep, err := s.Dashboard(context.Background(), "week")
	require.NoError(t, err)

	assert.Equal(t, int64(2), rep.Totals.Products)
	assert.Equal(t, int64(1), rep.Totals.Categories)
	assert.Equal(t, int64(5), rep.Totals.Orders)
	assert.Equal(t, "455", rep.Totals.Revenue.String())
	assert.Equal(t, "week", rep.Range.Period)
	assert.Len(t, rep.Visitors, 7)
	for _, v := range rep.Visitors {
		assert.Zero(t, v.Visitors)
	}
	assert.Equal(t, "0%", rep.BounceRate)

	require.Len(t, rep.LowStockProducts, 1)
	assert.Equal(t, "Trail Runner", rep.LowStockProducts[0].Name)

	require.Len(t, rep.Notifications, 2)
	assert.Equal(t, entity.NotificationInfo, rep.Notifications[0].Type)
	assert.Equal(t, entity.NotificationWarning, rep.Notifications[1].Type)
	assert.NotEqual(t, rep.Notifications[0].ID, rep.Notifications[1].ID)
	assert.Len(t, rep.Notifications[0].ID, 36)
}

func TestRealtime(t *testing.T) {
	s := newService(t, seed(), Config{})

	rep, err := s.Realtime(context.Background())
	require.NoError(t, err)

	assert.Equal(t, now, rep.Timestamp)
	assert.Equal(t, "200", rep.TodayRevenue.Value.String())
	assert.Equal(t, int64(2), rep.TodayOrders.Value.IntPart())
	assert.Equal(t, "80", rep.TodayRevenue.Previous.String())
	assert.Equal(t, 1, rep.LastHourOrders)
	assert.True(t, rep.LastHourRevenue.IsZero())
	assert.Len(t, rep.Hourly, 24)
	require.Len(t, rep.RecentOrders, 2)
	assert.Equal(t, "c", rep.RecentOrders[0].ID)
	assert.Zero(t, rep.ActiveVisitors)
}

func TestBusinessIntelligence(t *testing.T) {
	s := newService(t, seed(), Config{TopProductsLimit: 2})

	rep, err := s.BusinessIntelligence(context.Background(), Query{Period: "7d"})
	require.NoError(t, err)

	assert.Equal(t, 1, rep.UnresolvedItems)
	require.Len(t, rep.TopPerformers, 2)
	assert.Equal(t, "Trail Runner", rep.TopPerformers[0].Name)
	require.Len(t, rep.LowPerformers, 2)
	assert.Equal(t, "Mystery Gadget", rep.LowPerformers[0].Name)
	require.NotEmpty(t, rep.CategoryShare)
	assert.Equal(t, "Shoes", rep.CategoryShare[0].Category)
	assert.Equal(t, 78.9, rep.CategoryShare[0].Share)
}

func TestGenerate(t *testing.T) {
	s := newService(t, seed(), Config{})
	ctx := context.Background()

	rep, err := s.Generate(ctx, "categories", Query{Period: "7d"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReportTypeCategories, rep.Type)
	assert.NotEmpty(t, rep.Categories)
	assert.Nil(t, rep.Days)
	assert.Nil(t, rep.Products)

	rep, err = s.Generate(ctx, "bogus", Query{Period: "7d"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReportTypeSales, rep.Type)
	assert.Equal(t, "Sales report", rep.Title)
	assert.Len(t, rep.Days, 7)

	rep, err = s.Generate(ctx, "PRODUCTS", Query{From: "2024-03-01", To: "2024-03-15"})
	require.NoError(t, err)
	assert.Equal(t, "custom", rep.Range.Period)
	assert.Equal(t, 15, rep.Range.Days)
	assert.Len(t, rep.Products, 3)
}

func TestFailingProductStoreDegrades(t *testing.T) {
	base := seed()
	s := newService(t, &repo{Store: base, products: downProducts{base.Products()}}, Config{})

	rep, err := s.Overview(context.Background(), Query{Period: "7d"})
	require.NoError(t, err)
	assert.Equal(t, "355", rep.Revenue.Value.String())
	require.NotEmpty(t, rep.Notices)

	dash, err := s.Dashboard(context.Background(), "month")
	require.NoError(t, err)
	assert.Zero(t, dash.Totals.Products)
	assert.Empty(t, dash.LowStockProducts)
	assert.Equal(t, "455", dash.Totals.Revenue.String())

	var warnings int
	for _, nt := range dash.Notifications {
		if nt.Type == entity.NotificationWarning {
			warnings++
		}
	}
	assert.GreaterOrEqual(t, warnings, 3)
}

func TestFailingOrderStoreDegrades(t *testing.T) {
	base := seed()
	s := newService(t, &repo{Store: base, orders: downOrders{}}, Config{})

	rep, err := s.BusinessIntelligence(context.Background(), Query{Period: "30d"})
	require.NoError(t, err)
	assert.True(t, rep.Revenue.Value.IsZero())
	assert.Equal(t, "0%", rep.Revenue.Growth)
	assert.Len(t, rep.Notices, 2)
}

func TestSectionPanicFailsReport(t *testing.T) {
	base := seed()
	s := newService(t, &repo{Store: base, orders: panickingOrders{}}, Config{})

	_, err := s.Overview(context.Background(), Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, gerr.ErrSectionPanic)

	_, err = s.Dashboard(context.Background(), "")
	assert.ErrorIs(t, err, gerr.ErrSectionPanic)
}

func TestNewRejectsBadSynonyms(t *testing.T) {
	_, err := New(seed(), &Config{CategorySynonyms: []resolve.SynonymConfig{{Pattern: "(", Label: "x"}}})
	require.Error(t, err)
}

func TestConfiguredSynonyms(t *testing.T) {
	s := newService(t, seed(), Config{CategorySynonyms: []resolve.SynonymConfig{{Pattern: "home", Label: "Home"}}})

	rep, err := s.Advanced(context.Background(), Query{Period: "30d"})
	require.NoError(t, err)
	var cats []string
	for _, c := range rep.RevenueBreakdown {
		cats = append(cats, c.Category)
	}
	assert.Contains(t, cats, "Home")
	assert.NotContains(t, cats, "Kitchen")
}

var errDown = errors.New("store down")

type repo struct {
	*memory.Store
	products dependency.Products
	orders   dependency.Orders
}

func (r *repo) Products() dependency.Products {
	if r.products != nil {
		return r.products
	}
	return r.Store.Products()
}

func (r *repo) Orders() dependency.Orders {
	if r.orders != nil {
		return r.orders
	}
	return r.Store.Orders()
}

type downProducts struct{ dependency.Products }

func (downProducts) FindProductBySlug(context.Context, string) (*entity.Product, error) {
	return nil, errDown
}

func (downProducts) FindProductByName(context.Context, string) (*entity.Product, error) {
	return nil, errDown
}

func (downProducts) CountProducts(context.Context) (int64, error) { return 0, errDown }

func (downProducts) FindLowStockProducts(context.Context, int64, int) ([]entity.Product, error) {
	return nil, errDown
}

type downOrders struct{ dependency.Orders }

func (downOrders) FindOrders(context.Context, entity.TimeRange, entity.OrderFilter) ([]entity.Order, error) {
	return nil, errDown
}

func (downOrders) CountOrders(context.Context) (int64, error) { return 0, errDown }

type panickingOrders struct{ dependency.Orders }

func (panickingOrders) FindOrders(context.Context, entity.TimeRange, entity.OrderFilter) ([]entity.Order, error) {
	panic("boom")
}

func (panickingOrders) CountOrders(context.Context) (int64, error) { return 0, nil }
