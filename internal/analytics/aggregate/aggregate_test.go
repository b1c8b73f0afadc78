package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/resolve"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jekabolt/grbpwr-analytics/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shoesCategoryID = "65a1b2c3d4e5f60718293a4b"
	runnerID        = "65a1b2c3d4e5f60718293a01"
	danglingID      = "ffffffffffffffffffffffff"
)

var (
	windowFrom = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	window     = entity.TimeRange{From: windowFrom, To: period.EndOfDay(windowFrom.AddDate(0, 0, 6))}
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seed() *memory.Store {
	s := memory.New()
	s.AddCategories(entity.Category{ID: shoesCategoryID, Name: "Shoes"})
	s.AddProducts(
		entity.Product{ID: runnerID, Slug: "trail-runner", SKU: "TR-001", Name: "Trail Runner", Category: shoesCategoryID},
		entity.Product{ID: "65a1b2c3d4e5f60718293a02", Slug: danglingID, SKU: danglingID, Name: "Decoy", Category: "Decoys"},
		entity.Product{ID: "65a1b2c3d4e5f60718293a03", Slug: "pan", Name: "Cast Iron Pan", Category: "Home and Kitchen"},
	)
	return s
}

func newAggregator(s *memory.Store) *Aggregator {
	return New(
		s.Orders(),
		resolve.NewResolver(s.Products()),
		resolve.NewCategoryNormalizer(s.Categories(), nil),
	)
}

func TestAggregateAttributesRevenueToCategory(t *testing.T) {
	s := seed()
	s.AddOrders(entity.Order{
		ID:        "o1",
		Status:    entity.OrderStatusPaid,
		CreatedAt: at(2, 10),
		Items: []entity.OrderItem{
			{ProductID: "trail-runner", Quantity: 2, Price: dec(100)},
		},
	})

	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)

	require.Contains(t, res.ByCategory, "Shoes")
	assert.Equal(t, "200", res.ByCategory["Shoes"].Revenue.String())
	assert.Equal(t, 1, res.ByCategory["Shoes"].Orders)
	assert.Equal(t, int64(2), res.ByCategory["Shoes"].Units)
	assert.Len(t, res.ByCategory, 1)

	require.Contains(t, res.ByProduct, runnerID)
	assert.True(t, res.ByProduct[runnerID].Resolved)
	assert.Equal(t, "Trail Runner", res.ByProduct[runnerID].Name)
	assert.Equal(t, "200", res.Totals.Revenue.String())
	assert.Equal(t, 0, res.Totals.Unresolved)
}

func TestAggregateUnresolvedItem(t *testing.T) {
	s := seed()
	s.AddOrders(entity.Order{
		ID:        "o1",
		Status:    entity.OrderStatusDelivered,
		CreatedAt: at(3, 9),
		Items: []entity.OrderItem{
			{ProductID: "trail-runner", Quantity: 1, Price: dec(100)},
			{ProductID: "", Name: "Mystery Gadget", Quantity: 3, Price: dec(10)},
		},
	})

	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)

	assert.Equal(t, "130", res.Totals.Revenue.String())
	assert.Equal(t, 1, res.Totals.Unresolved)
	assert.Equal(t, 2, res.Totals.Items)
	assert.Equal(t, int64(4), res.Totals.Units)

	require.Contains(t, res.ByCategory, entity.UncategorizedLabel)
	assert.Equal(t, "30", res.ByCategory[entity.UncategorizedLabel].Revenue.String())
	assert.Equal(t, "100", res.ByCategory["Shoes"].Revenue.String())

	pb := res.ByProduct["name:mystery gadget"]
	require.NotNil(t, pb)
	assert.False(t, pb.Resolved)
	assert.Equal(t, "Mystery Gadget", pb.Name)
	assert.Equal(t, entity.UncategorizedLabel, pb.Category)
}

func TestAggregateDanglingIDStaysUnresolved(t *testing.T) {
	s := seed()
	s.AddOrders(entity.Order{
		ID:        "o1",
		Status:    entity.OrderStatusPaid,
		CreatedAt: at(4, 12),
		Items:     []entity.OrderItem{{ProductID: danglingID, Quantity: 1, Price: dec(40)}},
	})

	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)
	assert.NotContains(t, res.ByCategory, "Decoys")
	assert.Equal(t, "40", res.ByCategory[entity.UncategorizedLabel].Revenue.String())
	assert.Contains(t, res.ByProduct, "name:"+danglingID)
}

func TestAggregateSynonymCollapse(t *testing.T) {
	s := seed()
	s.AddOrders(entity.Order{
		ID:        "o1",
		Status:    entity.OrderStatusShipped,
		CreatedAt: at(5, 8),
		Items:     []entity.OrderItem{{ProductID: "pan", Quantity: 1, Price: dec(55)}},
	})

	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)
	require.Contains(t, res.ByCategory, "Kitchen")
	assert.Equal(t, "55", res.ByCategory["Kitchen"].Revenue.String())
}

func TestAggregateStatusesAndWindow(t *testing.T) {
	s := seed()
	item := []entity.OrderItem{{ProductID: "trail-runner", Quantity: 1, Price: dec(100)}}
	s.AddOrders(
		entity.Order{ID: "paid", Status: entity.OrderStatusPaid, CreatedAt: at(1, 0), Items: item},
		entity.Order{ID: "new", Status: entity.OrderStatusNew, CreatedAt: at(2, 0), Items: item},
		entity.Order{ID: "cancelled", Status: entity.OrderStatusCancelled, CreatedAt: at(2, 0), Items: item},
		entity.Order{ID: "last-tick", Status: entity.OrderStatusPaid, CreatedAt: window.To, Items: item},
		entity.Order{ID: "after", Status: entity.OrderStatusPaid, CreatedAt: window.To.Add(entity.TimeTick), Items: item},
		entity.Order{ID: "before", Status: entity.OrderStatusPaid, CreatedAt: window.From.Add(-entity.TimeTick), Items: item},
		entity.Order{ID: "undated", Status: entity.OrderStatusPaid, Items: item},
	)

	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Totals.Orders)
	assert.Equal(t, 2, res.Totals.RevenueOrders)
	assert.Equal(t, "200", res.Totals.Revenue.String())
	assert.Equal(t, "100", res.Totals.AvgOrderValue().String())
	assert.Equal(t, 1, res.ByStatus[entity.OrderStatusNew])
	assert.Zero(t, res.ByStatus[entity.OrderStatusCancelled])

	revenueOnly, err := newAggregator(s).Aggregate(context.Background(), window, entity.RevenueFilter())
	require.NoError(t, err)
	assert.Equal(t, 2, revenueOnly.Totals.Orders)
	assert.Equal(t, "200", revenueOnly.Totals.Revenue.String())
}

func TestAggregateIsIdempotent(t *testing.T) {
	s := seed()
	for d := 1; d <= 7; d++ {
		s.AddOrders(entity.Order{
			ID:        "o",
			Status:    entity.OrderStatusPaid,
			CreatedAt: at(d, d),
			Items: []entity.OrderItem{
				{ProductID: "trail-runner", Quantity: int64(d), Price: dec(100)},
				{Name: "Mystery Gadget", Quantity: 1, Price: dec(5)},
			},
		})
	}
	a := newAggregator(s)

	first, err := a.Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)
	second, err := a.Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)

	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.ByCategory, second.ByCategory)
	assert.Equal(t, "2835", first.Totals.Revenue.String())
}

func TestAggregateDayAndHourBuckets(t *testing.T) {
	s := seed()
	item := []entity.OrderItem{{ProductID: "trail-runner", Quantity: 1, Price: dec(100)}}
	s.AddOrders(
		entity.Order{ID: "a", Status: entity.OrderStatusPaid, CreatedAt: at(2, 10), Items: item},
		entity.Order{ID: "b", Status: entity.OrderStatusPaid, CreatedAt: at(2, 10).Add(30 * time.Minute), Items: item},
		entity.Order{ID: "c", Status: entity.OrderStatusNew, CreatedAt: at(4, 23), Items: item},
	)

	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)

	days := FillDays(res)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Equal(t, "2024-03-07", days[6].Date)
	assert.Equal(t, 2, days[1].Orders)
	assert.Equal(t, "200", days[1].Revenue.String())
	assert.Equal(t, 1, days[3].Orders)
	assert.True(t, days[3].Revenue.IsZero())
	assert.True(t, days[0].Revenue.IsZero())

	hours := Hourly(res)
	require.Len(t, hours, 24)
	assert.Equal(t, 2, hours[10].Orders)
	assert.Equal(t, 1, hours[23].Orders)

	assert.Len(t, Visitors(res), 7)
	require.Len(t, res.Recent, 3)
	assert.Equal(t, "c", res.Recent[0].ID)
	assert.Equal(t, "100", res.Recent[0].Total.String())
}

func TestAggregateProductStoreFailureAddsNotice(t *testing.T) {
	s := seed()
	s.AddOrders(entity.Order{
		ID:        "o1",
		Status:    entity.OrderStatusPaid,
		CreatedAt: at(2, 10),
		Items: []entity.OrderItem{
			{ProductID: "trail-runner", Quantity: 2, Price: dec(100)},
			{ProductID: "other", Quantity: 1, Price: dec(10)},
		},
	})
	a := New(s.Orders(), resolve.NewResolver(downProducts{}), resolve.NewCategoryNormalizer(s.Categories(), nil))

	res, err := a.Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)
	assert.Equal(t, "210", res.Totals.Revenue.String())
	assert.Equal(t, 2, res.Totals.Unresolved)
	assert.Len(t, res.Notices, 1)
}

func TestPairFailsIndependently(t *testing.T) {
	s := seed()
	s.AddOrders(entity.Order{
		ID:        "o1",
		Status:    entity.OrderStatusPaid,
		CreatedAt: at(2, 10),
		Items:     []entity.OrderItem{{ProductID: "trail-runner", Quantity: 1, Price: dec(100)}},
	})
	prev := period.Previous(window)
	orders := &failingWindow{Orders: s.Orders(), fail: prev}
	a := New(orders, resolve.NewResolver(s.Products()), resolve.NewCategoryNormalizer(s.Categories(), nil))

	cur, prevRes, curErr, prevErr := a.Pair(context.Background(), window, prev, entity.CountedFilter())
	require.NoError(t, curErr)
	require.Error(t, prevErr)
	assert.Nil(t, prevRes)
	assert.Equal(t, "100", cur.Totals.Revenue.String())
}

func TestProductsIncludePreviousOnly(t *testing.T) {
	s := seed()
	prev := period.Previous(window)
	s.AddOrders(
		entity.Order{ID: "now", Status: entity.OrderStatusPaid, CreatedAt: at(2, 10),
			Items: []entity.OrderItem{{ProductID: "trail-runner", Quantity: 3, Price: dec(100)}}},
		entity.Order{ID: "then", Status: entity.OrderStatusPaid, CreatedAt: prev.From.Add(time.Hour),
			Items: []entity.OrderItem{
				{ProductID: "trail-runner", Quantity: 2, Price: dec(100)},
				{ProductID: "pan", Quantity: 1, Price: dec(50)},
			}},
	)
	a := newAggregator(s)
	cur, prevRes, curErr, prevErr := a.Pair(context.Background(), window, prev, entity.CountedFilter())
	require.NoError(t, curErr)
	require.NoError(t, prevErr)

	rows := Products(cur, prevRes)
	require.Len(t, rows, 2)
	assert.Equal(t, "Trail Runner", rows[0].Name)
	assert.Equal(t, "+50.0%", rows[0].Growth)
	assert.Equal(t, "Cast Iron Pan", rows[1].Name)
	assert.True(t, rows[1].Revenue.IsZero())
	assert.Equal(t, "-100.0%", rows[1].Growth)

	cats := Categories(cur, prevRes)
	require.Len(t, cats, 2)
	assert.Equal(t, "Shoes", cats[0].Category)
	assert.Equal(t, 100.0, cats[0].Share)
	assert.Equal(t, "Kitchen", cats[1].Category)
	assert.Equal(t, "-100.0%", cats[1].Growth)
}

func TestFunnelAndCohorts(t *testing.T) {
	s := seed()
	item := []entity.OrderItem{{ProductID: "trail-runner", Quantity: 1, Price: dec(10)}}
	s.AddOrders(
		entity.Order{ID: "1", Status: entity.OrderStatusNew, CreatedAt: at(1, 1), CustomerID: "a", Items: item},
		entity.Order{ID: "2", Status: entity.OrderStatusPaid, CreatedAt: at(1, 2), CustomerID: "a", Items: item},
		entity.Order{ID: "3", Status: entity.OrderStatusDelivered, CreatedAt: at(2, 2), CustomerID: "b", Items: item},
		entity.Order{ID: "4", Status: entity.OrderStatusCancelled, CreatedAt: at(2, 3), CustomerID: "c", Items: item},
	)
	res, err := newAggregator(s).Aggregate(context.Background(), window, entity.CountedFilter())
	require.NoError(t, err)

	funnel := Funnel(res)
	require.Len(t, funnel, 5)
	assert.Equal(t, "new", funnel[0].Stage)
	assert.Equal(t, 3, funnel[0].Count)
	assert.Equal(t, 100.0, funnel[0].Percentage)
	assert.Equal(t, 2, funnel[1].Count)
	assert.Equal(t, 2, funnel[2].Count)
	assert.Equal(t, 1, funnel[4].Count)
	assert.Equal(t, 33.3, funnel[4].Percentage)

	cohorts := Cohorts(res)
	require.Len(t, cohorts, 1)
	assert.Equal(t, "2024-03", cohorts[0].Cohort)
	assert.Equal(t, 2, cohorts[0].Customers)
	assert.Equal(t, 2, cohorts[0].Orders)
	assert.Equal(t, "20", cohorts[0].Revenue.String())
}

var errDown = errors.New("store down")

type downProducts struct{ dependency.Products }

func (downProducts) FindProductByID(context.Context, string) (*entity.Product, error) {
	return nil, errDown
}

func (downProducts) FindProductBySlug(context.Context, string) (*entity.Product, error) {
	return nil, errDown
}

type failingWindow struct {
	dependency.Orders
	fail entity.TimeRange
}

func (f *failingWindow) FindOrders(ctx context.Context, tr entity.TimeRange, filter entity.OrderFilter) ([]entity.Order, error) {
	if tr == f.fail {
		return nil, errDown
	}
	return f.Orders.FindOrders(ctx, tr, filter)
}
