// Package aggregate folds the orders of a window into revenue, order and unit
// totals keyed by category, day, product, status and customer.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics/period"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/resolve"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RecentLimit is the number of latest orders kept in Result.Recent.
const RecentLimit = 10

// Bucket is a revenue, order and unit accumulator.
type Bucket struct {
	Revenue decimal.Decimal
	Orders  int
	Units   int64
}

// ProductBucket accumulates one product, or one unresolved item name.
type ProductBucket struct {
	Bucket
	Key       string
	ProductID string
	Name      string
	Category  string
	Resolved  bool
}

// CustomerBucket tracks a customer's first order inside the window.
type CustomerBucket struct {
	FirstOrder time.Time
	Orders     int
	Revenue    decimal.Decimal
}

// Totals are window-wide sums. Orders counts every matched order,
// RevenueOrders only those in a revenue status.
type Totals struct {
	Revenue       decimal.Decimal
	Orders        int
	RevenueOrders int
	Units         int64
	Items         int
	Unresolved    int
}

// AvgOrderValue returns revenue per revenue order.
func (t Totals) AvgOrderValue() decimal.Decimal {
	if t.RevenueOrders == 0 {
		return decimal.Zero
	}
	return t.Revenue.Div(decimal.NewFromInt(int64(t.RevenueOrders))).Round(2)
}

// ItemsPerOrder returns units per revenue order.
func (t Totals) ItemsPerOrder() decimal.Decimal {
	if t.RevenueOrders == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(t.Units).Div(decimal.NewFromInt(int64(t.RevenueOrders))).Round(2)
}

// Result is the outcome of one aggregation pass.
type Result struct {
	Window     entity.TimeRange
	Totals     Totals
	ByCategory map[string]*Bucket
	ByDay      map[string]*Bucket
	ByHour     [24]Bucket
	ByProduct  map[string]*ProductBucket
	ByStatus   map[entity.OrderStatus]int
	Customers  map[string]*CustomerBucket
	Recent     []entity.RecentOrder
	Notices    []string
}

func newResult(tr entity.TimeRange) *Result {
	return &Result{
		Window:     tr,
		ByCategory: map[string]*Bucket{},
		ByDay:      map[string]*Bucket{},
		ByProduct:  map[string]*ProductBucket{},
		ByStatus:   map[entity.OrderStatus]int{},
		Customers:  map[string]*CustomerBucket{},
	}
}

// Empty returns a zero result for tr. Assemblers use it in place of a failed section.
func Empty(tr entity.TimeRange) *Result {
	return newResult(tr)
}

// Aggregator reads orders and attributes their items to products and categories.
type Aggregator struct {
	orders     dependency.Orders
	resolver   *resolve.Resolver
	normalizer *resolve.CategoryNormalizer
}

// New returns an aggregator over the given collaborators.
func New(orders dependency.Orders, resolver *resolve.Resolver, normalizer *resolve.CategoryNormalizer) *Aggregator {
	return &Aggregator{
		orders:     orders,
		resolver:   resolver,
		normalizer: normalizer,
	}
}

// Aggregate folds every order with createdAt inside tr and a status matching
// filter. Orders count toward order totals; only orders in a revenue status
// contribute revenue, units and product or category rows. An order store error
// fails the pass. Catalog lookup errors leave the item unresolved and add a notice.
func (a *Aggregator) Aggregate(ctx context.Context, tr entity.TimeRange, filter entity.OrderFilter) (*Result, error) {
	orders, err := a.orders.FindOrders(ctx, tr, filter)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	p := &pass{
		Aggregator: a,
		res:        newResult(tr),
		loc:        tr.From.Location(),
		products:   map[resolve.Reference]resolved{},
		categories: map[string]string{},
		notices:    map[string]bool{},
	}
	for i := range orders {
		if !orders[i].HasDate() || !tr.Contains(orders[i].CreatedAt) || !filter.Match(orders[i].Status) {
			continue
		}
		p.add(ctx, &orders[i])
	}
	p.finish()
	return p.res, nil
}

// Pair aggregates cur and prev concurrently. Each window reports its own
// error; one failing does not cancel the other. A panic in either pass is
// returned as gerr.ErrSectionPanic.
func (a *Aggregator) Pair(ctx context.Context, cur, prev entity.TimeRange, filter entity.OrderFilter) (curRes, prevRes *Result, curErr, prevErr error) {
	var g errgroup.Group
	g.Go(func() error {
		defer recovered(&curErr)
		curRes, curErr = a.Aggregate(ctx, cur, filter)
		return nil
	})
	g.Go(func() error {
		defer recovered(&prevErr)
		prevRes, prevErr = a.Aggregate(ctx, prev, filter)
		return nil
	})
	_ = g.Wait()
	return curRes, prevRes, curErr, prevErr
}

func recovered(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", gerr.ErrSectionPanic, r)
	}
}

type resolved struct {
	product  *entity.Product
	category string
}

// pass is the per-call accumulator. Nothing in it outlives Aggregate.
type pass struct {
	*Aggregator
	res        *Result
	loc        *time.Location
	products   map[resolve.Reference]resolved
	categories map[string]string
	notices    map[string]bool
}

func (p *pass) add(ctx context.Context, o *entity.Order) {
	r := p.res
	r.Totals.Orders++
	r.ByStatus[o.Status]++

	day := p.day(o.CreatedAt)
	day.Orders++
	r.ByHour[o.CreatedAt.In(p.loc).Hour()].Orders++

	p.recent(o)

	if !o.Status.IsRevenue() {
		return
	}
	r.Totals.RevenueOrders++

	var orderRevenue decimal.Decimal
	var orderUnits int64
	seenCategory := map[string]bool{}
	seenProduct := map[string]bool{}
	for i := range o.Items {
		it := &o.Items[i]
		line := it.LineTotal()
		u := it.Units()
		orderRevenue = orderRevenue.Add(line)
		orderUnits += u

		r.Totals.Items++
		r.Totals.Units += u

		res := p.resolve(ctx, it)
		if res.product == nil {
			r.Totals.Unresolved++
		}

		c := r.ByCategory[res.category]
		if c == nil {
			c = &Bucket{}
			r.ByCategory[res.category] = c
		}
		c.Revenue = c.Revenue.Add(line)
		c.Units += u
		if !seenCategory[res.category] {
			seenCategory[res.category] = true
			c.Orders++
		}

		pb := p.product(it, res)
		pb.Revenue = pb.Revenue.Add(line)
		pb.Units += u
		if !seenProduct[pb.Key] {
			seenProduct[pb.Key] = true
			pb.Orders++
		}
	}

	r.Totals.Revenue = r.Totals.Revenue.Add(orderRevenue)
	day.Revenue = day.Revenue.Add(orderRevenue)
	day.Units += orderUnits
	h := &r.ByHour[o.CreatedAt.In(p.loc).Hour()]
	h.Revenue = h.Revenue.Add(orderRevenue)
	h.Units += orderUnits

	if o.CustomerID != "" {
		cb := r.Customers[o.CustomerID]
		if cb == nil {
			cb = &CustomerBucket{FirstOrder: o.CreatedAt}
			r.Customers[o.CustomerID] = cb
		}
		if o.CreatedAt.Before(cb.FirstOrder) {
			cb.FirstOrder = o.CreatedAt
		}
		cb.Orders++
		cb.Revenue = cb.Revenue.Add(orderRevenue)
	}
}

func (p *pass) day(t time.Time) *Bucket {
	key := period.DayKey(t, p.loc)
	b := p.res.ByDay[key]
	if b == nil {
		b = &Bucket{}
		p.res.ByDay[key] = b
	}
	return b
}

func (p *pass) recent(o *entity.Order) {
	if !o.Status.IsCounted() {
		return
	}
	total := o.Total
	if total.IsZero() {
		for i := range o.Items {
			total = total.Add(o.Items[i].LineTotal())
		}
	}
	p.res.Recent = append(p.res.Recent, entity.RecentOrder{
		ID:        o.ID,
		Status:    o.Status,
		Total:     total,
		Items:     len(o.Items),
		CreatedAt: o.CreatedAt,
	})
}

func (p *pass) product(it *entity.OrderItem, res resolved) *ProductBucket {
	var pb *ProductBucket
	if res.product != nil {
		key := res.product.ID
		pb = p.res.ByProduct[key]
		if pb == nil {
			pb = &ProductBucket{
				Key:       key,
				ProductID: res.product.ID,
				Name:      res.product.Name,
				Category:  res.category,
				Resolved:  true,
			}
			p.res.ByProduct[key] = pb
		}
		return pb
	}

	name := strings.TrimSpace(it.Name)
	if name == "" {
		name = strings.TrimSpace(it.ProductID)
	}
	key := "name:" + strings.ToLower(name)
	pb = p.res.ByProduct[key]
	if pb == nil {
		pb = &ProductBucket{
			Key:      key,
			Name:     name,
			Category: res.category,
		}
		p.res.ByProduct[key] = pb
	}
	return pb
}

// resolve attributes an item to a product and a category display name.
// Results are memoized for the rest of the pass.
func (p *pass) resolve(ctx context.Context, it *entity.OrderItem) resolved {
	ref := resolve.Reference{
		ProductID: strings.TrimSpace(it.ProductID),
		ItemName:  strings.TrimSpace(it.Name),
	}
	if r, ok := p.products[ref]; ok {
		return r
	}

	res := resolved{category: entity.UncategorizedLabel}
	m, err := p.resolver.Resolve(ctx, ref)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't resolve order item",
			slog.String("productId", ref.ProductID),
			slog.String("err", err.Error()),
		)
		p.notice("product catalog unavailable, some items are reported as unresolved")
	}
	if m.Product != nil {
		res.product = m.Product
		res.category = p.category(ctx, m.Product.Category)
	}
	p.products[ref] = res
	return res
}

func (p *pass) category(ctx context.Context, raw string) string {
	if c, ok := p.categories[raw]; ok {
		return c
	}
	name, err := p.normalizer.Normalize(ctx, raw)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't normalize category",
			slog.String("category", raw),
			slog.String("err", err.Error()),
		)
		p.notice("category catalog unavailable, some categories may be incomplete")
	}
	p.categories[raw] = name
	return name
}

func (p *pass) notice(msg string) {
	if p.notices[msg] {
		return
	}
	p.notices[msg] = true
	p.res.Notices = append(p.res.Notices, msg)
}

func (p *pass) finish() {
	rec := p.res.Recent
	sort.SliceStable(rec, func(i, j int) bool {
		return rec[i].CreatedAt.After(rec[j].CreatedAt)
	})
	if len(rec) > RecentLimit {
		rec = rec[:RecentLimit]
	}
	p.res.Recent = rec
}
