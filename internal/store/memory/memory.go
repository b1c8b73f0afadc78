// Package memory is an in-process implementation of the store contracts. It
// backs the tests and the --memory development mode.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// Store keeps orders, products and categories in memory.
type Store struct {
	mu         sync.RWMutex
	orders     []entity.Order
	products   []entity.Product
	categories []entity.Category
}

var _ dependency.Repository = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// AddOrders appends orders.
func (s *Store) AddOrders(orders ...entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, orders...)
}

// AddProducts appends products. Ids are stored lowercased.
func (s *Store) AddProducts(products ...entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		p.ID = strings.ToLower(p.ID)
		s.products = append(s.products, p)
	}
}

// AddCategories appends categories. Ids are stored lowercased.
func (s *Store) AddCategories(categories ...entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		c.ID = strings.ToLower(c.ID)
		s.categories = append(s.categories, c)
	}
}

func (s *Store) Orders() dependency.Orders         { return &orderStore{s} }
func (s *Store) Products() dependency.Products     { return &productStore{s} }
func (s *Store) Categories() dependency.Categories { return &categoryStore{s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}

type orderStore struct{ *Store }

func (s *orderStore) FindOrders(ctx context.Context, tr entity.TimeRange, filter entity.OrderFilter) ([]entity.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []entity.Order
	for _, o := range s.orders {
		if !o.HasDate() || !tr.Contains(o.CreatedAt) || !filter.Match(o.Status) {
			continue
		}
		o.Items = append([]entity.OrderItem(nil), o.Items...)
		res = append(res, o)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (s *orderStore) CountOrders(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, o := range s.orders {
		if o.Status.IsCounted() {
			n++
		}
	}
	return n, nil
}

type productStore struct{ *Store }

func (s *productStore) findFirst(ctx context.Context, match func(p *entity.Product) bool) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if match(&s.products[i]) {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (s *productStore) FindProductByID(ctx context.Context, id string) (*entity.Product, error) {
	id = strings.ToLower(id)
	return s.findFirst(ctx, func(p *entity.Product) bool { return p.ID == id })
}

func (s *productStore) FindProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return s.findFirst(ctx, func(p *entity.Product) bool { return p.Slug != "" && strings.EqualFold(p.Slug, slug) })
}

func (s *productStore) FindProductBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return s.findFirst(ctx, func(p *entity.Product) bool { return p.SKU != "" && strings.EqualFold(p.SKU, sku) })
}

func (s *productStore) FindProductByName(ctx context.Context, name string) (*entity.Product, error) {
	return s.findFirst(ctx, func(p *entity.Product) bool { return p.Name != "" && strings.EqualFold(p.Name, name) })
}

func (s *productStore) FindProductByNamePattern(ctx context.Context, pattern string) (*entity.Product, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern: %w", err)
	}
	return s.findFirst(ctx, func(p *entity.Product) bool { return re.MatchString(p.Name) })
}

func (s *productStore) CountProducts(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *productStore) FindLowStockProducts(ctx context.Context, threshold int64, limit int) ([]entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []entity.Product
	for _, p := range s.products {
		if p.Stock <= threshold {
			res = append(res, p)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Stock < res[j].Stock
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

type categoryStore struct{ *Store }

func (s *categoryStore) find(ctx context.Context, match func(c *entity.Category) bool) (*entity.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.categories {
		if match(&s.categories[i]) {
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *categoryStore) FindCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	id = strings.ToLower(id)
	return s.find(ctx, func(c *entity.Category) bool { return c.ID == id })
}

func (s *categoryStore) FindCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	return s.find(ctx, func(c *entity.Category) bool { return strings.EqualFold(c.Name, name) })
}

func (s *categoryStore) CountCategories(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.categories)), nil
}
