package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// Fixture is the JSON layout accepted by LoadFixture. Dates and prices use the
// same loose formats the document store tolerates.
type Fixture struct {
	Categories []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
	Products []struct {
		ID       string `json:"id"`
		Slug     string `json:"slug"`
		SKU      string `json:"sku"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Stock    int64  `json:"stock"`
	} `json:"products"`
	Orders []struct {
		ID         string          `json:"id"`
		Status     string          `json:"status"`
		CreatedAt  string          `json:"createdAt"`
		CustomerID string          `json:"customerId"`
		Total      decimal.Decimal `json:"total"`
		Items      []struct {
			ProductID string          `json:"productId"`
			Name      string          `json:"name"`
			Quantity  int64           `json:"quantity"`
			Price     decimal.Decimal `json:"price"`
		} `json:"items"`
	} `json:"orders"`
}

// LoadFixture reads a JSON fixture file into a new store.
func LoadFixture(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	s := New()
	for _, c := range f.Categories {
		s.AddCategories(entity.Category{ID: c.ID, Name: c.Name})
	}
	for _, p := range f.Products {
		s.AddProducts(entity.Product{
			ID:       p.ID,
			Slug:     p.Slug,
			SKU:      p.SKU,
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.Stock,
		})
	}
	for _, o := range f.Orders {
		createdAt, _ := entity.ParseTime(o.CreatedAt)
		order := entity.Order{
			ID:         o.ID,
			Status:     entity.ParseOrderStatus(o.Status),
			CreatedAt:  createdAt,
			Total:      o.Total,
			CustomerID: o.CustomerID,
		}
		for _, it := range o.Items {
			order.Items = append(order.Items, entity.OrderItem{
				ProductID: it.ProductID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}
		s.AddOrders(order)
	}
	return s, nil
}
