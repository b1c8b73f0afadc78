// Package resolve attributes order line items to catalog products and
// products to category display names.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// Reference is the raw product reference carried by an order line item.
type Reference struct {
	ProductID string
	ItemName  string
}

func (r Reference) id() string   { return strings.TrimSpace(r.ProductID) }
func (r Reference) name() string { return strings.TrimSpace(r.ItemName) }

// Strategy is one entry of the product matching table.
type Strategy struct {
	Name    string
	Applies func(ref Reference) bool
	Lookup  func(ctx context.Context, products dependency.Products, ref Reference) (*entity.Product, error)
}

// textID reports whether the raw reference is usable as a slug, sku or name.
// An id-shaped value that missed the id lookup is not a meaningful text key.
func textID(ref Reference) bool {
	id := ref.id()
	return id != "" && !entity.IsObjectIDHex(id)
}

func hasItemName(ref Reference) bool {
	return ref.name() != ""
}

// DefaultStrategies is the matching order: structural identifiers before
// textual ones, exact text before fuzzy text.
var DefaultStrategies = []Strategy{
	{
		Name:    "id",
		Applies: func(ref Reference) bool { return entity.IsObjectIDHex(ref.id()) },
		Lookup: func(ctx context.Context, p dependency.Products, ref Reference) (*entity.Product, error) {
			return p.FindProductByID(ctx, strings.ToLower(ref.id()))
		},
	},
	{
		Name:    "slug",
		Applies: textID,
		Lookup: func(ctx context.Context, p dependency.Products, ref Reference) (*entity.Product, error) {
			return p.FindProductBySlug(ctx, ref.id())
		},
	},
	{
		Name:    "sku",
		Applies: textID,
		Lookup: func(ctx context.Context, p dependency.Products, ref Reference) (*entity.Product, error) {
			return p.FindProductBySKU(ctx, ref.id())
		},
	},
	{
		Name:    "name",
		Applies: textID,
		Lookup: func(ctx context.Context, p dependency.Products, ref Reference) (*entity.Product, error) {
			return p.FindProductByName(ctx, ref.id())
		},
	},
	{
		Name:    "item_name",
		Applies: hasItemName,
		Lookup: func(ctx context.Context, p dependency.Products, ref Reference) (*entity.Product, error) {
			return p.FindProductByName(ctx, ref.name())
		},
	},
	{
		Name:    "fuzzy_name",
		Applies: hasItemName,
		Lookup: func(ctx context.Context, p dependency.Products, ref Reference) (*entity.Product, error) {
			return p.FindProductByNamePattern(ctx, FuzzyPattern(ref.name()))
		},
	},
}

// FuzzyPattern builds a pattern matching names that contain every word of
// text in order, e.g. "Blue T-Shirt" -> "Blue.*T-Shirt".
func FuzzyPattern(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, ".*")
}

// Match is the outcome of resolving a reference. Product is nil when the
// reference is unresolved.
type Match struct {
	Product  *entity.Product
	Strategy string
}

// Resolver matches line item references against the product catalog.
type Resolver struct {
	products   dependency.Products
	strategies []Strategy
}

// NewResolver returns a resolver using DefaultStrategies unless strategies are given.
func NewResolver(products dependency.Products, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Resolver{
		products:   products,
		strategies: strategies,
	}
}

// Resolve tries every applicable strategy in order and returns on the first
// hit. A store error stops the cascade; the caller decides how to degrade.
func (r *Resolver) Resolve(ctx context.Context, ref Reference) (Match, error) {
	for _, s := range r.strategies {
		if !s.Applies(ref) {
			continue
		}
		p, err := s.Lookup(ctx, r.products, ref)
		if err != nil {
			return Match{}, fmt.Errorf("product lookup by %s: %w", s.Name, err)
		}
		if p != nil {
			return Match{Product: p, Strategy: s.Name}, nil
		}
	}
	return Match{}, nil
}
