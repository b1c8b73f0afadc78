package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of a storefront order.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// RevenueStatuses are the statuses that denote realized revenue.
var RevenueStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// FunnelStatuses is the order progression used by the status funnel, in order.
var FunnelStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// ParseOrderStatus normalizes a stored status value. Unknown values are kept as is
// (lowercased) so they still count as non-cancelled orders.
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

func (os OrderStatus) String() string {
	return string(os)
}

// IsRevenue reports whether orders in this status contribute to revenue sums.
func (os OrderStatus) IsRevenue() bool {
	for _, s := range RevenueStatuses {
		if os == s {
			return true
		}
	}
	return false
}

// IsCounted reports whether orders in this status contribute to order counts.
func (os OrderStatus) IsCounted() bool {
	return os != OrderStatusCancelled
}

// FunnelStage returns the position of the status in FunnelStatuses or -1.
func (os OrderStatus) FunnelStage() int {
	for i, s := range FunnelStatuses {
		if os == s {
			return i
		}
	}
	return -1
}

// OrderFilter selects orders by status. Empty Statuses means any status.
type OrderFilter struct {
	Statuses        []OrderStatus
	ExcludeStatuses []OrderStatus
}

// RevenueFilter selects orders that contribute to revenue.
func RevenueFilter() OrderFilter {
	return OrderFilter{Statuses: RevenueStatuses}
}

// CountedFilter selects every order except cancelled ones.
func CountedFilter() OrderFilter {
	return OrderFilter{ExcludeStatuses: []OrderStatus{OrderStatusCancelled}}
}

// Match reports whether status passes the filter.
func (f OrderFilter) Match(status OrderStatus) bool {
	for _, s := range f.ExcludeStatuses {
		if s == status {
			return false
		}
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order is a storefront order as read from the orders collection.
// CreatedAt is zero when no usable date could be derived from the document.
type Order struct {
	ID         string
	Status     OrderStatus
	CreatedAt  time.Time
	Items      []OrderItem
	Total      decimal.Decimal
	CustomerID string
}

// HasDate reports whether the order can take part in date-bounded aggregation.
func (o *Order) HasDate() bool {
	return ValidTime(o.CreatedAt)
}

// OrderItem is a line item embedded in an order. ProductID is an untyped
// reference: canonical id, slug, sku, literal product name or empty.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int64
	Price     decimal.Decimal
}

// LineTotal returns quantity * price with negative inputs clamped to zero.
func (oi *OrderItem) LineTotal() decimal.Decimal {
	q := oi.Quantity
	if q < 0 {
		q = 0
	}
	p := oi.Price
	if p.IsNegative() {
		p = decimal.Zero
	}
	return p.Mul(decimal.NewFromInt(q))
}

// Units returns the item quantity clamped to zero.
func (oi *OrderItem) Units() int64 {
	if oi.Quantity < 0 {
		return 0
	}
	return oi.Quantity
}
