package store

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents in the source collections are loosely typed. The helpers below
// read a field whatever BSON type it was stored with.

func stringOf(v any) string {
	switch tv := v.(type) {
	case string:
		return strings.TrimSpace(tv)
	case primitive.ObjectID:
		return tv.Hex()
	case int32:
		return strconv.FormatInt(int64(tv), 10)
	case int64:
		return strconv.FormatInt(tv, 10)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case primitive.Decimal128:
		return tv.String()
	default:
		return ""
	}
}

func decimalOf(v any) decimal.Decimal {
	switch tv := v.(type) {
	case float64:
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(tv)
	case int32:
		return decimal.NewFromInt(int64(tv))
	case int64:
		return decimal.NewFromInt(tv)
	case primitive.Decimal128:
		d, err := decimal.NewFromString(tv.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(tv))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func intOf(v any) int64 {
	return decimalOf(v).IntPart()
}

// timeOf returns the first usable timestamp among fields.
func timeOf(doc bson.M, fields ...string) time.Time {
	for _, f := range fields {
		if t, ok := entity.CoerceTime(doc[f]); ok {
			return t
		}
	}
	return time.Time{}
}

// firstString returns the first non-empty string among fields. Embedded
// documents contribute their _id, id or email.
func firstString(doc bson.M, fields ...string) string {
	for _, f := range fields {
		v := doc[f]
		if m, ok := v.(bson.M); ok {
			if s := firstString(m, "_id", "id", "email"); s != "" {
				return s
			}
			continue
		}
		if s := stringOf(v); s != "" {
			return s
		}
	}
	return ""
}

var (
	orderDateFields  = []string{"createdAt", "created_at", "date", "orderDate"}
	orderCustomerIDs = []string{"customerId", "userId", "user", "customerEmail", "email"}
)

func decodeOrder(doc bson.M) entity.Order {
	o := entity.Order{
		ID:         stringOf(doc["_id"]),
		Status:     entity.ParseOrderStatus(stringOf(doc["status"])),
		CreatedAt:  timeOf(doc, orderDateFields...),
		Total:      decimalOf(doc["total"]),
		CustomerID: firstString(doc, orderCustomerIDs...),
	}
	items, _ := doc["items"].(bson.A)
	for _, raw := range items {
		it, ok := raw.(bson.M)
		if !ok {
			continue
		}
		o.Items = append(o.Items, entity.OrderItem{
			ProductID: firstString(it, "productId", "product"),
			Name:      stringOf(it["name"]),
			Quantity:  intOf(it["quantity"]),
			Price:     decimalOf(it["price"]),
		})
	}
	return o
}

func decodeProduct(doc bson.M) *entity.Product {
	p := &entity.Product{
		ID:    stringOf(doc["_id"]),
		Slug:  stringOf(doc["slug"]),
		SKU:   stringOf(doc["sku"]),
		Name:  stringOf(doc["name"]),
		Stock: intOf(doc["stock"]),
	}
	switch c := doc["category"].(type) {
	case bson.M:
		p.Category = firstString(c, "_id", "id", "name")
	default:
		p.Category = stringOf(c)
	}
	return p
}

func decodeCategory(doc bson.M) *entity.Category {
	return &entity.Category{
		ID:   stringOf(doc["_id"]),
		Name: stringOf(doc["name"]),
	}
}
