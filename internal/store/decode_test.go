package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodeOrderLooseTypes(t *testing.T) {
	oid := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	price, err := primitive.ParseDecimal128("19.90")
	require.NoError(t, err)

	doc := bson.M{
		"_id":       oid,
		"status":    " PAID ",
		"createdAt": "2024-03-02T10:00:00Z",
		"total":     "59.70",
		"user":      bson.M{"_id": "u-1", "email": "a@b.c"},
		"items": bson.A{
			bson.M{"productId": productID, "name": "Trail Runner", "quantity": int32(3), "price": price},
			bson.M{"productId": int64(42), "name": "Legacy", "quantity": 1.0, "price": "5"},
			bson.M{"product": "trail-runner", "quantity": "2", "price": 10.5},
			"garbage",
		},
	}

	o := decodeOrder(doc)
	assert.Equal(t, oid.Hex(), o.ID)
	assert.Equal(t, entity.OrderStatusPaid, o.Status)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), o.CreatedAt)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("59.70")))
	assert.Equal(t, "u-1", o.CustomerID)

	require.Len(t, o.Items, 3)
	assert.Equal(t, productID.Hex(), o.Items[0].ProductID)
	assert.Equal(t, int64(3), o.Items[0].Quantity)
	assert.Equal(t, "19.9", o.Items[0].Price.String())
	assert.Equal(t, "42", o.Items[1].ProductID)
	assert.Equal(t, int64(1), o.Items[1].Quantity)
	assert.Equal(t, "trail-runner", o.Items[2].ProductID)
	assert.Equal(t, int64(2), o.Items[2].Quantity)
	assert.Equal(t, "10.5", o.Items[2].Price.String())
}

func TestDecodeOrderDateFallbacks(t *testing.T) {
	want := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		doc  bson.M
		ok   bool
	}{
		{"native", bson.M{"createdAt": primitive.NewDateTimeFromTime(want)}, true},
		{"epoch millis", bson.M{"createdAt": want.UnixMilli()}, true},
		{"snake case", bson.M{"created_at": "2024-03-02 10:00:00"}, true},
		{"order date", bson.M{"createdAt": "", "orderDate": "2024-03-02T10:00:00Z"}, true},
		{"epoch zero", bson.M{"createdAt": int64(0)}, false},
		{"garbage", bson.M{"createdAt": "yesterday"}, false},
		{"missing", bson.M{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := decodeOrder(tt.doc)
			assert.Equal(t, tt.ok, o.HasDate())
			if tt.ok {
				assert.True(t, want.Equal(o.CreatedAt), o.CreatedAt)
			}
		})
	}
}

func TestDecodeProductCategory(t *testing.T) {
	catID := primitive.NewObjectID()

	p := decodeProduct(bson.M{"_id": "p1", "name": "Pan", "category": catID, "stock": int32(4)})
	assert.Equal(t, catID.Hex(), p.Category)
	assert.Equal(t, int64(4), p.Stock)

	p = decodeProduct(bson.M{"_id": "p2", "category": bson.M{"name": "Shoes"}})
	assert.Equal(t, "Shoes", p.Category)

	p = decodeProduct(bson.M{"_id": "p3", "category": "  Home and Kitchen "})
	assert.Equal(t, "Home and Kitchen", p.Category)

	p = decodeProduct(bson.M{"_id": "p4"})
	assert.Equal(t, "", p.Category)
}

func TestDecimalOf(t *testing.T) {
	assert.True(t, decimalOf("abc").IsZero())
	assert.True(t, decimalOf(nil).IsZero())
	assert.Equal(t, "12", decimalOf(int32(12)).String())
	assert.Equal(t, "0.1", decimalOf(0.1).String())
}

func TestExactFold(t *testing.T) {
	re := exactFold("Blue T-Shirt (XL)")
	assert.Equal(t, "i", re.Options)

	compiled := regexp.MustCompile("(?i)" + re.Pattern)
	assert.True(t, compiled.MatchString("blue t-shirt (xl)"))
	assert.False(t, compiled.MatchString("Premium Blue T-Shirt (XL)"))
}

func TestIDQuery(t *testing.T) {
	oid := primitive.NewObjectID()
	q := idQuery(oid.Hex())
	in := q["_id"].(bson.M)["$in"].(bson.A)
	assert.Equal(t, bson.A{oid.Hex(), oid}, in)

	q = idQuery("not-hex")
	in = q["_id"].(bson.M)["$in"].(bson.A)
	assert.Len(t, in, 1)
}

func TestOrdersQuery(t *testing.T) {
	tr := entity.TimeRange{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}
	q := ordersQuery(tr)
	or := q["$or"].(bson.A)
	require.Len(t, or, 5)
	native := or[0].(bson.M)["createdAt"].(bson.M)
	assert.Equal(t, tr.From, native["$gte"])
	assert.Equal(t, tr.To, native["$lte"])
	millis := or[1].(bson.M)["createdAt"].(bson.M)
	assert.Equal(t, tr.To.UnixMilli(), millis["$lte"])
}
