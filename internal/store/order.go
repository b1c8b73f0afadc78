package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderStore struct {
	*MongoStore
}

// ordersQuery narrows the scan to documents that can fall inside tr. Native
// dates and epoch milliseconds are range-checked by the server; string and
// missing dates are fetched and checked after decoding.
func ordersQuery(tr entity.TimeRange) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"createdAt": bson.M{"$gte": tr.From, "$lte": tr.To}},
		bson.M{"createdAt": bson.M{"$gte": tr.From.UnixMilli(), "$lte": tr.To.UnixMilli()}},
		bson.M{"createdAt": bson.M{"$type": "string"}},
		bson.M{"createdAt": bson.M{"$exists": false}},
		bson.M{"createdAt": nil},
	}}
}

// FindOrders returns orders created inside tr whose status passes filter.
// Status is compared after normalization since stored casing varies.
func (ms *orderStore) FindOrders(ctx context.Context, tr entity.TimeRange, filter entity.OrderFilter) ([]entity.Order, error) {
	cur, err := ms.orders.Find(ctx, ordersQuery(tr))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	var res []entity.Order
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		o := decodeOrder(doc)
		if !o.HasDate() || !tr.Contains(o.CreatedAt) || !filter.Match(o.Status) {
			continue
		}
		res = append(res, o)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

// CountOrders returns the number of non-cancelled orders.
func (ms *orderStore) CountOrders(ctx context.Context) (int64, error) {
	n, err := ms.orders.CountDocuments(ctx, bson.M{
		"status": bson.M{"$not": primitive.Regex{Pattern: `^\s*cancelled\s*$`, Options: "i"}},
	})
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
