package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productStore struct {
	*MongoStore
}

// exactFold matches a whole field value case-insensitively.
func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

// idQuery matches _id stored either as an ObjectID or as its hex string.
func idQuery(hex string) bson.M {
	ids := bson.A{hex}
	if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
		ids = append(ids, oid)
	}
	return bson.M{"_id": bson.M{"$in": ids}}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, query bson.M, decode func(bson.M) *T) (*T, error) {
	var doc bson.M
	err := coll.FindOne(ctx, query).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(doc), nil
}

func (ms *productStore) find(ctx context.Context, by string, query bson.M) (*entity.Product, error) {
	p, err := findOne(ctx, ms.products, query, decodeProduct)
	if err != nil {
		return nil, fmt.Errorf("find product by %s: %w", by, err)
	}
	return p, nil
}

func (ms *productStore) FindProductByID(ctx context.Context, id string) (*entity.Product, error) {
	return ms.find(ctx, "id", idQuery(id))
}

func (ms *productStore) FindProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return ms.find(ctx, "slug", bson.M{"slug": exactFold(slug)})
}

func (ms *productStore) FindProductBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return ms.find(ctx, "sku", bson.M{"sku": exactFold(sku)})
}

func (ms *productStore) FindProductByName(ctx context.Context, name string) (*entity.Product, error) {
	return ms.find(ctx, "name", bson.M{"name": exactFold(name)})
}

func (ms *productStore) FindProductByNamePattern(ctx context.Context, pattern string) (*entity.Product, error) {
	return ms.find(ctx, "name pattern", bson.M{"name": primitive.Regex{Pattern: pattern, Options: "i"}})
}

func (ms *productStore) CountProducts(ctx context.Context) (int64, error) {
	n, err := ms.products.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (ms *productStore) FindLowStockProducts(ctx context.Context, threshold int64, limit int) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "stock", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := ms.products.Find(ctx, bson.M{"stock": bson.M{"$lte": threshold}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find low stock products: %w", err)
	}
	defer cur.Close(ctx)

	var res []entity.Product
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		res = append(res, *decodeProduct(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return res, nil
}
