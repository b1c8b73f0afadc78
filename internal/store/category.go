package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
)

type categoryStore struct {
	*MongoStore
}

func (ms *categoryStore) find(ctx context.Context, by string, query bson.M) (*entity.Category, error) {
	c, err := findOne(ctx, ms.categories, query, decodeCategory)
	if err != nil {
		return nil, fmt.Errorf("find category by %s: %w", by, err)
	}
	return c, nil
}

func (ms *categoryStore) FindCategoryByID(ctx context.Context, id string) (*entity.Category, error) {
	return ms.find(ctx, "id", idQuery(id))
}

func (ms *categoryStore) FindCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	return ms.find(ctx, "name", bson.M{"name": exactFold(name)})
}

func (ms *categoryStore) CountCategories(ctx context.Context) (int64, error) {
	n, err := ms.categories.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
