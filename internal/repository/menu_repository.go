package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Reainz/restaurant-system/internal/model"
)

// MenuFilter narrows catalog listings. Available filters on the
// availability flag only when set.
type MenuFilter struct {
	Category  string
	MenuType  string
	Available *bool
}

// MenuRepo provides access to the menu_items collection.
type MenuRepo struct {
	col *mongo.Collection
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *mongo.Database) *MenuRepo {
	return &MenuRepo{col: db.Collection("menu_items")}
}

// Insert stores a new catalog item.
func (r *MenuRepo) Insert(ctx context.Context, item *model.MenuItem) error {
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// FindByID fetches one catalog item.
func (r *MenuRepo) FindByID(ctx context.Context, itemID string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.col.FindOne(ctx, bson.M{"item_id": itemID}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Find lists catalog items matching the filter, grouped by category then name.
func (r *MenuRepo) Find(ctx context.Context, f MenuFilter) ([]model.MenuItem, error) {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.MenuType != "" {
		query["menu_type"] = f.MenuType
	}
	if f.Available != nil {
		query["available"] = *f.Available
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []model.MenuItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update patches one catalog item and returns the updated document.
func (r *MenuRepo) Update(ctx context.Context, itemID string, upd model.UpdateMenuItem, now time.Time) (*model.MenuItem, error) {
	set := bson.M{"updated_at": now}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Available != nil {
		set["available"] = *upd.Available
	}
	if upd.MenuType != nil {
		set["menu_type"] = *upd.MenuType
	}
	if upd.ImageURL != nil {
		set["image_url"] = *upd.ImageURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item model.MenuItem
	err := r.col.FindOneAndUpdate(ctx, bson.M{"item_id": itemID}, bson.M{"$set": set}, opts).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes one catalog item.
func (r *MenuRepo) Delete(ctx context.Context, itemID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"item_id": itemID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
