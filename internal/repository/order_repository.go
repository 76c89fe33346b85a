package repository

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Reainz/restaurant-system/internal/model"
)

// OrderFilter narrows order listings. Zero values mean "no constraint".
type OrderFilter struct {
	TableID  string
	Statuses []model.OrderStatus
	Skip     int64
	Limit    int64
}

// OrderRepo provides access to the orders collection. All writes rely on
// Mongo's single-document atomicity; there is no cross-document
// transaction anywhere in the platform.
type OrderRepo struct {
	col *mongo.Collection
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{col: db.Collection("orders")}
}

// Insert stores a new order. A duplicate order_id maps to ErrConflict.
func (r *OrderRepo) Insert(ctx context.Context, o *model.Order) error {
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// FindByID fetches one order by its identifier.
func (r *OrderRepo) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var o model.Order
	err := r.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Find lists orders matching the filter, newest first.
func (r *OrderRepo) Find(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	query := bson.M{}
	if f.TableID != "" {
		query["table_id"] = f.TableID
	}
	if len(f.Statuses) > 0 {
		query["status"] = bson.M{"$in": f.Statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := []model.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus sets the order status and bumps the update timestamp.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, now time.Time) (*model.Order, error) {
	return r.findAndUpdate(ctx, orderID, bson.M{"status": status, "updated_at": now})
}

// UpdateInstructions sets the free-text special instructions.
func (r *OrderRepo) UpdateInstructions(ctx context.Context, orderID, instructions string, now time.Time) (*model.Order, error) {
	return r.findAndUpdate(ctx, orderID, bson.M{"special_instructions": instructions, "updated_at": now})
}

// UpdateItem patches one line item in place by array index. Item updates
// bypass the order status machine: item progress is orthogonal to the
// order lifecycle.
func (r *OrderRepo) UpdateItem(ctx context.Context, orderID string, index int, upd model.UpdateOrderItem, now time.Time) (*model.Order, error) {
	set := bson.M{"updated_at": now}
	if upd.Status != nil {
		set[itemField(index, "status")] = *upd.Status
	}
	if upd.Notes != nil {
		set[itemField(index, "notes")] = *upd.Notes
	}
	return r.findAndUpdate(ctx, orderID, set)
}

// Delete removes an order. Conditional on status so the "only while
// received" guard holds even against a concurrent status change.
func (r *OrderRepo) Delete(ctx context.Context, orderID string, requiredStatus model.OrderStatus) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"order_id": orderID, "status": requiredStatus})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findAndUpdate applies a $set atomically and returns the document after
// the update, so concurrent writers see one deterministic winner.
func (r *OrderRepo) findAndUpdate(ctx context.Context, orderID string, set bson.M) (*model.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o model.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"order_id": orderID}, bson.M{"$set": set}, opts).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func itemField(index int, field string) string {
	return "items." + strconv.Itoa(index) + "." + field
}
