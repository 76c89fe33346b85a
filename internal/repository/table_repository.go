package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Reainz/restaurant-system/internal/model"
)

// TableRepo provides access to the tables collection.
type TableRepo struct {
	col *mongo.Collection
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *mongo.Database) *TableRepo {
	return &TableRepo{col: db.Collection("tables")}
}

// Insert stores a new table. Duplicate table_id or table_number maps to
// ErrConflict; callers resolve it by fetching the existing record.
func (r *TableRepo) Insert(ctx context.Context, t *model.Table) error {
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// FindByID fetches one table by its identifier.
func (r *TableRepo) FindByID(ctx context.Context, tableID string) (*model.Table, error) {
	return r.findOne(ctx, bson.M{"table_id": tableID})
}

// FindByNumber fetches one table by its numeric table number.
func (r *TableRepo) FindByNumber(ctx context.Context, number int) (*model.Table, error) {
	return r.findOne(ctx, bson.M{"table_number": number})
}

// List returns all tables.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tables := []model.Table{}
	if err := cur.All(ctx, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// Update applies a partial update and returns the table afterwards.
func (r *TableRepo) Update(ctx context.Context, tableID string, upd model.UpdateTable, now time.Time) (*model.Table, error) {
	set := bson.M{"updated_at": now}
	if upd.TableNumber != nil {
		set["table_number"] = *upd.TableNumber
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.OrderID != nil {
		set["order_id"] = *upd.OrderID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t model.Table
	err := r.col.FindOneAndUpdate(ctx, bson.M{"table_id": tableID}, bson.M{"$set": set}, opts).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a table.
func (r *TableRepo) Delete(ctx context.Context, tableID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"table_id": tableID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TableRepo) findOne(ctx context.Context, query bson.M) (*model.Table, error) {
	var t model.Table
	err := r.col.FindOne(ctx, query).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
