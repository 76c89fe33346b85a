package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Reainz/restaurant-system/internal/model"
)

// BillFilter narrows bill listings. Zero values mean "no constraint".
// Date, when set, selects bills created on that calendar day.
type BillFilter struct {
	TableID       string
	Statuses      []string
	PaymentStatus string
	Date          *time.Time
}

// BillPatch is a partial bill update applied atomically. Nil fields are
// untouched. It is broader than the wire-level model.UpdateBill because
// reconciliation and refresh also rewrite items, table reference and the
// bookkeeping timestamps.
type BillPatch struct {
	Status         *string
	PaymentStatus  *string
	TotalAmount    *float64
	Items          *[]model.BillItem
	TableID        *string
	LastRefreshed  *time.Time
	LastReconciled *time.Time
}

// BillRepo provides access to the bills collection. Every mutation goes
// through an atomic find-and-update returning the document after the
// write: on-demand reconciliation and the periodic sync may hit the same
// bill concurrently, and the store must yield one of the two writes
// deterministically instead of a lost update.
type BillRepo struct {
	col *mongo.Collection
}

// NewBillRepo returns a BillRepo bound to the given database.
func NewBillRepo(db *mongo.Database) *BillRepo {
	return &BillRepo{col: db.Collection("bills")}
}

// Insert stores a new bill. The deterministic bill_id and the unique
// order_id index turn a retried creation into ErrConflict, which the
// service resolves by returning the existing bill.
func (r *BillRepo) Insert(ctx context.Context, b *model.Bill) error {
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// FindByID fetches one bill by its identifier.
func (r *BillRepo) FindByID(ctx context.Context, billID string) (*model.Bill, error) {
	return r.findOne(ctx, bson.M{"bill_id": billID})
}

// FindByOrderID fetches the bill derived from an order, if any.
func (r *BillRepo) FindByOrderID(ctx context.Context, orderID string) (*model.Bill, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

// Find lists bills matching the filter, newest first.
func (r *BillRepo) Find(ctx context.Context, f BillFilter) ([]model.Bill, error) {
	query := bson.M{}
	if f.TableID != "" {
		query["table_id"] = f.TableID
	}
	if len(f.Statuses) > 0 {
		query["status"] = bson.M{"$in": f.Statuses}
	}
	if f.PaymentStatus != "" {
		query["payment_status"] = f.PaymentStatus
	}
	if f.Date != nil {
		day := f.Date.Truncate(24 * time.Hour)
		query["created_at"] = bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bills := []model.Bill{}
	if err := cur.All(ctx, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// Apply patches a bill atomically and returns the updated document.
func (r *BillRepo) Apply(ctx context.Context, billID string, p BillPatch, now time.Time) (*model.Bill, error) {
	set := bson.M{"updated_at": now}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.PaymentStatus != nil {
		set["payment_status"] = *p.PaymentStatus
	}
	if p.TotalAmount != nil {
		set["total_amount"] = *p.TotalAmount
	}
	if p.Items != nil {
		set["items"] = *p.Items
	}
	if p.TableID != nil {
		set["table_id"] = *p.TableID
	}
	if p.LastRefreshed != nil {
		set["last_refreshed"] = *p.LastRefreshed
	}
	if p.LastReconciled != nil {
		set["last_reconciled"] = *p.LastReconciled
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b model.Bill
	err := r.col.FindOneAndUpdate(ctx, bson.M{"bill_id": billID}, bson.M{"$set": set}, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CountActiveForTable counts bills for a table that are still in an
// active status, excluding one bill (the one being closed). This count is
// the sole mechanism deciding when a table reverts to available, which
// deliberately tolerates several concurrent bills per table (split bills).
func (r *BillRepo) CountActiveForTable(ctx context.Context, tableID, excludeBillID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"table_id": tableID,
		"bill_id":  bson.M{"$ne": excludeBillID},
		"status":   bson.M{"$in": model.ActiveBillStatuses},
	})
}

func (r *BillRepo) findOne(ctx context.Context, query bson.M) (*model.Bill, error) {
	var b model.Bill
	err := r.col.FindOne(ctx, query).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
