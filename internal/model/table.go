package model

import "time"

// Table occupancy states. UpdateStatus rejects anything outside this set.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// ValidTableStatus reports whether a token belongs to the closed table
// status set.
func ValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

// Table is a restaurant table document owned by the table/bill service.
// OrderID references the order currently assigned to the table, by
// identifier only; the order itself lives in the order service's store.
type Table struct {
	TableID     string    `json:"table_id" bson:"table_id"`
	TableNumber int       `json:"table_number" bson:"table_number"`
	Status      string    `json:"status" bson:"status"`
	Capacity    int       `json:"capacity" bson:"capacity"`
	OrderID     *string   `json:"order_id,omitempty" bson:"order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateTable is the request payload for explicit table creation.
type CreateTable struct {
	TableNumber int `json:"table_number"`
	Capacity    int `json:"capacity"`
}

// UpdateTable carries a partial table update. Nil fields are untouched.
type UpdateTable struct {
	TableNumber *int    `json:"table_number,omitempty"`
	Status      *string `json:"status,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	OrderID     *string `json:"order_id,omitempty"`
}

// TableAssignment binds a table to an order, typically when an order is
// submitted for a table that may not exist yet.
type TableAssignment struct {
	TableID string `json:"table_id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// TableList wraps table collection responses.
type TableList struct {
	Tables []Table `json:"tables"`
}
