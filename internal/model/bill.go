package model

import "time"

// Bill statuses. The status field is an open label set rather than a
// strict enum; these are the values the platform itself writes. A bill is
// "active", and keeps its table occupied, while open or final.
const (
	BillOpen      = "open"
	BillFinal     = "final"
	BillCancelled = "cancelled"
	BillPaid      = "paid"
)

// Payment states for a bill.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentPaid       = "paid"
	PaymentFailed     = "failed"
)

// ActiveBillStatuses are the statuses that keep a table occupied. A table
// is released only when no bill for it remains in one of these states.
var ActiveBillStatuses = []string{BillOpen, BillFinal}

// ValidPaymentStatus reports whether a token belongs to the closed payment
// status set.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// BillID derives the bill identifier from its source order. The mapping is
// deterministic so retried bill creation collides on the unique index
// instead of producing duplicates.
func BillID(orderID string) string {
	return "bill-" + orderID
}

// BillItem is a billed line: the price is a snapshot resolved at bill
// creation or at the last refresh, not a live catalog reference.
type BillItem struct {
	ItemID   string  `json:"item_id" bson:"item_id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

// Bill is the invoice document derived from a completed order. Order and
// table are referenced by identifier only; both live in other stores.
type Bill struct {
	BillID         string     `json:"bill_id" bson:"bill_id"`
	TableID        string     `json:"table_id" bson:"table_id"`
	OrderID        string     `json:"order_id" bson:"order_id"`
	Status         string     `json:"status" bson:"status"`
	PaymentStatus  string     `json:"payment_status" bson:"payment_status"`
	Items          []BillItem `json:"items" bson:"items"`
	TotalAmount    float64    `json:"total_amount" bson:"total_amount"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty" bson:"last_refreshed,omitempty"`
	LastReconciled *time.Time `json:"last_reconciled,omitempty" bson:"last_reconciled,omitempty"`
}

// Total computes the sum of price*quantity over the billed items.
func (b *Bill) Total() float64 {
	var total float64
	for _, item := range b.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// GenerateBill is the body of POST /api/bills.
type GenerateBill struct {
	OrderID string `json:"order_id"`
}

// UpdateBill carries a partial bill update. Nil fields are untouched.
type UpdateBill struct {
	Status        *string     `json:"status,omitempty"`
	PaymentStatus *string     `json:"payment_status,omitempty"`
	TotalAmount   *float64    `json:"total_amount,omitempty"`
	Items         *[]BillItem `json:"items,omitempty"`
}

// BillList wraps bill collection responses.
type BillList struct {
	Bills []Bill `json:"bills"`
}

// OrderStatusNotification is the payload the order service posts to the
// table/bill service when an order reaches a terminal status.
type OrderStatusNotification struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// VerificationResult is the report produced by a read-only bill
// consistency check. Verified is true only when Issues is empty.
type VerificationResult struct {
	BillID      string              `json:"bill_id"`
	Verified    bool                `json:"verified"`
	Status      string              `json:"status"`
	Issues      []string            `json:"issues"`
	OrderExists bool                `json:"order_exists"`
	TotalMatch  bool                `json:"total_match"`
	Details     VerificationDetails `json:"details"`
}

// VerificationDetails carries the raw snapshots the verdict was based on.
type VerificationDetails struct {
	Bill  *BillSummary  `json:"bill,omitempty"`
	Order *OrderSummary `json:"order,omitempty"`
}

// BillSummary is the bill-side snapshot embedded in a verification report.
type BillSummary struct {
	OrderID     string  `json:"order_id"`
	TableID     string  `json:"table_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// OrderSummary is the order-side snapshot embedded in a verification report.
type OrderSummary struct {
	Status    string `json:"status"`
	TableID   string `json:"table_id"`
	ItemCount int    `json:"item_count"`
}

// ReconcileResult reports what a reconciliation pass changed and what it
// could not repair.
type ReconcileResult struct {
	BillID          string             `json:"bill_id"`
	Reconciled      bool               `json:"reconciled"`
	FixesApplied    []string           `json:"fixes_applied"`
	RemainingIssues []string           `json:"remaining_issues"`
	Details         VerificationResult `json:"details"`
}

// RefreshResult reports the outcome of re-deriving a bill from the live
// order and catalog state.
type RefreshResult struct {
	BillID         string   `json:"bill_id"`
	Refreshed      bool     `json:"refreshed"`
	UpdatesApplied []string `json:"updates_applied"`
	Issues         []string `json:"issues"`
}
