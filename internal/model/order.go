package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// OrderStatus is the lifecycle state of an order. Transitions between
// states are restricted; see CanTransition.
type OrderStatus string

const (
	OrderReceived   OrderStatus = "received"
	OrderInProgress OrderStatus = "in-progress"
	OrderPaused     OrderStatus = "paused"
	OrderReady      OrderStatus = "ready"
	OrderDelivered  OrderStatus = "delivered"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Item fulfilment states. Item progress is tracked independently of the
// parent order's lifecycle.
const (
	ItemPending    = "pending"
	ItemInProgress = "in-progress"
	ItemCompleted  = "completed"
	ItemCancelled  = "cancelled"
)

// ErrValidation marks malformed input (bad table id, empty item list,
// unknown status token). Handlers translate it into HTTP 400.
var ErrValidation = errors.New("validation failed")

// ErrInvalidTransition is returned when a requested order status is not
// reachable from the current one. Handlers translate it into HTTP 422 so
// clients can tell a graph violation apart from generic bad input.
var ErrInvalidTransition = errors.New("invalid status transition")

// tableIDPattern is the required table identifier format: "T" followed by
// digits, e.g. T1 or T12.
var tableIDPattern = regexp.MustCompile(`^T[0-9]+$`)

// orderTransitions lists, per current status, the statuses an order may
// move to. Self-loops are allowed so repeating the current status is a
// no-op rather than an error. Cancellation is handled separately in
// CanTransition because it is permitted from any non-completed state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderReceived:   {OrderReceived, OrderInProgress},
	OrderInProgress: {OrderInProgress, OrderReady, OrderPaused},
	OrderPaused:     {OrderPaused, OrderInProgress},
	OrderReady:      {OrderReady, OrderDelivered},
	OrderDelivered:  {OrderDelivered, OrderCompleted},
	OrderCompleted:  {OrderCompleted},
	OrderCancelled:  {OrderCancelled},
}

// ParseOrderStatus validates a status token from the wire.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderReceived, OrderInProgress, OrderPaused, OrderReady,
		OrderDelivered, OrderCompleted, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: invalid status value %q", ErrValidation, s)
}

// CanTransition reports whether an order may move from one status to
// another. Cancellation is an override: it is reachable from every state
// except completed, including from cancelled itself (idempotent).
func CanTransition(from, to OrderStatus) bool {
	if to == OrderCancelled {
		return from != OrderCompleted
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status ends the order lifecycle. Terminal
// transitions trigger the table/bill notification.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// OrderItem is a single line of an order. Price captures the menu price at
// order time when the client supplied one; the bill generator prefers the
// catalog's current price and only falls back to this snapshot.
type OrderItem struct {
	ItemID   string   `json:"item_id" bson:"item_id"`
	Name     string   `json:"name" bson:"name"`
	Quantity int      `json:"quantity" bson:"quantity"`
	Notes    string   `json:"notes" bson:"notes"`
	Status   string   `json:"status" bson:"status"`
	Price    *float64 `json:"price,omitempty" bson:"price,omitempty"`
}

// Order is the authoritative order document owned by the order service.
type Order struct {
	OrderID             string      `json:"order_id" bson:"order_id"`
	TableID             string      `json:"table_id" bson:"table_id"`
	Status              OrderStatus `json:"status" bson:"status"`
	Items               []OrderItem `json:"items" bson:"items"`
	SpecialInstructions string      `json:"special_instructions" bson:"special_instructions"`
	CreatedAt           time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" bson:"updated_at"`
}

// CreateOrder is the request payload for order creation.
type CreateOrder struct {
	TableID             string      `json:"table_id"`
	Items               []OrderItem `json:"items"`
	SpecialInstructions string      `json:"special_instructions"`
}

// Validate checks a creation request before anything touches storage, so a
// malformed order is rejected with ErrValidation rather than surfacing as
// a storage failure.
func (r *CreateOrder) Validate() error {
	if !tableIDPattern.MatchString(r.TableID) {
		return fmt.Errorf("%w: invalid table_id format %q, expected like T1 or T12", ErrValidation, r.TableID)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for i, item := range r.Items {
		if item.ItemID == "" {
			return fmt.Errorf("%w: items[%d].item_id is required", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be greater than zero", ErrValidation, i)
		}
	}
	return nil
}

// ValidItemStatus reports whether a token belongs to the closed item
// status set.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemPending, ItemInProgress, ItemCompleted, ItemCancelled:
		return true
	}
	return false
}

// UpdateOrder carries a partial order update. Nil fields are untouched.
type UpdateOrder struct {
	SpecialInstructions *string `json:"special_instructions,omitempty"`
	Status              *string `json:"status,omitempty"`
}

// UpdateOrderItem carries a partial update for one line item.
type UpdateOrderItem struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// OrderStatusUpdate is the body of PUT /api/orders/:id/status.
type OrderStatusUpdate struct {
	Status string `json:"status"`
}

// OrderList wraps the order collection responses.
type OrderList struct {
	Orders []Order `json:"orders"`
}
