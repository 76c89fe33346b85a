package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/notify"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// OrderStore is the storage surface the order rules need.
type OrderStore interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	Find(ctx context.Context, f repository.OrderFilter) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, now time.Time) (*model.Order, error)
	UpdateInstructions(ctx context.Context, orderID, instructions string, now time.Time) (*model.Order, error)
	UpdateItem(ctx context.Context, orderID string, index int, upd model.UpdateOrderItem, now time.Time) (*model.Order, error)
	Delete(ctx context.Context, orderID string, requiredStatus model.OrderStatus) error
}

// TableBillNotifier is the order service's outbound surface toward the
// table/bill service.
type TableBillNotifier interface {
	AssignTable(ctx context.Context, tableID, orderID string) error
	NotifyOrderStatus(ctx context.Context, orderID, status string) error
}

// OrderService owns the order lifecycle. Peer notifications go through
// the outbox so a slow or absent table/bill service never blocks or
// fails an order request: the state change is committed first, the
// notification is best effort.
type OrderService struct {
	store  OrderStore
	peer   TableBillNotifier
	outbox *notify.Outbox
	now    func() time.Time
}

// NewOrderService wires an OrderService.
func NewOrderService(store OrderStore, peer TableBillNotifier, outbox *notify.Outbox) *OrderService {
	return &OrderService{store: store, peer: peer, outbox: outbox, now: time.Now}
}

// Create validates and stores a new order, then asks the table/bill
// service to seat it. The assign call subsumes the plain
// status-to-occupied transition: it marks the table occupied, records
// the order on it, and provisions the table if it has never been seen.
func (s *OrderService) Create(ctx context.Context, req model.CreateOrder) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &model.Order{
		OrderID:             uuid.NewString(),
		TableID:             req.TableID,
		Status:              model.OrderReceived,
		Items:               make([]model.OrderItem, len(req.Items)),
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for i, item := range req.Items {
		item.Status = model.ItemPending
		order.Items[i] = item
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	tableID, orderID := order.TableID, order.OrderID
	s.outbox.Enqueue(notify.Job{
		Name: "assign table " + tableID,
		Run: func(jctx context.Context) error {
			return s.peer.AssignTable(jctx, tableID, orderID)
		},
	})

	logrus.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"table_id": order.TableID,
		"items":    len(order.Items),
	}).Info("order created")
	return order, nil
}

// Get fetches one order.
func (s *OrderService) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return s.store.FindByID(ctx, orderID)
}

// List returns orders matching the filter.
func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error) {
	return s.store.Find(ctx, f)
}

// UpdateStatus moves an order along its lifecycle. An unreachable target
// yields ErrInvalidTransition; reaching a terminal status notifies the
// table/bill service so the bill follows.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, token string) (*model.Order, error) {
	target, err := model.ParseOrderStatus(token)
	if err != nil {
		return nil, err
	}
	current, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(current.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, current.Status, target)
	}

	updated, err := s.store.UpdateStatus(ctx, orderID, target, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if target.Terminal() {
		s.enqueueStatusNotification(orderID, string(target))
	}
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     current.Status,
		"to":       target,
	}).Info("order status updated")
	return updated, nil
}

// Cancel cancels an order. Cancelling an already cancelled order is a
// no-op success; only a completed order refuses.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	return s.UpdateStatus(ctx, orderID, string(model.OrderCancelled))
}

// Update applies a partial order update. A status change goes through
// the same transition check as UpdateStatus, and the check runs before
// any field is written: a rejected status leaves the whole order
// untouched.
func (s *OrderService) Update(ctx context.Context, orderID string, upd model.UpdateOrder) (*model.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if upd.Status != nil {
		target, err := model.ParseOrderStatus(*upd.Status)
		if err != nil {
			return nil, err
		}
		if !model.CanTransition(order.Status, target) {
			return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, order.Status, target)
		}
	}
	if upd.SpecialInstructions != nil {
		order, err = s.store.UpdateInstructions(ctx, orderID, *upd.SpecialInstructions, s.now().UTC())
		if err != nil {
			return nil, err
		}
	}
	if upd.Status != nil {
		order, err = s.UpdateStatus(ctx, orderID, *upd.Status)
		if err != nil {
			return nil, err
		}
	}
	return order, nil
}

// UpdateItem patches one line item. Item progress is tracked
// independently of the order's own lifecycle, so no transition check
// applies, only the closed status token set.
func (s *OrderService) UpdateItem(ctx context.Context, orderID, itemID string, upd model.UpdateOrderItem) (*model.Order, error) {
	if upd.Status != nil && !model.ValidItemStatus(*upd.Status) {
		return nil, fmt.Errorf("%w: invalid item status %q", model.ErrValidation, *upd.Status)
	}
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	index := -1
	for i, item := range order.Items {
		if item.ItemID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("item %s on order %s: %w", itemID, orderID, repository.ErrNotFound)
	}
	return s.store.UpdateItem(ctx, orderID, index, upd, s.now().UTC())
}

// Delete removes an order. Only an order still in received may be
// deleted; anything further along must be cancelled instead.
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderReceived {
		return fmt.Errorf("%w: only received orders can be deleted, status is %s", ErrPrecondition, order.Status)
	}
	// The status guard repeats inside the conditional delete so a
	// concurrent transition between the read and the delete loses.
	return s.store.Delete(ctx, orderID, model.OrderReceived)
}

func (s *OrderService) enqueueStatusNotification(orderID, status string) {
	s.outbox.Enqueue(notify.Job{
		Name: fmt.Sprintf("notify order %s %s", orderID, status),
		Run: func(jctx context.Context) error {
			return s.peer.NotifyOrderStatus(jctx, orderID, status)
		},
	})
}
