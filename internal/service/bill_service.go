package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// BillStore is the storage surface the billing rules need.
type BillStore interface {
	Insert(ctx context.Context, b *model.Bill) error
	FindByID(ctx context.Context, billID string) (*model.Bill, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Bill, error)
	Find(ctx context.Context, f repository.BillFilter) ([]model.Bill, error)
	Apply(ctx context.Context, billID string, p repository.BillPatch, now time.Time) (*model.Bill, error)
	CountActiveForTable(ctx context.Context, tableID, excludeBillID string) (int64, error)
}

// OrderFetcher reads orders from the order service.
type OrderFetcher interface {
	FetchOrder(ctx context.Context, orderID string) (*model.Order, error)
}

// MenuFetcher reads catalog entries from the menu service.
type MenuFetcher interface {
	FetchItem(ctx context.Context, itemID string) (*model.MenuItem, error)
}

// TableRegistry is the slice of the table service billing needs: binding
// a table when a bill appears and releasing it when the last one is paid.
type TableRegistry interface {
	Assign(ctx context.Context, req model.TableAssignment) (*model.Table, error)
	UpdateStatus(ctx context.Context, ref, status string) (*model.Table, error)
}

// BillService derives bills from completed orders and tracks payment.
type BillService struct {
	bills  BillStore
	tables TableRegistry
	orders OrderFetcher
	menu   MenuFetcher
	relay  EventPublisher
	now    func() time.Time
}

// NewBillService wires a BillService.
func NewBillService(bills BillStore, tables TableRegistry, orders OrderFetcher, menu MenuFetcher, relay EventPublisher) *BillService {
	return &BillService{bills: bills, tables: tables, orders: orders, menu: menu, relay: relay, now: time.Now}
}

// CreateFromOrder generates the bill for a completed order. The call is
// idempotent twice over: a pre-check returns the existing bill, and the
// deterministic bill id turns a creation race into a duplicate-key
// conflict resolved the same way. The returned bool reports whether a
// new bill was created.
func (s *BillService) CreateFromOrder(ctx context.Context, orderID string) (*model.Bill, bool, error) {
	if orderID == "" {
		return nil, false, fmt.Errorf("%w: order_id is required", model.ErrValidation)
	}
	if existing, err := s.bills.FindByOrderID(ctx, orderID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	order, err := s.orders.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order.Status != model.OrderCompleted {
		return nil, false, fmt.Errorf("%w: order %s is %s, bills are generated from completed orders", ErrPrecondition, orderID, order.Status)
	}
	if order.TableID == "" {
		return nil, false, fmt.Errorf("%w: order %s has no table", ErrPrecondition, orderID)
	}
	if len(order.Items) == 0 {
		return nil, false, fmt.Errorf("%w: order %s has no items", ErrPrecondition, orderID)
	}

	now := s.now().UTC()
	bill := &model.Bill{
		BillID:        model.BillID(orderID),
		TableID:       order.TableID,
		OrderID:       orderID,
		Status:        model.BillFinal,
		PaymentStatus: model.PaymentPending,
		Items:         make([]model.BillItem, len(order.Items)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, item := range order.Items {
		bill.Items[i] = model.BillItem{
			ItemID:   item.ItemID,
			Name:     item.Name,
			Price:    resolvePrice(ctx, s.menu, item.ItemID, nil, item.Price),
			Quantity: item.Quantity,
		}
	}
	bill.TotalAmount = bill.Total()

	// Keep the local table registry in step; the bill is valid even if
	// the registry write fails, so failure only logs.
	if _, err := s.tables.Assign(ctx, model.TableAssignment{
		TableID: order.TableID,
		OrderID: orderID,
		Status:  model.TableOccupied,
	}); err != nil {
		logrus.WithFields(logrus.Fields{
			"table_id": order.TableID,
			"order_id": orderID,
			"error":    err,
		}).Warn("could not mark table occupied for new bill")
	}

	if err := s.bills.Insert(ctx, bill); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			existing, ferr := s.bills.FindByOrderID(ctx, orderID)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert bill: %w", err)
	}

	s.relay.Publish("bill", "created", bill)
	logrus.WithFields(logrus.Fields{
		"bill_id":  bill.BillID,
		"order_id": orderID,
		"total":    bill.TotalAmount,
	}).Info("bill created")
	return bill, true, nil
}

// Get fetches one bill.
func (s *BillService) Get(ctx context.Context, billID string) (*model.Bill, error) {
	return s.bills.FindByID(ctx, billID)
}

// List returns bills matching the filter.
func (s *BillService) List(ctx context.Context, f repository.BillFilter) ([]model.Bill, error) {
	return s.bills.Find(ctx, f)
}

// Update applies a partial bill update. When items change without an
// explicit total the total is recomputed from them.
func (s *BillService) Update(ctx context.Context, billID string, upd model.UpdateBill) (*model.Bill, error) {
	if upd.PaymentStatus != nil && !model.ValidPaymentStatus(*upd.PaymentStatus) {
		return nil, fmt.Errorf("%w: invalid payment status %q", model.ErrValidation, *upd.PaymentStatus)
	}
	patch := repository.BillPatch{
		Status:        upd.Status,
		PaymentStatus: upd.PaymentStatus,
		TotalAmount:   upd.TotalAmount,
		Items:         upd.Items,
	}
	if upd.Items != nil && upd.TotalAmount == nil {
		tmp := model.Bill{Items: *upd.Items}
		total := tmp.Total()
		patch.TotalAmount = &total
	}
	updated, err := s.bills.Apply(ctx, billID, patch, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.relay.Publish("bill", "updated", updated)
	return updated, nil
}

// UpdatePaymentStatus records a payment state change. Payment of an
// active bill closes it, and when no other active bill remains for the
// table the table goes back to available. Release is count based on
// purpose: split billing keeps several bills per table alive at once.
func (s *BillService) UpdatePaymentStatus(ctx context.Context, billID, token string) (*model.Bill, error) {
	if !model.ValidPaymentStatus(token) {
		return nil, fmt.Errorf("%w: invalid payment status %q", model.ErrValidation, token)
	}
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	patch := repository.BillPatch{PaymentStatus: &token}
	if token == model.PaymentPaid && billIsActive(bill.Status) {
		closed := model.BillPaid
		patch.Status = &closed
	}
	updated, err := s.bills.Apply(ctx, billID, patch, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if token == model.PaymentPaid {
		s.releaseTableIfDone(ctx, updated)
	}
	s.relay.Publish("bill", "updated", updated)
	logrus.WithFields(logrus.Fields{
		"bill_id":        billID,
		"payment_status": token,
	}).Info("bill payment status updated")
	return updated, nil
}

func (s *BillService) releaseTableIfDone(ctx context.Context, bill *model.Bill) {
	if bill.TableID == "" {
		return
	}
	remaining, err := s.bills.CountActiveForTable(ctx, bill.TableID, bill.BillID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"table_id": bill.TableID,
			"error":    err,
		}).Warn("could not count active bills for table release")
		return
	}
	if remaining > 0 {
		logrus.WithFields(logrus.Fields{
			"table_id":  bill.TableID,
			"remaining": remaining,
		}).Info("table stays occupied, other bills still active")
		return
	}
	if _, err := s.tables.UpdateStatus(ctx, bill.TableID, model.TableAvailable); err != nil {
		logrus.WithFields(logrus.Fields{
			"table_id": bill.TableID,
			"error":    err,
		}).Warn("could not release table after payment")
		return
	}
	s.relay.Publish("table", "released", map[string]string{
		"table_id": bill.TableID,
		"bill_id":  bill.BillID,
	})
}

// resolvePrice picks the price for a billed item: the current catalog
// price wins, then the most recent locally recorded price, then the
// price captured on the order, then zero.
func resolvePrice(ctx context.Context, menu MenuFetcher, itemID string, prior, captured *float64) float64 {
	item, err := menu.FetchItem(ctx, itemID)
	if err == nil {
		return item.Price
	}
	logrus.WithFields(logrus.Fields{
		"item_id": itemID,
		"error":   err,
	}).Warn("catalog price unavailable, falling back to recorded price")
	if prior != nil {
		return *prior
	}
	if captured != nil {
		return *captured
	}
	return 0
}

func billIsActive(status string) bool {
	for _, s := range model.ActiveBillStatuses {
		if s == status {
			return true
		}
	}
	return false
}
