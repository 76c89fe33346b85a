package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/client"
	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// totalEpsilon bounds float drift when comparing recomputed totals.
const totalEpsilon = 0.001

// ConsistencyService checks and repairs bills against the live order and
// catalog state. The order service stays authoritative for what was
// ordered; bills converge toward it.
type ConsistencyService struct {
	bills  BillStore
	orders OrderFetcher
	menu   MenuFetcher
	relay  EventPublisher
	now    func() time.Time
}

// NewConsistencyService wires a ConsistencyService.
func NewConsistencyService(bills BillStore, orders OrderFetcher, menu MenuFetcher, relay EventPublisher) *ConsistencyService {
	return &ConsistencyService{bills: bills, orders: orders, menu: menu, relay: relay, now: time.Now}
}

// Verify runs a read-only consistency check on one bill. A missing bill
// is an error; an unreachable order service is an error too, because a
// verdict computed without the authoritative order would be noise. A
// missing order, mismatched table, diverged items or a stale total all
// land as issues in the report.
func (s *ConsistencyService) Verify(ctx context.Context, billID string) (*model.VerificationResult, error) {
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	result := &model.VerificationResult{
		BillID: billID,
		Status: "inconsistent",
		Issues: []string{},
		Details: model.VerificationDetails{
			Bill: &model.BillSummary{
				OrderID:     bill.OrderID,
				TableID:     bill.TableID,
				TotalAmount: bill.TotalAmount,
				ItemCount:   len(bill.Items),
			},
		},
	}

	if bill.OrderID == "" {
		result.Issues = append(result.Issues, "bill is missing order_id")
		return result, nil
	}

	order, err := s.orders.FetchOrder(ctx, bill.OrderID)
	if errors.Is(err, client.ErrNotFound) {
		result.Issues = append(result.Issues, fmt.Sprintf("order %s not found in order service", bill.OrderID))
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.OrderExists = true
	result.Details.Order = &model.OrderSummary{
		Status:    string(order.Status),
		TableID:   order.TableID,
		ItemCount: len(order.Items),
	}

	if order.TableID != "" && bill.TableID != "" && order.TableID != bill.TableID {
		result.Issues = append(result.Issues,
			fmt.Sprintf("table id mismatch: bill has %s, order has %s", bill.TableID, order.TableID))
	}

	billItems := map[string]model.BillItem{}
	for _, item := range bill.Items {
		billItems[item.ItemID] = item
	}
	orderItems := map[string]model.OrderItem{}
	for _, item := range order.Items {
		orderItems[item.ItemID] = item
	}

	for _, item := range order.Items {
		if _, ok := billItems[item.ItemID]; !ok {
			result.Issues = append(result.Issues,
				fmt.Sprintf("item %s (%s) in order but missing from bill", item.ItemID, item.Name))
		}
	}
	for _, item := range bill.Items {
		if _, ok := orderItems[item.ItemID]; !ok {
			result.Issues = append(result.Issues,
				fmt.Sprintf("item %s (%s) in bill but missing from order", item.ItemID, item.Name))
		}
	}
	for id, billItem := range billItems {
		orderItem, ok := orderItems[id]
		if !ok {
			continue
		}
		if billItem.Quantity != orderItem.Quantity {
			result.Issues = append(result.Issues,
				fmt.Sprintf("quantity mismatch for item %s: bill has %d, order has %d", id, billItem.Quantity, orderItem.Quantity))
		}
	}

	// Price drift against the live catalog is reported, but the total
	// is judged against the bill's own recorded prices: a later menu
	// change must not mark an already issued bill inconsistent beyond
	// the note.
	for _, item := range bill.Items {
		menuItem, err := s.menu.FetchItem(ctx, item.ItemID)
		if err != nil {
			continue
		}
		if menuItem.Price != item.Price {
			result.Issues = append(result.Issues,
				fmt.Sprintf("price mismatch for item %s: bill has %.2f, menu has %.2f", item.ItemID, item.Price, menuItem.Price))
		}
	}
	if math.Abs(bill.Total()-bill.TotalAmount) > totalEpsilon {
		result.Issues = append(result.Issues,
			fmt.Sprintf("total amount mismatch: bill has %.2f, calculated total is %.2f", bill.TotalAmount, bill.Total()))
	} else {
		result.TotalMatch = true
	}

	if len(result.Issues) == 0 {
		result.Verified = true
		result.Status = "consistent"
	}
	return result, nil
}

// Reconcile verifies a bill and, when autoFix is set, repairs it toward
// the order: shared items adopt the order's quantity while keeping the
// bill's price, items the order has but the bill lacks are added at the
// current catalog price (falling back to the order's captured price),
// items the order no longer has are dropped, and the total is
// recomputed. The pass finishes with a re-verification so the report
// states what remains broken.
func (s *ConsistencyService) Reconcile(ctx context.Context, billID string, autoFix bool) (*model.ReconcileResult, error) {
	verify, err := s.Verify(ctx, billID)
	if err != nil {
		return nil, err
	}

	result := &model.ReconcileResult{
		BillID:          billID,
		FixesApplied:    []string{},
		RemainingIssues: []string{},
		Details:         *verify,
	}
	if verify.Verified {
		result.Reconciled = true
		return result, nil
	}
	if !autoFix {
		result.RemainingIssues = verify.Issues
		return result, nil
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FetchOrder(ctx, bill.OrderID)
	if errors.Is(err, client.ErrNotFound) {
		result.RemainingIssues = append(result.RemainingIssues,
			fmt.Sprintf("order %s not found, cannot reconcile", bill.OrderID))
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	billItems := map[string]model.BillItem{}
	for _, item := range bill.Items {
		billItems[item.ItemID] = item
	}

	fixed := make([]model.BillItem, 0, len(order.Items))
	for _, orderItem := range order.Items {
		if billItem, ok := billItems[orderItem.ItemID]; ok {
			if billItem.Quantity != orderItem.Quantity {
				result.FixesApplied = append(result.FixesApplied,
					fmt.Sprintf("updated quantity for item %s from %d to %d", orderItem.ItemID, billItem.Quantity, orderItem.Quantity))
				billItem.Quantity = orderItem.Quantity
			}
			fixed = append(fixed, billItem)
			continue
		}
		price := resolvePrice(ctx, s.menu, orderItem.ItemID, nil, orderItem.Price)
		fixed = append(fixed, model.BillItem{
			ItemID:   orderItem.ItemID,
			Name:     orderItem.Name,
			Price:    price,
			Quantity: orderItem.Quantity,
		})
		result.FixesApplied = append(result.FixesApplied,
			fmt.Sprintf("added missing item %s (%s)", orderItem.ItemID, orderItem.Name))
	}
	for _, billItem := range bill.Items {
		found := false
		for _, orderItem := range order.Items {
			if orderItem.ItemID == billItem.ItemID {
				found = true
				break
			}
		}
		if !found {
			result.FixesApplied = append(result.FixesApplied,
				fmt.Sprintf("removed item %s (%s) absent from order", billItem.ItemID, billItem.Name))
		}
	}

	now := s.now().UTC()
	patch := repository.BillPatch{Items: &fixed, LastReconciled: &now}
	total := (&model.Bill{Items: fixed}).Total()
	if math.Abs(total-bill.TotalAmount) > totalEpsilon {
		patch.TotalAmount = &total
		result.FixesApplied = append(result.FixesApplied,
			fmt.Sprintf("recalculated total from %.2f to %.2f", bill.TotalAmount, total))
	} else {
		patch.TotalAmount = &total
	}
	if order.TableID != "" && order.TableID != bill.TableID {
		patch.TableID = &order.TableID
		result.FixesApplied = append(result.FixesApplied,
			fmt.Sprintf("updated table_id from %s to %s", bill.TableID, order.TableID))
	}

	updated, err := s.bills.Apply(ctx, billID, patch, now)
	if err != nil {
		return nil, err
	}
	s.relay.Publish("bill", "updated", updated)

	recheck, err := s.Verify(ctx, billID)
	if err != nil {
		return nil, err
	}
	result.Reconciled = recheck.Verified
	result.RemainingIssues = recheck.Issues
	result.Details = *recheck

	logrus.WithFields(logrus.Fields{
		"bill_id":    billID,
		"fixes":      len(result.FixesApplied),
		"reconciled": result.Reconciled,
	}).Info("bill reconciled")
	return result, nil
}

// ForceRefresh rebuilds a bill wholesale from the live order and catalog
// state: items and names come from the order, each price resolves
// catalog first, then the bill's previously recorded price, then the
// order's captured price, then zero. Table drift is corrected and a bill
// whose order already completed is promoted to final.
func (s *ConsistencyService) ForceRefresh(ctx context.Context, billID string) (*model.RefreshResult, error) {
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	result := &model.RefreshResult{
		BillID:         billID,
		UpdatesApplied: []string{},
		Issues:         []string{},
	}
	if bill.OrderID == "" {
		result.Issues = append(result.Issues, "bill has no order_id, cannot refresh")
		return result, nil
	}

	order, err := s.orders.FetchOrder(ctx, bill.OrderID)
	if errors.Is(err, client.ErrNotFound) {
		result.Issues = append(result.Issues,
			fmt.Sprintf("order %s not found in order service", bill.OrderID))
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	priorPrices := map[string]float64{}
	for _, item := range bill.Items {
		priorPrices[item.ItemID] = item.Price
	}

	refreshed := make([]model.BillItem, 0, len(order.Items))
	for _, orderItem := range order.Items {
		if orderItem.ItemID == "" {
			continue
		}
		name := orderItem.Name
		var price float64
		if menuItem, err := s.menu.FetchItem(ctx, orderItem.ItemID); err == nil {
			price = menuItem.Price
			if menuItem.Name != "" {
				name = menuItem.Name
			}
		} else if prior, ok := priorPrices[orderItem.ItemID]; ok {
			price = prior
		} else if orderItem.Price != nil {
			price = *orderItem.Price
		}
		refreshed = append(refreshed, model.BillItem{
			ItemID:   orderItem.ItemID,
			Name:     name,
			Price:    price,
			Quantity: orderItem.Quantity,
		})
	}

	now := s.now().UTC()
	total := (&model.Bill{Items: refreshed}).Total()
	patch := repository.BillPatch{
		Items:         &refreshed,
		TotalAmount:   &total,
		LastRefreshed: &now,
	}
	if order.TableID != "" && order.TableID != bill.TableID {
		patch.TableID = &order.TableID
		result.UpdatesApplied = append(result.UpdatesApplied,
			fmt.Sprintf("updated table_id to %s", order.TableID))
	}
	if (order.Status == model.OrderCompleted || order.Status == model.OrderDelivered) && bill.Status != model.BillFinal {
		final := model.BillFinal
		patch.Status = &final
		result.UpdatesApplied = append(result.UpdatesApplied,
			fmt.Sprintf("updated bill status to final (order is %s)", order.Status))
	}
	if len(bill.Items) != len(refreshed) {
		result.UpdatesApplied = append(result.UpdatesApplied,
			fmt.Sprintf("updated item count from %d to %d", len(bill.Items), len(refreshed)))
	}
	if math.Abs(bill.TotalAmount-total) > totalEpsilon {
		result.UpdatesApplied = append(result.UpdatesApplied,
			fmt.Sprintf("updated total from %.2f to %.2f", bill.TotalAmount, total))
	}

	updated, err := s.bills.Apply(ctx, billID, patch, now)
	if err != nil {
		return nil, err
	}
	result.Refreshed = true
	if len(result.UpdatesApplied) == 0 {
		result.UpdatesApplied = append(result.UpdatesApplied, "refreshed bill data from external services")
	}
	s.relay.Publish("bill", "updated", updated)

	logrus.WithFields(logrus.Fields{
		"bill_id": billID,
		"updates": len(result.UpdatesApplied),
	}).Info("bill refreshed")
	return result, nil
}
