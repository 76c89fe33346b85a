package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/notify"
	"github.com/Reainz/restaurant-system/internal/repository"
)

type fakePeer struct {
	mu       sync.Mutex
	assigns  []string
	notifies []string
	calls    chan string
}

func newFakePeer() *fakePeer {
	return &fakePeer{calls: make(chan string, 16)}
}

func (p *fakePeer) AssignTable(_ context.Context, tableID, orderID string) error {
	p.mu.Lock()
	p.assigns = append(p.assigns, tableID+":"+orderID)
	p.mu.Unlock()
	p.calls <- "assign"
	return nil
}

func (p *fakePeer) NotifyOrderStatus(_ context.Context, orderID, status string) error {
	p.mu.Lock()
	p.notifies = append(p.notifies, orderID+":"+status)
	p.mu.Unlock()
	p.calls <- "notify"
	return nil
}

func (p *fakePeer) waitCall(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-p.calls:
		if got != want {
			t.Fatalf("peer call = %s, want %s", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for peer call %s", want)
	}
}

func newOrderFixture(t *testing.T) (*OrderService, *fakeOrderStore, *fakePeer) {
	t.Helper()
	store := newFakeOrderStore()
	peer := newFakePeer()
	outbox := notify.NewOutbox(16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	outbox.Start(ctx)
	return NewOrderService(store, peer, outbox), store, peer
}

func TestCreateOrderAssignsTable(t *testing.T) {
	svc, store, peer := newOrderFixture(t)

	order, err := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.Status != model.OrderReceived {
		t.Fatalf("new order status = %s, want received", order.Status)
	}
	if order.Items[0].Status != model.ItemPending {
		t.Fatalf("new item status = %s, want pending", order.Items[0].Status)
	}
	if _, err := store.FindByID(context.Background(), order.OrderID); err != nil {
		t.Fatalf("order not stored: %v", err)
	}

	peer.waitCall(t, "assign")
	peer.mu.Lock()
	defer peer.mu.Unlock()
	if len(peer.assigns) != 1 || peer.assigns[0] != "T3:"+order.OrderID {
		t.Fatalf("assigns = %v", peer.assigns)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	_, err := svc.Create(context.Background(), model.CreateOrder{TableID: "3"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestUpdateStatusWalksLifecycle(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 2}},
	})
	peer.waitCall(t, "assign")

	for _, next := range []string{"in-progress", "ready", "delivered", "completed"} {
		updated, err := svc.UpdateStatus(context.Background(), order.OrderID, next)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if string(updated.Status) != next {
			t.Fatalf("status = %s, want %s", updated.Status, next)
		}
	}

	// completed is terminal and must have notified the peer
	peer.waitCall(t, "notify")
	peer.mu.Lock()
	notified := append([]string(nil), peer.notifies...)
	peer.mu.Unlock()
	if len(notified) != 1 || notified[0] != order.OrderID+":completed" {
		t.Fatalf("notifies = %v", notified)
	}
}

func TestUpdateStatusRejectsJumps(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	})
	peer.waitCall(t, "assign")

	for _, target := range []string{"ready", "delivered", "completed", "paused"} {
		_, err := svc.UpdateStatus(context.Background(), order.OrderID, target)
		if !errors.Is(err, model.ErrInvalidTransition) {
			t.Errorf("received -> %s: want ErrInvalidTransition, got %v", target, err)
		}
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	})
	peer.waitCall(t, "assign")

	first, err := svc.Cancel(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	second, err := svc.Cancel(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("second cancel must succeed: %v", err)
	}
	if first.Status != model.OrderCancelled || second.Status != model.OrderCancelled {
		t.Fatalf("statuses = %s, %s", first.Status, second.Status)
	}
}

func TestCancelCompletedRefused(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	})
	peer.waitCall(t, "assign")
	for _, next := range []string{"in-progress", "ready", "delivered", "completed"} {
		if _, err := svc.UpdateStatus(context.Background(), order.OrderID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	peer.waitCall(t, "notify")

	if _, err := svc.Cancel(context.Background(), order.OrderID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("cancel after completed: want ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateAppliesBothFields(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	})
	peer.waitCall(t, "assign")

	updated, err := svc.Update(context.Background(), order.OrderID, model.UpdateOrder{
		SpecialInstructions: ptr("no onions"),
		Status:              ptr("in-progress"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.SpecialInstructions != "no onions" || updated.Status != model.OrderInProgress {
		t.Fatalf("updated order = %+v", updated)
	}
}

func TestUpdateRejectedStatusWritesNothing(t *testing.T) {
	svc, store, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	})
	peer.waitCall(t, "assign")

	_, err := svc.Update(context.Background(), order.OrderID, model.UpdateOrder{
		SpecialInstructions: ptr("no onions"),
		Status:              ptr("completed"),
	})
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}

	stored, _ := store.FindByID(context.Background(), order.OrderID)
	if stored.SpecialInstructions != "" {
		t.Fatalf("instructions persisted despite rejected update: %q", stored.SpecialInstructions)
	}
	if stored.Status != model.OrderReceived {
		t.Fatalf("status = %s, want received", stored.Status)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	if _, err := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	peer.waitCall(t, "assign")
	second, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T4",
		Items:   []model.OrderItem{{ItemID: "tea", Quantity: 1}},
	})
	peer.waitCall(t, "assign")
	if _, err := svc.UpdateStatus(context.Background(), second.OrderID, "in-progress"); err != nil {
		t.Fatal(err)
	}

	active, err := svc.List(context.Background(), repository.OrderFilter{
		Statuses: []model.OrderStatus{model.OrderInProgress},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].OrderID != second.OrderID {
		t.Fatalf("filtered orders = %+v", active)
	}
}

func TestUpdateItemIndependentOfLifecycle(t *testing.T) {
	svc, _, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}, {ItemID: "tea", Quantity: 2}},
	})
	peer.waitCall(t, "assign")

	updated, err := svc.UpdateItem(context.Background(), order.OrderID, "tea", model.UpdateOrderItem{
		Status: ptr(model.ItemCompleted),
		Notes:  ptr("no sugar"),
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Items[1].Status != model.ItemCompleted || updated.Items[1].Notes != "no sugar" {
		t.Fatalf("item not updated: %+v", updated.Items[1])
	}
	if updated.Status != model.OrderReceived {
		t.Fatalf("order status moved to %s, item updates must not touch it", updated.Status)
	}

	if _, err := svc.UpdateItem(context.Background(), order.OrderID, "tea", model.UpdateOrderItem{
		Status: ptr("eaten"),
	}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("unknown item status: want ErrValidation, got %v", err)
	}
}

func TestDeleteOnlyWhileReceived(t *testing.T) {
	svc, store, peer := newOrderFixture(t)
	order, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T3",
		Items:   []model.OrderItem{{ItemID: "pasta", Quantity: 1}},
	})
	peer.waitCall(t, "assign")

	if _, err := svc.UpdateStatus(context.Background(), order.OrderID, "in-progress"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), order.OrderID); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("delete of in-progress order: want ErrPrecondition, got %v", err)
	}

	fresh, _ := svc.Create(context.Background(), model.CreateOrder{
		TableID: "T4",
		Items:   []model.OrderItem{{ItemID: "tea", Quantity: 1}},
	})
	peer.waitCall(t, "assign")
	if err := svc.Delete(context.Background(), fresh.OrderID); err != nil {
		t.Fatalf("delete of received order: %v", err)
	}
	if _, err := store.FindByID(context.Background(), fresh.OrderID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("order still present after delete: %v", err)
	}
}
