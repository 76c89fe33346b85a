package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Reainz/restaurant-system/internal/client"
	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// In-memory stand-ins for the Mongo repositories and the HTTP clients.
// They implement just enough of the contracts for the rules under test,
// including the sentinel errors the real implementations return.

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*model.Order{}}
}

func (s *fakeOrderStore) Insert(_ context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.OrderID]; ok {
		return repository.ErrConflict
	}
	cp := *o
	s.orders[o.OrderID] = &cp
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) Find(_ context.Context, f repository.OrderFilter) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if f.TableID != "" && o.TableID != f.TableID {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, st := range f.Statuses {
				if o.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id string, status model.OrderStatus, now time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = now
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) UpdateInstructions(_ context.Context, id, instructions string, now time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.SpecialInstructions = instructions
	o.UpdatedAt = now
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) UpdateItem(_ context.Context, id string, index int, upd model.UpdateOrderItem, now time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || index < 0 || index >= len(o.Items) {
		return nil, repository.ErrNotFound
	}
	if upd.Status != nil {
		o.Items[index].Status = *upd.Status
	}
	if upd.Notes != nil {
		o.Items[index].Notes = *upd.Notes
	}
	o.UpdatedAt = now
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id string, requiredStatus model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != requiredStatus {
		return repository.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

type fakeBillStore struct {
	mu    sync.Mutex
	bills map[string]*model.Bill
}

func newFakeBillStore() *fakeBillStore {
	return &fakeBillStore{bills: map[string]*model.Bill{}}
}

func (s *fakeBillStore) Insert(_ context.Context, b *model.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[b.BillID]; ok {
		return repository.ErrConflict
	}
	for _, other := range s.bills {
		if other.OrderID == b.OrderID {
			return repository.ErrConflict
		}
	}
	cp := *b
	s.bills[b.BillID] = &cp
	return nil
}

func (s *fakeBillStore) FindByID(_ context.Context, id string) (*model.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBillStore) FindByOrderID(_ context.Context, orderID string) (*model.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bills {
		if b.OrderID == orderID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeBillStore) Find(_ context.Context, f repository.BillFilter) ([]model.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Bill
	for _, b := range s.bills {
		if f.TableID != "" && b.TableID != f.TableID {
			continue
		}
		if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, st := range f.Statuses {
				if b.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *b)
	}
	return out, nil
}

func (s *fakeBillStore) Apply(_ context.Context, id string, p repository.BillPatch, now time.Time) (*model.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.TotalAmount != nil {
		b.TotalAmount = *p.TotalAmount
	}
	if p.Items != nil {
		b.Items = append([]model.BillItem(nil), (*p.Items)...)
	}
	if p.TableID != nil {
		b.TableID = *p.TableID
	}
	if p.LastRefreshed != nil {
		t := *p.LastRefreshed
		b.LastRefreshed = &t
	}
	if p.LastReconciled != nil {
		t := *p.LastReconciled
		b.LastReconciled = &t
	}
	b.UpdatedAt = now
	cp := *b
	return &cp, nil
}

func (s *fakeBillStore) CountActiveForTable(_ context.Context, tableID, excludeBillID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, b := range s.bills {
		if b.TableID != tableID || b.BillID == excludeBillID {
			continue
		}
		for _, st := range model.ActiveBillStatuses {
			if b.Status == st {
				n++
			}
		}
	}
	return n, nil
}

type fakeTableStore struct {
	mu     sync.Mutex
	tables map[string]*model.Table
}

func newFakeTableStore() *fakeTableStore {
	return &fakeTableStore{tables: map[string]*model.Table{}}
}

func (s *fakeTableStore) Insert(_ context.Context, t *model.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[t.TableID]; ok {
		return repository.ErrConflict
	}
	for _, other := range s.tables {
		if other.TableNumber == t.TableNumber {
			return repository.ErrConflict
		}
	}
	cp := *t
	s.tables[t.TableID] = &cp
	return nil
}

func (s *fakeTableStore) FindByID(_ context.Context, id string) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTableStore) FindByNumber(_ context.Context, number int) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		if t.TableNumber == number {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeTableStore) List(_ context.Context) ([]model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Table
	for _, t := range s.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeTableStore) Update(_ context.Context, id string, upd model.UpdateTable, now time.Time) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.TableNumber != nil {
		t.TableNumber = *upd.TableNumber
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Capacity != nil {
		t.Capacity = *upd.Capacity
	}
	if upd.OrderID != nil {
		if *upd.OrderID == "" {
			t.OrderID = nil
		} else {
			id := *upd.OrderID
			t.OrderID = &id
		}
	}
	t.UpdatedAt = now
	cp := *t
	return &cp, nil
}

func (s *fakeTableStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tables, id)
	return nil
}

// fakeOrderClient serves orders the way the HTTP client would, sentinel
// errors included.
type fakeOrderClient struct {
	orders map[string]*model.Order
	down   bool
}

func (c *fakeOrderClient) FetchOrder(_ context.Context, orderID string) (*model.Order, error) {
	if c.down {
		return nil, fmt.Errorf("order service: %w", client.ErrUnavailable)
	}
	o, ok := c.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, client.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

type fakeMenuClient struct {
	items map[string]*model.MenuItem
	down  bool
}

func (c *fakeMenuClient) FetchItem(_ context.Context, itemID string) (*model.MenuItem, error) {
	if c.down {
		return nil, fmt.Errorf("menu service: %w", client.ErrUnavailable)
	}
	item, ok := c.items[itemID]
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", itemID, client.ErrNotFound)
	}
	cp := *item
	return &cp, nil
}

type relayEvent struct {
	resource string
	event    string
}

type fakeRelay struct {
	mu     sync.Mutex
	events []relayEvent
}

func (r *fakeRelay) Publish(resource, event string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, relayEvent{resource: resource, event: event})
}

func (r *fakeRelay) has(resource, event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.resource == resource && e.event == event {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
