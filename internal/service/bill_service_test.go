package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Reainz/restaurant-system/internal/model"
)

type billFixture struct {
	svc    *BillService
	bills  *fakeBillStore
	tables *fakeTableStore
	orders *fakeOrderClient
	menu   *fakeMenuClient
	relay  *fakeRelay
}

func newBillFixture() *billFixture {
	f := &billFixture{
		bills:  newFakeBillStore(),
		tables: newFakeTableStore(),
		orders: &fakeOrderClient{orders: map[string]*model.Order{}},
		menu:   &fakeMenuClient{items: map[string]*model.MenuItem{}},
		relay:  &fakeRelay{},
	}
	registry := NewTableService(f.tables, f.relay)
	f.svc = NewBillService(f.bills, registry, f.orders, f.menu, f.relay)
	return f
}

func (f *billFixture) addOrder(id, tableID string, status model.OrderStatus, items ...model.OrderItem) {
	f.orders.orders[id] = &model.Order{OrderID: id, TableID: tableID, Status: status, Items: items}
}

func TestCreateBillScenario(t *testing.T) {
	// Order o1 on T3 with 2x pasta at a captured price of 50000 and no
	// catalog entry: the bill totals 100000 and holds the table until
	// payment.
	f := newBillFixture()
	f.addOrder("o1", "T3", model.OrderCompleted,
		model.OrderItem{ItemID: "pasta", Name: "Pasta", Quantity: 2, Price: ptr(50000.0)})

	bill, created, err := f.svc.CreateFromOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("CreateFromOrder: %v", err)
	}
	if !created {
		t.Fatal("expected a new bill")
	}
	if bill.BillID != "bill-o1" {
		t.Fatalf("bill id = %s", bill.BillID)
	}
	if bill.TotalAmount != 100000 {
		t.Fatalf("total = %v, want 100000", bill.TotalAmount)
	}
	if !f.relay.has("bill", "created") {
		t.Fatal("bill created event not published")
	}

	table, err := f.tables.FindByNumber(context.Background(), 3)
	if err != nil {
		t.Fatalf("table not provisioned: %v", err)
	}
	if table.Status != model.TableOccupied {
		t.Fatalf("table status = %s, want occupied", table.Status)
	}

	if _, err := f.svc.UpdatePaymentStatus(context.Background(), bill.BillID, model.PaymentPaid); err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}
	table, _ = f.tables.FindByNumber(context.Background(), 3)
	if table.Status != model.TableAvailable {
		t.Fatalf("table status after payment = %s, want available", table.Status)
	}
}

func TestCreateBillIdempotent(t *testing.T) {
	f := newBillFixture()
	f.menu.items["pasta"] = &model.MenuItem{ID: "pasta", Name: "Pasta", Price: 60000}
	f.addOrder("o1", "T3", model.OrderCompleted,
		model.OrderItem{ItemID: "pasta", Name: "Pasta", Quantity: 2, Price: ptr(50000.0)})

	first, created, err := f.svc.CreateFromOrder(context.Background(), "o1")
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	// catalog price wins over the order's captured price
	if first.TotalAmount != 120000 {
		t.Fatalf("total = %v, want 120000 from catalog price", first.TotalAmount)
	}

	second, created, err := f.svc.CreateFromOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created {
		t.Fatal("second call must not create")
	}
	if second.BillID != first.BillID || second.TotalAmount != first.TotalAmount {
		t.Fatalf("second call returned a different bill: %+v vs %+v", second, first)
	}
	if n := len(f.bills.bills); n != 1 {
		t.Fatalf("store holds %d bills, want 1", n)
	}
}

func TestCreateBillRequiresCompletedOrder(t *testing.T) {
	f := newBillFixture()
	f.addOrder("o1", "T3", model.OrderInProgress,
		model.OrderItem{ItemID: "pasta", Quantity: 1, Price: ptr(50000.0)})

	_, _, err := f.svc.CreateFromOrder(context.Background(), "o1")
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("want ErrPrecondition, got %v", err)
	}
	if len(f.bills.bills) != 0 {
		t.Fatal("no bill may be written on a failed precondition")
	}
}

func TestSplitBillingCountBasedRelease(t *testing.T) {
	// Two bills share table T7; the table is released only when the
	// second one is paid.
	f := newBillFixture()
	f.addOrder("o7a", "T7", model.OrderCompleted,
		model.OrderItem{ItemID: "pasta", Quantity: 1, Price: ptr(50000.0)})
	f.addOrder("o7b", "T7", model.OrderCompleted,
		model.OrderItem{ItemID: "tea", Quantity: 1, Price: ptr(15000.0)})

	a, _, err := f.svc.CreateFromOrder(context.Background(), "o7a")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := f.svc.CreateFromOrder(context.Background(), "o7b")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.UpdatePaymentStatus(context.Background(), a.BillID, model.PaymentPaid); err != nil {
		t.Fatal(err)
	}
	table, _ := f.tables.FindByNumber(context.Background(), 7)
	if table.Status != model.TableOccupied {
		t.Fatalf("table released too early, status = %s", table.Status)
	}

	if _, err := f.svc.UpdatePaymentStatus(context.Background(), b.BillID, model.PaymentPaid); err != nil {
		t.Fatal(err)
	}
	table, _ = f.tables.FindByNumber(context.Background(), 7)
	if table.Status != model.TableAvailable {
		t.Fatalf("table not released after last payment, status = %s", table.Status)
	}
	if !f.relay.has("table", "released") {
		t.Fatal("table released event not published")
	}
}

func TestPaymentPromotesBillStatus(t *testing.T) {
	f := newBillFixture()
	f.addOrder("o1", "T3", model.OrderCompleted,
		model.OrderItem{ItemID: "pasta", Quantity: 1, Price: ptr(50000.0)})

	bill, _, err := f.svc.CreateFromOrder(context.Background(), "o1")
	if err != nil {
		t.Fatal(err)
	}
	paid, err := f.svc.UpdatePaymentStatus(context.Background(), bill.BillID, model.PaymentPaid)
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != model.BillPaid || paid.PaymentStatus != model.PaymentPaid {
		t.Fatalf("bill after payment: status=%s payment=%s", paid.Status, paid.PaymentStatus)
	}

	if _, err := f.svc.UpdatePaymentStatus(context.Background(), bill.BillID, "settled"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("unknown payment token: want ErrValidation, got %v", err)
	}
}
