package model

import "testing"

func TestBillID(t *testing.T) {
	if got := BillID("o1"); got != "bill-o1" {
		t.Fatalf("BillID(o1) = %q", got)
	}
}

func TestBillTotal(t *testing.T) {
	b := Bill{Items: []BillItem{
		{ItemID: "pasta", Price: 50000, Quantity: 2},
		{ItemID: "tea", Price: 15000, Quantity: 1},
	}}
	if got := b.Total(); got != 115000 {
		t.Fatalf("Total() = %v, want 115000", got)
	}
}
