package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Reainz/restaurant-system/internal/model"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1,000"},
		{100000, "100,000"},
		{1234567, "1,234,567"},
		{50000.4, "50,000"},
	}
	for _, tc := range cases {
		if got := formatAmount(tc.in); got != tc.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReceiptHTML(t *testing.T) {
	f := newBillFixture()
	seedBill(t, f, model.Bill{
		BillID: "bill-o1", OrderID: "o1", TableID: "T3",
		Status: model.BillFinal, PaymentStatus: model.PaymentPending,
		Items: []model.BillItem{
			{ItemID: "pasta", Name: "Pasta", Price: 50000, Quantity: 2},
		},
		TotalAmount: 100000,
		CreatedAt:   time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC),
	})

	html, err := f.svc.ReceiptHTML(context.Background(), "bill-o1")
	if err != nil {
		t.Fatalf("ReceiptHTML: %v", err)
	}
	for _, want := range []string{
		"bill-o1", "T3", "o1",
		"Pasta", "50,000", "100,000 ₫",
		"2026-05-01 12:30:00",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("receipt missing %q", want)
		}
	}
}
