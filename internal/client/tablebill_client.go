package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Reainz/restaurant-system/internal/model"
)

// TableBillClient is the order service's view of the table/bill service.
type TableBillClient struct {
	baseURL string
	http    *http.Client
	tracker *Tracker
}

// NewTableBillClient returns a TableBillClient gated by the given tracker.
func NewTableBillClient(baseURL string, tracker *Tracker) *TableBillClient {
	return &TableBillClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		tracker: tracker,
	}
}

// AssignTable binds a table to a freshly placed order and marks it
// occupied. The assign endpoint provisions unknown tables on the fly, so
// an order for a table the registry has never seen still lands.
func (c *TableBillClient) AssignTable(ctx context.Context, tableID, orderID string) error {
	body, err := json.Marshal(model.TableAssignment{
		TableID: tableID,
		OrderID: orderID,
		Status:  model.TableOccupied,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/tables/assign", body)
}

// NotifyOrderStatus posts a terminal order status to the table/bill
// service, which reacts by generating or closing the bill.
func (c *TableBillClient) NotifyOrderStatus(ctx context.Context, orderID, status string) error {
	body, err := json.Marshal(model.OrderStatusNotification{OrderID: orderID, Status: status})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/orders/status", body)
}

func (c *TableBillClient) do(ctx context.Context, method, url string, body []byte) error {
	if !c.tracker.Available(ctx) {
		return fmt.Errorf("table/bill service: %w", ErrUnavailable)
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.tracker.ReportFailure()
		return fmt.Errorf("table/bill service: %w", ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.tracker.ReportSuccess()
		return fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode >= 400:
		c.tracker.ReportFailure()
		return fmt.Errorf("table/bill service returned %d: %w", resp.StatusCode, ErrUnavailable)
	}
	c.tracker.ReportSuccess()
	return nil
}
