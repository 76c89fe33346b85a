package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Reainz/restaurant-system/internal/model"
)

// OrderClient fetches orders from the order service.
type OrderClient struct {
	baseURL string
	http    *http.Client
	tracker *Tracker
}

// NewOrderClient returns an OrderClient gated by the given tracker.
func NewOrderClient(baseURL string, tracker *Tracker) *OrderClient {
	return &OrderClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		tracker: tracker,
	}
}

// FetchOrder retrieves one order by id. It returns ErrUnavailable without
// touching the network when the order service is considered down, and
// ErrNotFound when the service answers 404.
func (c *OrderClient) FetchOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if !c.tracker.Available(ctx) {
		return nil, fmt.Errorf("order service: %w", ErrUnavailable)
	}

	url := fmt.Sprintf("%s/api/orders/%s", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.tracker.ReportFailure()
		return nil, fmt.Errorf("order service: %w", ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.tracker.ReportSuccess()
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.tracker.ReportFailure()
		return nil, fmt.Errorf("order service returned %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var order model.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		c.tracker.ReportFailure()
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	c.tracker.ReportSuccess()
	return &order, nil
}
