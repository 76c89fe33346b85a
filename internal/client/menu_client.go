package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Reainz/restaurant-system/internal/model"
)

// MenuClient fetches catalog entries from the menu service.
type MenuClient struct {
	baseURL string
	http    *http.Client
	tracker *Tracker
}

// NewMenuClient returns a MenuClient gated by the given tracker.
func NewMenuClient(baseURL string, tracker *Tracker) *MenuClient {
	return &MenuClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		tracker: tracker,
	}
}

// FetchItem retrieves one catalog item by id. Contract mirrors
// OrderClient.FetchOrder: ErrUnavailable when the menu service is down or
// failing, ErrNotFound on 404.
func (c *MenuClient) FetchItem(ctx context.Context, itemID string) (*model.MenuItem, error) {
	if !c.tracker.Available(ctx) {
		return nil, fmt.Errorf("menu service: %w", ErrUnavailable)
	}

	url := fmt.Sprintf("%s/api/menu-items/%s", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.tracker.ReportFailure()
		return nil, fmt.Errorf("menu service: %w", ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.tracker.ReportSuccess()
		return nil, fmt.Errorf("menu item %s: %w", itemID, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.tracker.ReportFailure()
		return nil, fmt.Errorf("menu service returned %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var item model.MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		c.tracker.ReportFailure()
		return nil, fmt.Errorf("decode menu response: %w", err)
	}
	c.tracker.ReportSuccess()
	return &item, nil
}
