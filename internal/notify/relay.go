package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event is a webhook payload describing one state change in the
// table/bill service.
type Event struct {
	Service  string      `json:"service"`
	Resource string      `json:"resource"`
	Event    string      `json:"event"`
	EventID  string      `json:"event_id"`
	Data     interface{} `json:"data"`
}

// Relay publishes webhook events to a configured listener through the
// outbox. With no webhook URL configured the relay is a no-op, so
// callers never need to guard the publish.
type Relay struct {
	webhookURL string
	outbox     *Outbox
	http       *http.Client
}

// NewRelay returns a relay posting to webhookURL. An empty URL disables it.
func NewRelay(webhookURL string, outbox *Outbox) *Relay {
	return &Relay{
		webhookURL: webhookURL,
		outbox:     outbox,
		http:       &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish enqueues one webhook event.
func (r *Relay) Publish(resource, event string, data interface{}) {
	if r.webhookURL == "" {
		return
	}
	payload := Event{
		Service:  "table-bill",
		Resource: resource,
		Event:    event,
		EventID:  uuid.NewString(),
		Data:     data,
	}
	name := fmt.Sprintf("webhook %s.%s", resource, event)
	r.outbox.Enqueue(Job{
		Name: name,
		Run: func(ctx context.Context) error {
			return r.post(ctx, payload)
		},
	})
	logrus.WithFields(logrus.Fields{
		"resource": resource,
		"event":    event,
		"event_id": payload.EventID,
	}).Debug("webhook event queued")
}

func (r *Relay) post(ctx context.Context, payload Event) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook listener returned %d", resp.StatusCode)
	}
	return nil
}
