// Package client holds the outbound HTTP clients the services use to
// talk to each other, together with the availability tracking that keeps
// a slow peer from dragging every request down with it.
package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable reports that the peer service is currently considered
// down and the call was skipped.
var ErrUnavailable = errors.New("service unavailable")

// ErrNotFound reports that the peer service answered 404 for the
// requested resource.
var ErrNotFound = errors.New("resource not found")

const (
	probeInterval    = 30 * time.Second
	failureThreshold = 3
	retryAfter       = 60 * time.Second
	requestTimeout   = 5 * time.Second
)

// Tracker records the observed health of one peer service. Callers ask
// Available before issuing a request and report the outcome afterwards;
// the tracker trips open after a run of consecutive failures and resets
// optimistically once enough time has passed, so a recovered peer is
// picked up without external intervention.
type Tracker struct {
	name    string
	baseURL string
	http    *http.Client
	now     func() time.Time

	mu          sync.Mutex
	failures    int
	lastProbe   time.Time
	lastFailure time.Time
	healthy     bool
}

// NewTracker returns a tracker for the service at baseURL. The health
// endpoint probed is baseURL + "/health".
func NewTracker(name, baseURL string) *Tracker {
	return &Tracker{
		name:    name,
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		now:     time.Now,
		healthy: true,
	}
}

// Available reports whether the peer should be called right now. It
// probes the health endpoint at most once per probe interval; between
// probes the last verdict stands. A tripped tracker flips back to
// healthy after the retry window, giving the peer the benefit of the
// doubt.
func (t *Tracker) Available(ctx context.Context) bool {
	t.mu.Lock()
	now := t.now()
	if !t.healthy {
		if now.Sub(t.lastFailure) < retryAfter {
			t.mu.Unlock()
			return false
		}
		t.healthy = true
		t.failures = 0
		logrus.WithField("service", t.name).Info("retry window elapsed, marking service available again")
	}
	if now.Sub(t.lastProbe) < probeInterval {
		verdict := t.healthy
		t.mu.Unlock()
		return verdict
	}
	t.lastProbe = now
	t.mu.Unlock()

	ok := t.probe(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		t.failures = 0
		t.healthy = true
	} else {
		t.recordFailureLocked()
	}
	return t.healthy
}

// ReportSuccess resets the failure streak after a successful call.
func (t *Tracker) ReportSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = 0
	t.healthy = true
}

// ReportFailure records a failed call against the peer.
func (t *Tracker) ReportFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordFailureLocked()
}

func (t *Tracker) recordFailureLocked() {
	t.failures++
	t.lastFailure = t.now()
	if t.failures >= failureThreshold && t.healthy {
		t.healthy = false
		logrus.WithFields(logrus.Fields{
			"service":  t.name,
			"failures": t.failures,
		}).Warn("marking service unavailable")
	}
}

func (t *Tracker) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
