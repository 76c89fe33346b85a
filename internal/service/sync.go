package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// Refresher is the single consistency operation the background sync
// drives.
type Refresher interface {
	ForceRefresh(ctx context.Context, billID string) (*model.RefreshResult, error)
}

// Syncer periodically refreshes every active bill from the live order
// and catalog state, so bills converge even when a webhook notification
// was lost. Per-bill failures are logged and skipped; a failing cycle
// retries on a shorter interval.
type Syncer struct {
	bills        BillStore
	refresher    Refresher
	interval     time.Duration
	retryAfter   time.Duration
	perBillDelay time.Duration
}

// NewSyncer wires a Syncer with the given cycle interval. The
// retry-after-error interval is half of it and successive bills are
// spaced out to keep the refresh load off the peers.
func NewSyncer(bills BillStore, refresher Refresher, interval time.Duration) *Syncer {
	return &Syncer{
		bills:        bills,
		refresher:    refresher,
		interval:     interval,
		retryAfter:   interval / 2,
		perBillDelay: 500 * time.Millisecond,
	}
}

// Run loops until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	logrus.WithField("interval", s.interval).Info("bill sync started")
	for {
		wait := s.interval
		if err := s.cycle(ctx); err != nil {
			logrus.WithField("error", err).Error("bill sync cycle failed")
			wait = s.retryAfter
		}
		select {
		case <-ctx.Done():
			logrus.Info("bill sync stopped")
			return
		case <-time.After(wait):
		}
	}
}

func (s *Syncer) cycle(ctx context.Context) error {
	bills, err := s.bills.Find(ctx, repository.BillFilter{Statuses: model.ActiveBillStatuses})
	if err != nil {
		return err
	}
	for _, bill := range bills {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := s.refresher.ForceRefresh(ctx, bill.BillID); err != nil {
			logrus.WithFields(logrus.Fields{
				"bill_id": bill.BillID,
				"error":   err,
			}).Error("bill refresh failed, skipping")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.perBillDelay):
		}
	}
	logrus.WithField("bills", len(bills)).Debug("bill sync cycle finished")
	return nil
}
