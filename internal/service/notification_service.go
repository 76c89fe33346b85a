package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// NotificationService reacts to order status notifications posted by the
// order service. The handler is idempotent: replaying a notification
// finds the work already done and reports the same outcome.
type NotificationService struct {
	bills     BillStore
	billSvc   *BillService
	refresher Refresher
	now       func() time.Time
}

// NewNotificationService wires a NotificationService.
func NewNotificationService(bills BillStore, billSvc *BillService, refresher Refresher) *NotificationService {
	return &NotificationService{bills: bills, billSvc: billSvc, refresher: refresher, now: time.Now}
}

// Handle processes one order status notification. Notification handling
// never fails the caller for business reasons; the returned message
// describes what happened so the order service's fire-and-forget
// delivery stays cheap. Only storage failures surface as errors.
func (s *NotificationService) Handle(ctx context.Context, n model.OrderStatusNotification) (string, error) {
	logrus.WithFields(logrus.Fields{
		"order_id": n.OrderID,
		"status":   n.Status,
	}).Info("order status notification received")

	existing, err := s.bills.FindByOrderID(ctx, n.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		if n.Status != string(model.OrderCompleted) {
			return fmt.Sprintf("no bill found for order %s, status is %s", n.OrderID, n.Status), nil
		}
		if _, _, cerr := s.billSvc.CreateFromOrder(ctx, n.OrderID); cerr != nil {
			logrus.WithFields(logrus.Fields{
				"order_id": n.OrderID,
				"error":    cerr,
			}).Error("automatic bill creation failed")
			return fmt.Sprintf("failed to automatically create bill: %v", cerr), nil
		}
		return fmt.Sprintf("bill created for completed order %s", n.OrderID), nil
	}
	if err != nil {
		return "", err
	}

	switch n.Status {
	case string(model.OrderCancelled):
		if existing.Status == model.BillOpen {
			cancelled := model.BillCancelled
			if _, err := s.bills.Apply(ctx, existing.BillID, repository.BillPatch{Status: &cancelled}, s.now().UTC()); err != nil {
				return "", err
			}
			logrus.WithField("bill_id", existing.BillID).Info("bill cancelled after order cancellation")
		}
		return fmt.Sprintf("bills updated for cancelled order %s", n.OrderID), nil

	case string(model.OrderCompleted):
		if existing.Status == model.BillOpen {
			// Pull the latest order and catalog state before sealing
			// the bill; a refresh failure is not fatal here.
			if _, err := s.refresher.ForceRefresh(ctx, existing.BillID); err != nil {
				logrus.WithFields(logrus.Fields{
					"bill_id": existing.BillID,
					"error":   err,
				}).Warn("could not refresh bill before finalizing")
			}
			final := model.BillFinal
			if _, err := s.bills.Apply(ctx, existing.BillID, repository.BillPatch{Status: &final}, s.now().UTC()); err != nil {
				return "", err
			}
			logrus.WithField("bill_id", existing.BillID).Info("bill finalized after order completion")
		}
		return fmt.Sprintf("bills updated for completed order %s", n.OrderID), nil
	}
	return fmt.Sprintf("order status %s processed for existing bill", n.Status), nil
}
