package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// TableStore is the storage surface the table registry needs.
type TableStore interface {
	Insert(ctx context.Context, t *model.Table) error
	FindByID(ctx context.Context, tableID string) (*model.Table, error)
	FindByNumber(ctx context.Context, number int) (*model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	Update(ctx context.Context, tableID string, upd model.UpdateTable, now time.Time) (*model.Table, error)
	Delete(ctx context.Context, tableID string) error
}

// EventPublisher pushes webhook events for external listeners.
type EventPublisher interface {
	Publish(resource, event string, data interface{})
}

const defaultTableCapacity = 4

// tableRefPattern extracts the numeric part of a table reference:
// callers address tables as "T3", "table3" or plain "3" depending on
// which service they came from.
var tableRefPattern = regexp.MustCompile(`^(?:T|table)?([0-9]+)$`)

// TableService owns the table registry.
type TableService struct {
	store TableStore
	relay EventPublisher
	now   func() time.Time
}

// NewTableService wires a TableService.
func NewTableService(store TableStore, relay EventPublisher) *TableService {
	return &TableService{store: store, relay: relay, now: time.Now}
}

// List returns all tables.
func (s *TableService) List(ctx context.Context) ([]model.Table, error) {
	return s.store.List(ctx)
}

// Get fetches one table, resolving loose references the same way Assign
// does.
func (s *TableService) Get(ctx context.Context, ref string) (*model.Table, error) {
	return s.resolve(ctx, ref)
}

// Create registers a new table. A duplicate table number is not an
// error: the existing table is returned so provisioning is idempotent.
func (s *TableService) Create(ctx context.Context, req model.CreateTable) (*model.Table, error) {
	if req.TableNumber <= 0 {
		return nil, fmt.Errorf("%w: table_number must be positive", model.ErrValidation)
	}
	capacity := req.Capacity
	if capacity <= 0 {
		capacity = defaultTableCapacity
	}

	now := s.now().UTC()
	table := &model.Table{
		TableID:     fmt.Sprintf("table%d", req.TableNumber),
		TableNumber: req.TableNumber,
		Status:      model.TableAvailable,
		Capacity:    capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.Insert(ctx, table)
	if errors.Is(err, repository.ErrConflict) {
		return s.store.FindByNumber(ctx, req.TableNumber)
	}
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Update applies a partial table update. A status, when given, must
// belong to the closed status set.
func (s *TableService) Update(ctx context.Context, ref string, upd model.UpdateTable) (*model.Table, error) {
	if upd.Status != nil && !model.ValidTableStatus(*upd.Status) {
		return nil, fmt.Errorf("%w: invalid table status %q", model.ErrValidation, *upd.Status)
	}
	table, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, table.TableID, upd, s.now().UTC())
}

// UpdateStatus changes a table's occupancy state. Moving back to
// available clears the order reference.
func (s *TableService) UpdateStatus(ctx context.Context, ref, status string) (*model.Table, error) {
	if !model.ValidTableStatus(status) {
		return nil, fmt.Errorf("%w: invalid table status %q", model.ErrValidation, status)
	}
	table, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	upd := model.UpdateTable{Status: &status}
	if status == model.TableAvailable {
		empty := ""
		upd.OrderID = &empty
	}
	updated, err := s.store.Update(ctx, table.TableID, upd, s.now().UTC())
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"table_id": updated.TableID,
		"status":   status,
	}).Info("table status updated")
	return updated, nil
}

// Delete removes a table from the registry.
func (s *TableService) Delete(ctx context.Context, ref string) error {
	table, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, table.TableID)
}

// Assign binds a table to an order, creating the table on the fly when
// the reference is numeric and no such table exists yet. Orders arrive
// with "T<n>" references while the registry provisions "table<n>" ids,
// so assignment is where the two schemes meet.
func (s *TableService) Assign(ctx context.Context, req model.TableAssignment) (*model.Table, error) {
	if req.TableID == "" || req.OrderID == "" {
		return nil, fmt.Errorf("%w: table_id and order_id are required", model.ErrValidation)
	}
	status := req.Status
	if status == "" {
		status = model.TableOccupied
	}
	if !model.ValidTableStatus(status) {
		return nil, fmt.Errorf("%w: invalid table status %q", model.ErrValidation, status)
	}

	table, err := s.resolve(ctx, req.TableID)
	if errors.Is(err, repository.ErrNotFound) {
		table, err = s.provision(ctx, req.TableID)
	}
	if err != nil {
		return nil, err
	}

	upd := model.UpdateTable{Status: &status, OrderID: &req.OrderID}
	updated, err := s.store.Update(ctx, table.TableID, upd, s.now().UTC())
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"table_id": updated.TableID,
		"order_id": req.OrderID,
		"status":   status,
	}).Info("table assigned")
	return updated, nil
}

// resolve finds a table by exact id first, then by the numeric part of a
// loose reference ("T3", "table3", "3") via the canonical id and the
// table number.
func (s *TableService) resolve(ctx context.Context, ref string) (*model.Table, error) {
	table, err := s.store.FindByID(ctx, ref)
	if err == nil || !errors.Is(err, repository.ErrNotFound) {
		return table, err
	}
	m := tableRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return nil, fmt.Errorf("table %s: %w", ref, repository.ErrNotFound)
	}
	number, _ := strconv.Atoi(m[1])

	canonical := fmt.Sprintf("table%d", number)
	if canonical != ref {
		if table, err = s.store.FindByID(ctx, canonical); err == nil {
			return table, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return s.store.FindByNumber(ctx, number)
}

// provision creates a table for a numeric reference that resolved to
// nothing.
func (s *TableService) provision(ctx context.Context, ref string) (*model.Table, error) {
	m := tableRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return nil, fmt.Errorf("table %s: %w", ref, repository.ErrNotFound)
	}
	number, _ := strconv.Atoi(m[1])
	logrus.WithField("table_id", ref).Info("auto-provisioning table for assignment")
	return s.Create(ctx, model.CreateTable{TableNumber: number, Capacity: defaultTableCapacity})
}
