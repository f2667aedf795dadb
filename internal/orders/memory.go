// SPDX-License-Identifier: MIT

package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantline/plantline/internal/lifecycle"
)

// MemStore is an in-memory Service implementation with the same semantics as
// SQLStore. Used by tests and as a fallback when no database is configured.
type MemStore struct {
	mu     sync.RWMutex
	orders map[string]Order
	trail  map[string][]AuditEntry
	now    func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		orders: make(map[string]Order),
		trail:  make(map[string][]AuditEntry),
		now:    time.Now,
	}
}

// SetClock overrides the store clock. Test hook.
func (s *MemStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemStore) Get(_ context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *MemStore) List(_ context.Context, filter ListFilter) ([]Order, int, error) {
	s.mu.RLock()
	all := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		all = append(all, o)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return pageOrders(filterOrders(all, filter.States), filter)
}

func (s *MemStore) Create(_ context.Context, order *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("orders: duplicate id %s", order.ID)
	}
	now := s.now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.OrderStatus == "" && order.LifecycleStatus == "" {
		order.LifecycleStatus = string(lifecycle.StateDraft)
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *MemStore) AdvanceStatus(_ context.Context, id string, target lifecycle.State, audit TransitionAudit) (*Order, error) {
	if !lifecycle.Known(target) {
		return nil, fmt.Errorf("orders: unknown target status %q", target)
	}
	return s.mutate(id, func(o *Order) (string, error) {
		if o.State() == target {
			return "", ErrConflict
		}
		o.LifecycleStatus = string(target)
		o.OrderStatus = target.Label()
		return string(target), nil
	}, audit)
}

func (s *MemStore) SetHold(_ context.Context, id, marker string, audit TransitionAudit) (*Order, error) {
	if marker == "" {
		marker = "HOLD"
	}
	return s.mutate(id, func(o *Order) (string, error) {
		o.HoldOverlay = marker
		return "HOLD:" + marker, nil
	}, audit)
}

func (s *MemStore) ClearHold(_ context.Context, id string, audit TransitionAudit) (*Order, error) {
	return s.mutate(id, func(o *Order) (string, error) {
		o.HoldOverlay = ""
		return "HOLD_CLEARED", nil
	}, audit)
}

func (s *MemStore) mutate(id string, apply func(*Order) (string, error), audit TransitionAudit) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	fromStatus := string(o.State())
	toStatus, err := apply(&o)
	if err != nil {
		return nil, err
	}
	o.UpdatedAt = s.now().UTC()
	if audit.ActingRole != "" {
		o.StatusOwnerRole = audit.ActingRole
	}
	s.orders[id] = o
	s.trail[id] = append(s.trail[id], AuditEntry{
		ID:         uuid.NewString(),
		OrderID:    id,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		ActingRole: audit.ActingRole,
		ReasonCode: audit.ReasonCode,
		Note:       audit.Note,
		CreatedAt:  o.UpdatedAt,
	})
	return &o, nil
}

func (s *MemStore) AuditTrail(_ context.Context, orderID string) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]AuditEntry, len(s.trail[orderID]))
	copy(entries, s.trail[orderID])
	return entries, nil
}

var _ Service = (*MemStore)(nil)
var _ Service = (*SQLStore)(nil)
