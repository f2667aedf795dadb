// SPDX-License-Identifier: MIT

// Package orders is the persistence collaborator for sales orders. The
// guardrail engine never mutates an order directly; it asks this package to
// transition one and treats the returned row as the sole source of truth.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/plantline/plantline/internal/lifecycle"
)

// Order is a sales order as persisted. Rows written before the lifecycle
// migration carry only the legacy free-text OrderStatus; newer rows carry the
// canonical LifecycleStatus as well.
type Order struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customerName"`
	ItemCode        string    `json:"itemCode"`
	Quantity        int       `json:"quantity"`
	OrderStatus     string    `json:"orderStatus,omitempty"`
	LifecycleStatus string    `json:"orderLifecycleStatus,omitempty"`
	HoldOverlay     string    `json:"holdOverlay,omitempty"`
	StatusOwnerRole string    `json:"statusOwnerRole,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// State resolves the persisted status to a canonical lifecycle state. This is
// the single seam that absorbs the legacy-vs-canonical ambiguity; nothing
// downstream re-implements the fallback.
func (o *Order) State() lifecycle.State {
	raw := o.LifecycleStatus
	if raw == "" {
		raw = o.OrderStatus
	}
	return lifecycle.Normalize(raw)
}

// HasHold reports whether a hold overlay is present.
func (o *Order) HasHold() bool {
	return o.HoldOverlay != ""
}

// TransitionAudit is the evidence payload persisted alongside a status change.
type TransitionAudit struct {
	ActingRole string `json:"actingRole"`
	ReasonCode string `json:"reasonCode,omitempty"`
	Note       string `json:"note,omitempty"`
}

// AuditEntry is one row of the collaborator-side audit trail.
type AuditEntry struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ActingRole string    `json:"actingRole"`
	ReasonCode string    `json:"reasonCode,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListFilter narrows and pages a List call.
type ListFilter struct {
	States   []lifecycle.State // empty = all states
	Page     int               // 1-based, 0 treated as 1
	PageSize int               // 0 treated as DefaultPageSize
}

// DefaultPageSize bounds unpaged list calls.
const DefaultPageSize = 50

var (
	// ErrNotFound is returned when an order ID does not exist.
	ErrNotFound = errors.New("orders: order not found")
	// ErrConflict is returned when a transition arrives for an order that has
	// already advanced to the requested state. Callers surface it to the
	// user; it is never retried.
	ErrConflict = errors.New("orders: order already advanced")
)

// Service is the collaborator contract consumed by the transition executor
// and the queue board.
type Service interface {
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int, error)
	Create(ctx context.Context, order *Order) error
	AdvanceStatus(ctx context.Context, id string, target lifecycle.State, audit TransitionAudit) (*Order, error)
	SetHold(ctx context.Context, id, marker string, audit TransitionAudit) (*Order, error)
	ClearHold(ctx context.Context, id string, audit TransitionAudit) (*Order, error)
	AuditTrail(ctx context.Context, orderID string) ([]AuditEntry, error)
}
