// SPDX-License-Identifier: MIT

package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/plantline/plantline/internal/lifecycle"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	customer_name TEXT NOT NULL DEFAULT '',
	item_code TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL DEFAULT 0,
	order_status TEXT NOT NULL DEFAULT '',
	lifecycle_status TEXT NOT NULL DEFAULT '',
	hold_overlay TEXT NOT NULL DEFAULT '',
	status_owner_role TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_lifecycle_status ON orders(lifecycle_status);

CREATE TABLE IF NOT EXISTS order_audit (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL REFERENCES orders(id),
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	acting_role TEXT NOT NULL,
	reason_code TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_audit_order ON order_audit(order_id);
`

// SQLStore is the SQLite-backed Service implementation. Status updates and
// their audit rows commit in the same transaction.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore bootstraps the schema and returns a ready store.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("orders: schema bootstrap failed: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

const orderColumns = `id, customer_name, item_code, quantity, order_status, lifecycle_status, hold_overlay, status_owner_role, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.ItemCode, &o.Quantity,
		&o.OrderStatus, &o.LifecycleStatus, &o.HoldOverlay, &o.StatusOwnerRole,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Get returns one order by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: get %s: %w", id, err)
	}
	return o, nil
}

// List returns a page of orders plus the total count after filtering. State
// filtering happens after normalization so legacy free-text rows land in the
// right queue; plant-scale working sets stay small enough for that.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, id`)
	if err != nil {
		return nil, 0, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var all []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("orders: list scan: %w", err)
		}
		all = append(all, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("orders: list: %w", err)
	}
	return pageOrders(filterOrders(all, filter.States), filter)
}

func filterOrders(all []Order, states []lifecycle.State) []Order {
	if len(states) == 0 {
		return all
	}
	wanted := make(map[lifecycle.State]struct{}, len(states))
	for _, st := range states {
		wanted[st] = struct{}{}
	}
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if _, ok := wanted[o.State()]; ok {
			out = append(out, o)
		}
	}
	return out
}

func pageOrders(filtered []Order, filter ListFilter) ([]Order, int, error) {
	total := len(filtered)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	start := (page - 1) * size
	if start >= total {
		return []Order{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

// Create inserts a new order, defaulting timestamps and status.
func (s *SQLStore) Create(ctx context.Context, order *Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.OrderStatus == "" && order.LifecycleStatus == "" {
		order.LifecycleStatus = string(lifecycle.StateDraft)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CustomerName, order.ItemCode, order.Quantity,
		order.OrderStatus, order.LifecycleStatus, order.HoldOverlay,
		order.StatusOwnerRole, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("orders: create %s: %w", order.ID, err)
	}
	return nil
}

// AdvanceStatus persists a lifecycle transition with its audit payload. A
// transition whose target equals the current state is a stale submission,
// reported as ErrConflict and never retried here.
func (s *SQLStore) AdvanceStatus(ctx context.Context, id string, target lifecycle.State, audit TransitionAudit) (*Order, error) {
	if !lifecycle.Known(target) {
		return nil, fmt.Errorf("orders: unknown target status %q", target)
	}
	return s.mutate(ctx, id, func(o *Order) (string, error) {
		if o.State() == target {
			return "", ErrConflict
		}
		o.LifecycleStatus = string(target)
		// Mirror the display label for legacy readers of order_status.
		o.OrderStatus = target.Label()
		return string(target), nil
	}, audit)
}

// SetHold places a hold overlay on the order.
func (s *SQLStore) SetHold(ctx context.Context, id, marker string, audit TransitionAudit) (*Order, error) {
	if marker == "" {
		marker = "HOLD"
	}
	return s.mutate(ctx, id, func(o *Order) (string, error) {
		o.HoldOverlay = marker
		return "HOLD:" + marker, nil
	}, audit)
}

// ClearHold removes the hold overlay.
func (s *SQLStore) ClearHold(ctx context.Context, id string, audit TransitionAudit) (*Order, error) {
	return s.mutate(ctx, id, func(o *Order) (string, error) {
		o.HoldOverlay = ""
		return "HOLD_CLEARED", nil
	}, audit)
}

// mutate runs a read-modify-write on one order and appends the audit row in
// the same transaction. apply returns the to_status recorded in the trail.
func (s *SQLStore) mutate(ctx context.Context, id string, apply func(*Order) (string, error), audit TransitionAudit) (*Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("orders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("orders: load %s: %w", id, err)
	}

	fromStatus := string(o.State())
	toStatus, err := apply(o)
	if err != nil {
		return nil, err
	}
	o.UpdatedAt = s.now().UTC()
	if audit.ActingRole != "" {
		o.StatusOwnerRole = audit.ActingRole
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET order_status = ?, lifecycle_status = ?, hold_overlay = ?, status_owner_role = ?, updated_at = ? WHERE id = ?`,
		o.OrderStatus, o.LifecycleStatus, o.HoldOverlay, o.StatusOwnerRole, o.UpdatedAt, o.ID)
	if err != nil {
		return nil, fmt.Errorf("orders: update %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_audit (id, order_id, from_status, to_status, acting_role, reason_code, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), o.ID, fromStatus, toStatus, audit.ActingRole, audit.ReasonCode, audit.Note, o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("orders: audit %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("orders: commit %s: %w", id, err)
	}
	return o, nil
}

// AuditTrail returns the audit rows for one order, oldest first.
func (s *SQLStore) AuditTrail(ctx context.Context, orderID string) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_id, from_status, to_status, acting_role, reason_code, note, created_at FROM order_audit WHERE order_id = ? ORDER BY created_at, id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: audit trail %s: %w", orderID, err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &e.ActingRole, &e.ReasonCode, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("orders: audit scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: audit trail %s: %w", orderID, err)
	}
	return entries, nil
}
