// SPDX-License-Identifier: MIT

// Package board builds the per-role work queue: the orders a role is
// expected to act on next, each annotated with its suggested actions and the
// guard's verdict on them. The board is a pure projection over the order
// store; it never mutates anything.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/plantline/plantline/internal/cache"
	"github.com/plantline/plantline/internal/guardrail"
	"github.com/plantline/plantline/internal/lifecycle"
	"github.com/plantline/plantline/internal/metrics"
	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/telemetry"
)

// ActionView is one action offered on a card. Disabled suggestions are
// rendered greyed out with their reason, so the operator learns what is
// missing instead of hitting a dead button.
type ActionView struct {
	Action  guardrail.Action `json:"action"`
	Enabled bool             `json:"enabled"`
	Reason  string           `json:"reason,omitempty"`
	Target  lifecycle.State  `json:"targetStatus,omitempty"`
}

// Card pairs an order with the actions the viewing role can consider.
type Card struct {
	Order   orders.Order    `json:"order"`
	State   lifecycle.State `json:"status"`
	Actions []ActionView    `json:"actions"`
}

// Snapshot is one role's board at a point in time.
type Snapshot struct {
	Role        guardrail.Role `json:"role"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Total       int            `json:"total"`
	Cards       []Card         `json:"cards"`
}

// Service computes board snapshots, memoizing them for a short TTL. A stale
// board self-heals on the next refresh, so the TTL stays small.
type Service struct {
	store orders.Service
	cache cache.Cache
	ttl   time.Duration
}

// New returns a board service. A nil cache disables memoization.
func New(store orders.Service, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &Service{store: store, cache: c, ttl: ttl}
}

// Snapshot returns the board for role, serving from cache when fresh.
func (s *Service) Snapshot(ctx context.Context, role guardrail.Role, page, pageSize int) (*Snapshot, error) {
	ctx, span := telemetry.Tracer("plantline.board").Start(ctx, "plantline.board.snapshot")
	defer span.End()

	key := cacheKey(role, page, pageSize)
	if raw, ok := s.cache.Get(key); ok {
		if snap, ok := decodeSnapshot(raw); ok {
			metrics.RecordBoardRequest(string(role), "hit")
			span.SetAttributes(telemetry.BoardAttributes(string(role), len(snap.Cards), true)...)
			return snap, nil
		}
	}
	metrics.RecordBoardRequest(string(role), "miss")

	snap, err := s.build(ctx, role, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "board build failed")
		return nil, err
	}
	span.SetAttributes(telemetry.BoardAttributes(string(role), len(snap.Cards), false)...)
	if encoded, err := json.Marshal(snap); err == nil {
		s.cache.Set(key, string(encoded), s.ttl)
	}
	return snap, nil
}

// Invalidate drops every cached snapshot. Called after a transition so the
// next board read reflects it immediately instead of after the TTL. Scoping
// the drop per role is not worth it; boards are cheap to rebuild.
func (s *Service) Invalidate() {
	s.cache.Clear()
}

func (s *Service) build(ctx context.Context, role guardrail.Role, page, pageSize int) (*Snapshot, error) {
	list, total, err := s.store.List(ctx, orders.ListFilter{
		States:   guardrail.QueueStates(role),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("board: list orders: %w", err)
	}

	cards := make([]Card, 0, len(list))
	for i := range list {
		cards = append(cards, buildCard(&list[i], role))
	}
	return &Snapshot{
		Role:        role,
		GeneratedAt: time.Now().UTC(),
		Total:       total,
		Cards:       cards,
	}, nil
}

func buildCard(order *orders.Order, role guardrail.Role) Card {
	state := order.State()
	hold := order.HasHold()

	suggested := guardrail.SuggestedActions(state)
	actions := make([]ActionView, 0, len(suggested)+len(guardrail.AlwaysAvailable))
	for _, action := range suggested {
		actions = append(actions, evaluate(action, role, state, hold))
	}
	for _, action := range guardrail.AlwaysAvailable {
		actions = append(actions, evaluate(action, role, state, hold))
	}
	return Card{Order: *order, State: state, Actions: actions}
}

func evaluate(action guardrail.Action, role guardrail.Role, state lifecycle.State, hold bool) ActionView {
	verdict := guardrail.Evaluate(guardrail.Context{
		Role:    role,
		Action:  action,
		State:   state,
		HasHold: hold,
	})
	return ActionView{
		Action:  action,
		Enabled: verdict.Enabled,
		Reason:  verdict.Reason,
		Target:  verdict.Target,
	}
}

func cacheKey(role guardrail.Role, page, pageSize int) string {
	return fmt.Sprintf("board:%s:%d:%d", role, page, pageSize)
}

// decodeSnapshot accepts the JSON string form both cache backends return.
func decodeSnapshot(raw any) (*Snapshot, bool) {
	text, ok := raw.(string)
	if !ok {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(text), &snap); err != nil {
		return nil, false
	}
	return &snap, true
}
