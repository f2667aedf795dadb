// SPDX-License-Identifier: MIT

package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantline/plantline/internal/cache"
	"github.com/plantline/plantline/internal/guardrail"
	"github.com/plantline/plantline/internal/lifecycle"
	"github.com/plantline/plantline/internal/orders"
)

func seedStore(t *testing.T) *orders.MemStore {
	t.Helper()
	store := orders.NewMemStore()
	seeds := []struct {
		id    string
		state lifecycle.State
		hold  string
	}{
		{"ord-draft", lifecycle.StateDraft, ""},
		{"ord-transit", lifecycle.StateInboundInTransit, ""},
		{"ord-prod", lifecycle.StateInProduction, ""},
		{"ord-held", lifecycle.StateInProduction, "QUALITY_HOLD"},
		{"ord-done", lifecycle.StateInvoiced, ""},
	}
	for _, s := range seeds {
		require.NoError(t, store.Create(context.Background(), &orders.Order{
			ID:              s.id,
			LifecycleStatus: string(s.state),
			HoldOverlay:     s.hold,
		}))
	}
	return store
}

func cardIDs(snap *Snapshot) []string {
	ids := make([]string, 0, len(snap.Cards))
	for _, c := range snap.Cards {
		ids = append(ids, c.Order.ID)
	}
	return ids
}

func TestSnapshot_FiltersByRoleQueue(t *testing.T) {
	svc := New(seedStore(t), nil, 0)

	snap, err := svc.Snapshot(context.Background(), guardrail.RoleProduction, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, guardrail.RoleProduction, snap.Role)
	assert.ElementsMatch(t, []string{"ord-prod", "ord-held"}, cardIDs(snap))

	snap, err = svc.Snapshot(context.Background(), guardrail.RoleTransportation, 0, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ord-transit"}, cardIDs(snap))
}

func TestSnapshot_AdminSeesEverything(t *testing.T) {
	svc := New(seedStore(t), nil, 0)

	snap, err := svc.Snapshot(context.Background(), guardrail.RoleAdmin, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Total)
	assert.Len(t, snap.Cards, 5)
}

func TestSnapshot_CardActions(t *testing.T) {
	svc := New(seedStore(t), nil, 0)

	snap, err := svc.Snapshot(context.Background(), guardrail.RoleProduction, 0, 0)
	require.NoError(t, err)

	var prod, held *Card
	for i := range snap.Cards {
		switch snap.Cards[i].Order.ID {
		case "ord-prod":
			prod = &snap.Cards[i]
		case "ord-held":
			held = &snap.Cards[i]
		}
	}
	require.NotNil(t, prod)
	require.NotNil(t, held)

	byAction := func(c *Card, a guardrail.Action) *ActionView {
		for i := range c.Actions {
			if c.Actions[i].Action == a {
				return &c.Actions[i]
			}
		}
		return nil
	}

	complete := byAction(prod, guardrail.ActionMarkProductionComplete)
	require.NotNil(t, complete, "suggestion for the current state must be on the card")
	assert.True(t, complete.Enabled)
	assert.Equal(t, lifecycle.StateProductionCompletePendingApproval, complete.Target)

	// The held order keeps its suggestions, rendered disabled with the hold
	// reason, and keeps uploadAttachment usable.
	heldComplete := byAction(held, guardrail.ActionMarkProductionComplete)
	require.NotNil(t, heldComplete)
	assert.False(t, heldComplete.Enabled)
	assert.Equal(t, guardrail.ReasonHold, heldComplete.Reason)

	upload := byAction(held, guardrail.ActionUploadAttachment)
	require.NotNil(t, upload)
	assert.True(t, upload.Enabled)
}

func TestSnapshot_CacheHit(t *testing.T) {
	store := seedStore(t)
	c := cache.NewMemoryCache(0)
	svc := New(store, c, time.Minute)

	first, err := svc.Snapshot(context.Background(), guardrail.RoleOffice, 0, 0)
	require.NoError(t, err)

	// Mutating the store behind the cache must not show up before the TTL.
	require.NoError(t, store.Create(context.Background(), &orders.Order{
		ID:              "ord-new",
		LifecycleStatus: string(lifecycle.StateDraft),
	}))

	second, err := svc.Snapshot(context.Background(), guardrail.RoleOffice, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, cardIDs(first), cardIDs(second))

	svc.Invalidate()
	third, err := svc.Snapshot(context.Background(), guardrail.RoleOffice, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Total+1, third.Total)
}

func TestSnapshot_Paging(t *testing.T) {
	store := orders.NewMemStore()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		store.SetClock(func() time.Time { return base.Add(time.Duration(i) * time.Minute) })
		require.NoError(t, store.Create(context.Background(), &orders.Order{
			ID:              string(rune('a' + i)),
			LifecycleStatus: string(lifecycle.StateDraft),
		}))
	}
	svc := New(store, nil, 0)

	snap, err := svc.Snapshot(context.Background(), guardrail.RoleAdmin, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, []string{"c", "d"}, cardIDs(snap))
}
