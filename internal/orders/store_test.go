// SPDX-License-Identifier: MIT

package orders

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plantline/plantline/internal/lifecycle"
	"github.com/plantline/plantline/internal/persistence/sqlite"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "orders.sqlite"), sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := NewSQLStore(db)
	require.NoError(t, err)
	return store
}

// Both implementations must satisfy the same collaborator contract.
func forEachStore(t *testing.T, run func(t *testing.T, store Service)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) { run(t, NewMemStore()) })
	t.Run("sqlite", func(t *testing.T) { run(t, newSQLStore(t)) })
}

func TestStore_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Service) {
		ctx := context.Background()
		order := &Order{CustomerName: "Acme Extrusion", ItemCode: "PL-100", Quantity: 12}
		require.NoError(t, store.Create(ctx, order))
		require.NotEmpty(t, order.ID)

		got, err := store.Get(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, "Acme Extrusion", got.CustomerName)
		require.Equal(t, lifecycle.StateDraft, got.State())

		_, err = store.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_LegacyStatusNormalization(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Service) {
		ctx := context.Background()
		order := &Order{ID: "legacy-1", OrderStatus: "On Dock"}
		require.NoError(t, store.Create(ctx, order))

		got, err := store.Get(ctx, "legacy-1")
		require.NoError(t, err)
		require.Equal(t, lifecycle.StateReceivedPendingReconciliation, got.State())
	})
}

func TestStore_AdvanceStatus(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Service) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &Order{ID: "ord-1"}))

		updated, err := store.AdvanceStatus(ctx, "ord-1", lifecycle.StatePendingOrderEntryValidation,
			TransitionAudit{ActingRole: "Office", ReasonCode: "ENTRY_COMPLETE", Note: "validated"})
		require.NoError(t, err)
		require.Equal(t, lifecycle.StatePendingOrderEntryValidation, updated.State())
		require.Equal(t, "Office", updated.StatusOwnerRole)

		// Stale resubmission of the same target is a conflict.
		_, err = store.AdvanceStatus(ctx, "ord-1", lifecycle.StatePendingOrderEntryValidation,
			TransitionAudit{ActingRole: "Office"})
		require.ErrorIs(t, err, ErrConflict)

		_, err = store.AdvanceStatus(ctx, "missing", lifecycle.StateInProduction, TransitionAudit{})
		require.ErrorIs(t, err, ErrNotFound)

		_, err = store.AdvanceStatus(ctx, "ord-1", lifecycle.State("BOGUS"), TransitionAudit{})
		require.Error(t, err)
	})
}

func TestStore_AuditTrailRecordsTransitions(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Service) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &Order{ID: "ord-2"}))

		_, err := store.AdvanceStatus(ctx, "ord-2", lifecycle.StatePendingOrderEntryValidation,
			TransitionAudit{ActingRole: "Office"})
		require.NoError(t, err)
		_, err = store.AdvanceStatus(ctx, "ord-2", lifecycle.StateInboundLogisticsPlanned,
			TransitionAudit{ActingRole: "Transportation", ReasonCode: "PLAN_OK"})
		require.NoError(t, err)

		trail, err := store.AuditTrail(ctx, "ord-2")
		require.NoError(t, err)
		require.Len(t, trail, 2)
		require.Equal(t, string(lifecycle.StateDraft), trail[0].FromStatus)
		require.Equal(t, string(lifecycle.StatePendingOrderEntryValidation), trail[0].ToStatus)
		require.Equal(t, "Transportation", trail[1].ActingRole)
		require.Equal(t, "PLAN_OK", trail[1].ReasonCode)
	})
}

func TestStore_Holds(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Service) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &Order{ID: "ord-3"}))

		held, err := store.SetHold(ctx, "ord-3", "QA_HOLD", TransitionAudit{ActingRole: "Quality"})
		require.NoError(t, err)
		require.True(t, held.HasHold())
		require.Equal(t, "QA_HOLD", held.HoldOverlay)

		cleared, err := store.ClearHold(ctx, "ord-3", TransitionAudit{ActingRole: "Supervisor"})
		require.NoError(t, err)
		require.False(t, cleared.HasHold())

		trail, err := store.AuditTrail(ctx, "ord-3")
		require.NoError(t, err)
		require.Len(t, trail, 2)
		require.Equal(t, "HOLD:QA_HOLD", trail[0].ToStatus)
		require.Equal(t, "HOLD_CLEARED", trail[1].ToStatus)
	})
}

func TestStore_ListFilterAndPaging(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Service) {
		ctx := context.Background()
		seed := []struct {
			id     string
			status lifecycle.State
		}{
			{"a", lifecycle.StateDraft},
			{"b", lifecycle.StateDraft},
			{"c", lifecycle.StateInProduction},
			{"d", lifecycle.StateInvoiceReady},
		}
		for _, s := range seed {
			require.NoError(t, store.Create(ctx, &Order{ID: s.id, LifecycleStatus: string(s.status)}))
		}

		all, total, err := store.List(ctx, ListFilter{})
		require.NoError(t, err)
		require.Equal(t, 4, total)
		require.Len(t, all, 4)

		drafts, total, err := store.List(ctx, ListFilter{States: []lifecycle.State{lifecycle.StateDraft}})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, drafts, 2)

		page, total, err := store.List(ctx, ListFilter{Page: 2, PageSize: 3})
		require.NoError(t, err)
		require.Equal(t, 4, total)
		require.Len(t, page, 1)

		empty, _, err := store.List(ctx, ListFilter{Page: 9})
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}
