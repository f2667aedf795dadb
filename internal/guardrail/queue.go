// SPDX-License-Identifier: MIT

package guardrail

import "github.com/plantline/plantline/internal/lifecycle"

// queueStates is the fixed role→queue table for the cross-order board. An
// absent entry means "no filter, show all states". The table must stay in
// sync with the suggestion table's notion of who acts in which state; the
// symmetry is covered by tests.
var queueStates = map[Role][]lifecycle.State{
	RoleOffice: {
		lifecycle.StateDraft,
		lifecycle.StatePendingOrderEntryValidation,
		lifecycle.StateInvoiceReady,
	},
	RoleTransportation: {
		lifecycle.StateInboundLogisticsPlanned,
		lifecycle.StateInboundInTransit,
		lifecycle.StateOutboundLogisticsPlanned,
		lifecycle.StateDispatchedOrPickupReleased,
	},
	RoleReceiving: {
		lifecycle.StateReceivedPendingReconciliation,
	},
	RoleProduction: {
		lifecycle.StateReadyForProduction,
		lifecycle.StateInProduction,
		lifecycle.StateProductionCompletePendingApproval,
	},
	RoleSupervisor: {
		lifecycle.StateProductionCompletePendingApproval,
		lifecycle.StateProductionComplete,
	},
	RoleQuality: {
		lifecycle.StateProductionCompletePendingApproval,
		lifecycle.StateProductionComplete,
	},
}

// QueueStates returns the lifecycle states that belong in role's queue. An
// empty result means no filter: PlantManager and Admin see every state. The
// filter holds no state and performs no I/O; the caller applies it per order.
func QueueStates(role Role) []lifecycle.State {
	states, ok := queueStates[role]
	if !ok {
		return nil
	}
	out := make([]lifecycle.State, len(states))
	copy(out, states)
	return out
}

// InQueue reports whether state belongs in role's queue.
func InQueue(role Role, state lifecycle.State) bool {
	states := QueueStates(role)
	if len(states) == 0 {
		return true
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
