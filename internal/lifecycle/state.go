// SPDX-License-Identifier: MIT

// Package lifecycle defines the fixed, totally ordered set of states a sales
// order moves through from entry to invoicing, and the single seam that maps
// persisted status values onto that set.
package lifecycle

// State is the canonical lifecycle stage of an order.
// The wire values are stable: persistence, metrics and client UX depend on them.
type State string

const (
	StateDraft                            State = "DRAFT"
	StatePendingOrderEntryValidation      State = "PENDING_ORDER_ENTRY_VALIDATION"
	StateInboundLogisticsPlanned          State = "INBOUND_LOGISTICS_PLANNED"
	StateInboundInTransit                 State = "INBOUND_IN_TRANSIT"
	StateReceivedPendingReconciliation    State = "RECEIVED_PENDING_RECONCILIATION"
	StateReadyForProduction               State = "READY_FOR_PRODUCTION"
	StateInProduction                     State = "IN_PRODUCTION"
	StateProductionCompletePendingApproval State = "PRODUCTION_COMPLETE_PENDING_APPROVAL"
	StateProductionComplete               State = "PRODUCTION_COMPLETE"
	StateOutboundLogisticsPlanned         State = "OUTBOUND_LOGISTICS_PLANNED"
	StateDispatchedOrPickupReleased       State = "DISPATCHED_OR_PICKUP_RELEASED"
	StateInvoiceReady                     State = "INVOICE_READY"
	StateInvoiced                         State = "INVOICED"
)

// Sequence is the authoritative order of lifecycle states. Forward progress is
// one step at a time; the only sanctioned shortcut is the direct receive from
// an early state (see CanDirectReceiveFrom).
var Sequence = []State{
	StateDraft,
	StatePendingOrderEntryValidation,
	StateInboundLogisticsPlanned,
	StateInboundInTransit,
	StateReceivedPendingReconciliation,
	StateReadyForProduction,
	StateInProduction,
	StateProductionCompletePendingApproval,
	StateProductionComplete,
	StateOutboundLogisticsPlanned,
	StateDispatchedOrPickupReleased,
	StateInvoiceReady,
	StateInvoiced,
}

var sequenceIndex = func() map[State]int {
	idx := make(map[State]int, len(Sequence))
	for i, s := range Sequence {
		idx[s] = i
	}
	return idx
}()

// labels holds the human-readable display metadata for each state.
var labels = map[State]string{
	StateDraft:                             "Draft",
	StatePendingOrderEntryValidation:       "Pending Order Entry Validation",
	StateInboundLogisticsPlanned:           "Inbound Logistics Planned",
	StateInboundInTransit:                  "Inbound In Transit",
	StateReceivedPendingReconciliation:     "Received, Pending Reconciliation",
	StateReadyForProduction:                "Ready For Production",
	StateInProduction:                      "In Production",
	StateProductionCompletePendingApproval: "Production Complete, Pending Approval",
	StateProductionComplete:                "Production Complete",
	StateOutboundLogisticsPlanned:          "Outbound Logistics Planned",
	StateDispatchedOrPickupReleased:        "Dispatched / Pickup Released",
	StateInvoiceReady:                      "Invoice Ready",
	StateInvoiced:                          "Invoiced",
}

// Known reports whether s is a member of the canonical sequence.
func Known(s State) bool {
	_, ok := sequenceIndex[s]
	return ok
}

// Index returns the zero-based position of s in the sequence.
// Unknown states report -1, false.
func Index(s State) (int, bool) {
	i, ok := sequenceIndex[s]
	if !ok {
		return -1, false
	}
	return i, ok
}

// Next returns the immediate successor of s, or "", false when s is terminal
// or unknown.
func Next(s State) (State, bool) {
	i, ok := sequenceIndex[s]
	if !ok || i == len(Sequence)-1 {
		return "", false
	}
	return Sequence[i+1], true
}

// Label returns the display label for s, falling back to the raw value.
func (s State) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether s is the final lifecycle state.
func (s State) IsTerminal() bool {
	return s == StateInvoiced
}

// Precedes reports whether s comes strictly before other in the sequence.
// Unknown states never precede anything.
func (s State) Precedes(other State) bool {
	a, okA := sequenceIndex[s]
	b, okB := sequenceIndex[other]
	return okA && okB && a < b
}

// CanDirectReceiveFrom reports whether s admits the direct-receive shortcut
// straight to StateReceivedPendingReconciliation. Only the two pre-inbound
// states qualify, and the jump carries its own audit evidence requirement.
func CanDirectReceiveFrom(s State) bool {
	return s == StateDraft || s == StatePendingOrderEntryValidation
}
