// SPDX-License-Identifier: MIT

package lifecycle

import (
	"fmt"
	"strings"

	"github.com/plantline/plantline/internal/log"
)

// legacyAliases maps historical free-text status strings, as still found in
// persisted orderStatus columns, onto canonical states. Matching is
// case-insensitive after whitespace collapsing; keep keys lower-case.
var legacyAliases = map[string]State{
	"new":                      StateDraft,
	"draft":                    StateDraft,
	"entered":                  StateDraft,
	"pending validation":       StatePendingOrderEntryValidation,
	"order entry review":       StatePendingOrderEntryValidation,
	"awaiting validation":      StatePendingOrderEntryValidation,
	"inbound planned":          StateInboundLogisticsPlanned,
	"pickup scheduled":         StateInboundLogisticsPlanned,
	"inbound in transit":       StateInboundInTransit,
	"in transit":               StateInboundInTransit,
	"on truck":                 StateInboundInTransit,
	"received":                 StateReceivedPendingReconciliation,
	"on dock":                  StateReceivedPendingReconciliation,
	"receiving reconciliation": StateReceivedPendingReconciliation,
	"ready for production":     StateReadyForProduction,
	"released to floor":        StateReadyForProduction,
	"in production":            StateInProduction,
	"running":                  StateInProduction,
	"production done":          StateProductionCompletePendingApproval,
	"awaiting approval":        StateProductionCompletePendingApproval,
	"qa review":                StateProductionCompletePendingApproval,
	"approved":                 StateProductionComplete,
	"production complete":      StateProductionComplete,
	"outbound planned":         StateOutboundLogisticsPlanned,
	"shipping scheduled":       StateOutboundLogisticsPlanned,
	"shipped":                  StateDispatchedOrPickupReleased,
	"dispatched":               StateDispatchedOrPickupReleased,
	"picked up":                StateDispatchedOrPickupReleased,
	"ready to invoice":         StateInvoiceReady,
	"invoice ready":            StateInvoiceReady,
	"invoiced":                 StateInvoiced,
	"billed":                   StateInvoiced,
	"closed":                   StateInvoiced,
}

// Parse resolves a persisted status value to exactly one canonical state.
// Canonical codes win over legacy aliases. Pure; no I/O.
func Parse(raw string) (State, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("lifecycle: empty status")
	}
	if s := State(strings.ToUpper(trimmed)); Known(s) {
		return s, nil
	}
	if s, ok := legacyAliases[foldAlias(trimmed)]; ok {
		return s, nil
	}
	return "", fmt.Errorf("lifecycle: unrecognized status %q", raw)
}

// Normalize is the lenient production seam: unrecognized input is a defect
// class that must not crash a list view, so it logs loudly and falls back to
// the least-progressed state.
func Normalize(raw string) State {
	s, err := Parse(raw)
	if err != nil {
		logger := log.WithComponent("lifecycle")
		logger.Error().
			Str("event", "status.unrecognized").
			Str("raw_status", raw).
			Msg("unrecognized order status, falling back to DRAFT")
		return StateDraft
	}
	return s
}

// foldAlias collapses internal whitespace and lower-cases for alias lookup.
func foldAlias(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
