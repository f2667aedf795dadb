// SPDX-License-Identifier: MIT

package guardrail

import "github.com/plantline/plantline/internal/lifecycle"

// suggestions maps each lifecycle state to the ordered actions meaningful at
// that point. Suggestions are candidates, not grants: the caller feeds each
// one through Evaluate for per-action enablement, so an entry may render as a
// disabled button with its blocking reason.
//
// The pre-inbound states list advanceInboundPlan (enabled only under
// override, since it skips validation) alongside the direct-receive shortcut.
// uploadAttachment and applyHold are always available and are appended by the
// caller, never by this table.
var suggestions = map[lifecycle.State][]Action{
	lifecycle.StateDraft:                             {ActionAdvanceInboundPlan, ActionMarkReceived},
	lifecycle.StatePendingOrderEntryValidation:       {ActionAdvanceInboundPlan, ActionMarkReceived},
	lifecycle.StateInboundLogisticsPlanned:           {ActionAdvanceInboundTransit},
	lifecycle.StateInboundInTransit:                  {ActionMarkReceived},
	lifecycle.StateReceivedPendingReconciliation:     {ActionMarkReadyForProduction},
	lifecycle.StateReadyForProduction:                {ActionStartProduction},
	lifecycle.StateInProduction:                      {ActionMarkProductionComplete},
	lifecycle.StateProductionCompletePendingApproval: {ActionApproveProduction},
	lifecycle.StateProductionComplete:                {ActionPlanOutbound},
	lifecycle.StateOutboundLogisticsPlanned:          {ActionMarkDispatchedOrReleased},
	lifecycle.StateDispatchedOrPickupReleased:        {ActionMarkInvoiceReady},
	lifecycle.StateInvoiceReady:                      {ActionOpenInvoiceWizard},
	lifecycle.StateInvoiced:                          {},
}

// SuggestedActions returns the ordered actions relevant at state. Pure
// function of state; callers may invoke it on every render.
func SuggestedActions(state lifecycle.State) []Action {
	actions, ok := suggestions[state]
	if !ok {
		return nil
	}
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// AlwaysAvailable lists the side-channel actions that apply regardless of
// state. Kept separate from the per-state table so callers can render the two
// groups distinctly.
var AlwaysAvailable = []Action{ActionUploadAttachment, ActionApplyHold}
