// SPDX-License-Identifier: MIT

// Package guardrail decides which workspace actions are legal for an order,
// given the acting role, the order's lifecycle state, any active hold, and
// override mode. Every entry point is a pure function over closed enums; the
// package performs no I/O and holds no state between calls.
package guardrail

import (
	"fmt"

	"github.com/plantline/plantline/internal/lifecycle"
)

// Role is one of the closed set of acting roles. A workspace session acts as
// exactly one role at a time; the domain does not forbid a person holding two.
type Role string

const (
	RoleOffice         Role = "Office"
	RoleTransportation Role = "Transportation"
	RoleReceiving      Role = "Receiving"
	RoleProduction     Role = "Production"
	RoleSupervisor     Role = "Supervisor"
	RoleQuality        Role = "Quality"
	RolePlantManager   Role = "PlantManager"
	RoleAdmin          Role = "Admin"
)

// Roles lists every role in a stable order.
var Roles = []Role{
	RoleOffice,
	RoleTransportation,
	RoleReceiving,
	RoleProduction,
	RoleSupervisor,
	RoleQuality,
	RolePlantManager,
	RoleAdmin,
}

// ParseRole validates a raw role value from a request.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("guardrail: unknown role %q", raw)
}

// Action is a workspace verb. Forward actions carry an implicit target state;
// side-channel actions never move the lifecycle pointer through this engine.
type Action string

const (
	ActionAdvanceInboundPlan      Action = "advanceInboundPlan"
	ActionAdvanceInboundTransit   Action = "advanceInboundTransit"
	ActionMarkReceived            Action = "markReceived"
	ActionMarkReadyForProduction  Action = "markReadyForProduction"
	ActionStartProduction         Action = "startProduction"
	ActionMarkProductionComplete  Action = "markProductionComplete"
	ActionApproveProduction       Action = "approveProduction"
	ActionPlanOutbound            Action = "planOutbound"
	ActionMarkDispatchedOrReleased Action = "markDispatchedOrReleased"
	ActionMarkInvoiceReady        Action = "markInvoiceReady"
	ActionOpenInvoiceWizard       Action = "openInvoiceWizard"
	ActionUploadAttachment        Action = "uploadAttachment"
	ActionApplyHold               Action = "applyHold"
)

// Actions lists every action in a stable order.
var Actions = []Action{
	ActionAdvanceInboundPlan,
	ActionAdvanceInboundTransit,
	ActionMarkReceived,
	ActionMarkReadyForProduction,
	ActionStartProduction,
	ActionMarkProductionComplete,
	ActionApproveProduction,
	ActionPlanOutbound,
	ActionMarkDispatchedOrReleased,
	ActionMarkInvoiceReady,
	ActionOpenInvoiceWizard,
	ActionUploadAttachment,
	ActionApplyHold,
}

// ParseAction validates a raw action value from a request.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if _, ok := actionSpecs[a]; !ok {
		return "", fmt.Errorf("guardrail: unknown action %q", raw)
	}
	return a, nil
}

// actionSpec binds an action to its target state (empty for side channels) and
// its permitted-role set. Admin is in every forward set; it is the
// administrative superuser, not a line-of-business role.
type actionSpec struct {
	target lifecycle.State
	roles  map[Role]struct{}
}

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

var actionSpecs = map[Action]actionSpec{
	ActionAdvanceInboundPlan: {
		target: lifecycle.StateInboundLogisticsPlanned,
		roles:  roleSet(RoleOffice, RoleTransportation, RoleAdmin),
	},
	ActionAdvanceInboundTransit: {
		target: lifecycle.StateInboundInTransit,
		roles:  roleSet(RoleTransportation, RoleAdmin),
	},
	ActionMarkReceived: {
		target: lifecycle.StateReceivedPendingReconciliation,
		roles:  roleSet(RoleReceiving, RoleProduction, RoleAdmin),
	},
	ActionMarkReadyForProduction: {
		target: lifecycle.StateReadyForProduction,
		roles:  roleSet(RoleReceiving, RoleProduction, RoleAdmin),
	},
	ActionStartProduction: {
		target: lifecycle.StateInProduction,
		roles:  roleSet(RoleProduction, RoleAdmin),
	},
	ActionMarkProductionComplete: {
		target: lifecycle.StateProductionCompletePendingApproval,
		roles:  roleSet(RoleProduction, RoleAdmin),
	},
	ActionApproveProduction: {
		target: lifecycle.StateProductionComplete,
		roles:  roleSet(RoleSupervisor, RoleQuality, RolePlantManager, RoleAdmin),
	},
	ActionPlanOutbound: {
		target: lifecycle.StateOutboundLogisticsPlanned,
		roles:  roleSet(RoleTransportation, RoleAdmin),
	},
	ActionMarkDispatchedOrReleased: {
		target: lifecycle.StateDispatchedOrPickupReleased,
		roles:  roleSet(RoleTransportation, RoleAdmin),
	},
	ActionMarkInvoiceReady: {
		target: lifecycle.StateInvoiceReady,
		roles:  roleSet(RoleOffice, RoleTransportation, RoleAdmin),
	},
	ActionOpenInvoiceWizard: {
		roles: roleSet(RoleOffice, RoleAdmin),
	},
	ActionUploadAttachment: {
		roles: roleSet(Roles...),
	},
	ActionApplyHold: {
		roles: roleSet(RoleOffice, RoleSupervisor, RoleQuality, RolePlantManager, RoleAdmin),
	},
}

// Target returns the forward target state of a, or "", false for side-channel
// or unknown actions.
func Target(a Action) (lifecycle.State, bool) {
	spec, ok := actionSpecs[a]
	if !ok || spec.target == "" {
		return "", false
	}
	return spec.target, true
}

// IsSideChannel reports whether a never moves the lifecycle pointer through
// this engine.
func IsSideChannel(a Action) bool {
	spec, ok := actionSpecs[a]
	return ok && spec.target == ""
}

// RolePermitted reports whether role is in a's permitted-role set.
func RolePermitted(a Action, role Role) bool {
	spec, ok := actionSpecs[a]
	if !ok {
		return false
	}
	_, permitted := spec.roles[role]
	return permitted
}

// IsDirectReceive reports whether invoking a from state is the direct-receive
// shortcut, which carries its own mandatory audit evidence.
func IsDirectReceive(a Action, from lifecycle.State) bool {
	return a == ActionMarkReceived && lifecycle.CanDirectReceiveFrom(from)
}
