// SPDX-License-Identifier: MIT

package guardrail

import (
	"fmt"

	"github.com/plantline/plantline/internal/lifecycle"
)

// ReasonHold is surfaced verbatim whenever an active hold blocks an action.
const ReasonHold = "blocked by active hold"

// Context is the full, immutable decision context for one guard evaluation.
// The UI layer owns mutable session state (selected role, override toggle,
// evidence fields); the engine only ever sees a snapshot.
type Context struct {
	Role     Role
	Action   Action
	State    lifecycle.State
	HasHold  bool
	Override bool
}

// Denial classifies which check disabled an action. Reason stays the
// operator-facing text; Denial is the bounded label for counters.
type Denial string

const (
	DenialNone  Denial = ""
	DenialHold  Denial = "hold"
	DenialRole  Denial = "role"
	DenialState Denial = "state"
)

// ActionState is the transient result of one guard evaluation. It is never
// persisted; callers recompute it on every render.
type ActionState struct {
	Enabled bool            `json:"enabled"`
	Reason  string          `json:"reason,omitempty"`
	Target  lifecycle.State `json:"targetStatus,omitempty"`
	Denial  Denial          `json:"-"`
}

// Evaluate decides whether the action in ctx is currently permitted.
//
// Checks run in a fixed order: hold, role, state sequence. Override mode
// relaxes the role and state checks and lets an action pass a hold, but the
// required evidence is enforced by the transition executor, not here; the
// guard only reports availability so the UI can show a button as enabled
// while still gating the click.
//
// Guarantees: Target is non-empty iff the action is a forward transition and
// the checks pass; Reason is non-empty whenever Enabled is false and is
// surfaced verbatim to the operator. Pure and idempotent.
func Evaluate(ctx Context) ActionState {
	spec, ok := actionSpecs[ctx.Action]
	if !ok {
		return ActionState{Reason: fmt.Sprintf("unknown action %q", ctx.Action)}
	}

	// 1. Hold check. Only override bypasses a hold; uploadAttachment stays
	// available so evidence can be attached to a held order.
	if ctx.HasHold && !ctx.Override && ctx.Action != ActionUploadAttachment {
		return ActionState{Reason: ReasonHold, Denial: DenialHold}
	}

	// 2. Role-appropriateness check.
	if !RolePermitted(ctx.Action, ctx.Role) && !ctx.Override {
		return ActionState{
			Reason: fmt.Sprintf("role %s is not permitted to %s", ctx.Role, ctx.Action),
			Denial: DenialRole,
		}
	}

	// 3. State-sequence check, forward actions only. Transitions are single
	// step; the sole sanctioned shortcut is direct receive from a pre-inbound
	// state. Override may skip states but the literal target is still
	// reported, never a synthesized multi-hop jump.
	if spec.target != "" && !ctx.Override {
		next, _ := lifecycle.Next(ctx.State)
		if next != spec.target && !IsDirectReceive(ctx.Action, ctx.State) {
			return ActionState{
				Reason: fmt.Sprintf("%s requires the order to be in %s, not %s",
					ctx.Action, predecessorLabel(spec.target), ctx.State.Label()),
				Denial: DenialState,
			}
		}
	}

	return ActionState{Enabled: true, Target: spec.target}
}

func predecessorLabel(target lifecycle.State) string {
	idx, ok := lifecycle.Index(target)
	if !ok || idx == 0 {
		return target.Label()
	}
	return lifecycle.Sequence[idx-1].Label()
}
