// SPDX-License-Identifier: MIT

// Package transition orchestrates one order state change: it re-runs the
// guard, enforces the audit-evidence requirements, and only then asks the
// order collaborator to persist the new state. It is the single component in
// the engine with a side effect and it never bypasses the guard.
package transition

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/plantline/plantline/internal/audit"
	"github.com/plantline/plantline/internal/guardrail"
	"github.com/plantline/plantline/internal/lifecycle"
	"github.com/plantline/plantline/internal/log"
	"github.com/plantline/plantline/internal/metrics"
	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/telemetry"
)

// Request carries the full decision context and evidence for one execution.
// The UI owns the mutable session state these fields come from; the executor
// only sees the snapshot.
type Request struct {
	Action   guardrail.Action
	Role     guardrail.Role
	Override bool

	OverrideReason string
	OverrideNote   string

	DirectReceiveReasonCode string
	DirectReceiveNote       string
}

// Routing names the side-channel instruction handed back to the caller when
// an action does not move the lifecycle pointer through this engine.
type Routing string

const (
	RouteNone          Routing = ""
	RouteInvoiceWizard Routing = "invoice-wizard"
	RouteAttachments   Routing = "attachments"
	RouteHoldDialog    Routing = "hold-dialog"
)

// Result is the outcome of a successful execution. Exactly one of Order (a
// persisted transition) or Routing (a side-channel instruction) is set.
type Result struct {
	Order   *orders.Order `json:"order,omitempty"`
	Routing Routing       `json:"routing,omitempty"`
	Target  lifecycle.State `json:"targetStatus,omitempty"`
}

// Executor validates and persists lifecycle transitions.
type Executor struct {
	store orders.Service
	audit *audit.Logger
}

// New returns an executor backed by the given order collaborator.
func New(store orders.Service, auditLogger *audit.Logger) *Executor {
	if auditLogger == nil {
		auditLogger = audit.NewLogger()
	}
	return &Executor{store: store, audit: auditLogger}
}

// Execute runs one transition attempt for order. All guard and evidence
// failures are detected before any persistence call; the only side effect on
// the failure paths is the audit log line.
func (e *Executor) Execute(ctx context.Context, order *orders.Order, req Request) (*Result, error) {
	state := order.State()

	ctx, span := telemetry.Tracer("plantline.transition").Start(ctx, "plantline.transition.execute")
	defer span.End()
	span.SetAttributes(telemetry.TransitionAttributes(
		order.ID, string(req.Action), string(req.Role), req.Override)...)

	// 1. Re-run the guard. A disabled action never reaches persistence.
	decision := guardrail.Evaluate(guardrail.Context{
		Role:     req.Role,
		Action:   req.Action,
		State:    state,
		HasHold:  order.HasHold(),
		Override: req.Override,
	})
	if !decision.Enabled {
		e.audit.TransitionDenied(string(req.Role), order.ID, string(req.Action), decision.Reason)
		metrics.RecordGuardDenied(string(decision.Denial))
		metrics.RecordTransition(string(req.Action), string(req.Role), "blocked")
		span.SetAttributes(telemetry.ErrorAttributes("blocked")...)
		span.SetStatus(codes.Error, decision.Reason)
		return nil, blocked(decision.Reason)
	}

	// 2. Override evidence. Hold + override still lands here: the bypass is
	// never silent.
	if req.Override && (isBlank(req.OverrideReason) || isBlank(req.OverrideNote)) {
		metrics.RecordTransition(string(req.Action), string(req.Role), "missing_override_evidence")
		span.SetAttributes(telemetry.ErrorAttributes("missing_override_evidence")...)
		span.SetStatus(codes.Error, "missing override evidence")
		return nil, missingOverrideEvidence()
	}

	// 3. Direct-receive evidence, independent of and additive to the override
	// check. Either evidence source satisfies it; the transition-specific one
	// wins when both are present.
	directReceive := guardrail.IsDirectReceive(req.Action, state)
	reasonCode := firstNonBlank(req.DirectReceiveReasonCode, req.OverrideReason)
	note := firstNonBlank(req.DirectReceiveNote, req.OverrideNote)
	if directReceive && (isBlank(reasonCode) || isBlank(note)) {
		metrics.RecordTransition(string(req.Action), string(req.Role), "missing_transition_evidence")
		span.SetAttributes(telemetry.ErrorAttributes("missing_transition_evidence")...)
		span.SetStatus(codes.Error, "missing transition evidence")
		return nil, missingTransitionEvidence()
	}

	// 4. Side channels are routing instructions, not lifecycle transitions.
	if guardrail.IsSideChannel(req.Action) {
		e.audit.TransitionRouted(string(req.Role), order.ID, string(req.Action))
		metrics.RecordTransition(string(req.Action), string(req.Role), "routed")
		span.SetAttributes(telemetry.OutcomeAttribute("routed"))
		return &Result{Routing: routeFor(req.Action)}, nil
	}

	// 5. Persist. The collaborator's answer is returned verbatim; a late
	// rejection (e.g. the order already advanced) is an ordinary failure to
	// surface, never something to retry or resolve locally.
	updated, err := e.store.AdvanceStatus(ctx, order.ID, decision.Target, orders.TransitionAudit{
		ActingRole: string(req.Role),
		ReasonCode: reasonCode,
		Note:       note,
	})
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "transition")
		logger.Warn().
			Err(err).
			Str(log.FieldOrderID, order.ID).
			Str(log.FieldAction, string(req.Action)).
			Msg("collaborator rejected transition")
		metrics.RecordTransition(string(req.Action), string(req.Role), "collaborator_failure")
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes("collaborator_failure")...)
		span.SetStatus(codes.Error, "collaborator rejected transition")
		return nil, collaboratorFailure(err)
	}

	if req.Override {
		e.audit.OverrideEngaged(string(req.Role), order.ID, string(req.Action), req.OverrideReason)
	}
	e.audit.TransitionApplied(string(req.Role), order.ID, string(req.Action),
		string(state), string(updated.State()), req.Override)
	metrics.RecordTransition(string(req.Action), string(req.Role), "success")
	span.SetAttributes(telemetry.OutcomeAttribute("success"))

	// 6. The returned order is the sole source of truth for re-evaluation.
	return &Result{Order: updated, Target: decision.Target}, nil
}

func routeFor(action guardrail.Action) Routing {
	switch action {
	case guardrail.ActionOpenInvoiceWizard:
		return RouteInvoiceWizard
	case guardrail.ActionUploadAttachment:
		return RouteAttachments
	case guardrail.ActionApplyHold:
		return RouteHoldDialog
	default:
		return RouteNone
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}
