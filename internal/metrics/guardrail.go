// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for the guardrail
// engine and its HTTP surface.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantline_transition_total",
		Help: "Total number of executed transition attempts by action, acting role and outcome",
	}, []string{"action", "role", "outcome"})

	guardDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantline_guard_denied_total",
		Help: "Total number of guard evaluations that disabled an action, by denial class",
	}, []string{"class"})

	boardRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantline_board_requests_total",
		Help: "Total number of role queue board projections served, by role and cache result",
	}, []string{"role", "cache"})
)

// RecordTransition records one executor outcome. Outcome is one of "success",
// "blocked", "missing_override_evidence", "missing_transition_evidence",
// "collaborator_failure", "routed".
func RecordTransition(action, role, outcome string) {
	transitionTotal.WithLabelValues(
		normalizeActionLabel(action),
		normalizeRoleLabel(role),
		normalizeOutcomeLabel(outcome),
	).Inc()
}

// RecordGuardDenied records one disabled guard evaluation. Class is "hold",
// "role" or "state".
func RecordGuardDenied(class string) {
	switch class {
	case "hold", "role", "state":
		guardDeniedTotal.WithLabelValues(class).Inc()
	default:
		guardDeniedTotal.WithLabelValues("unknown").Inc()
	}
}

// RecordBoardRequest records one board projection. Cache is "hit", "miss" or
// "bypass".
func RecordBoardRequest(role, cache string) {
	switch cache {
	case "hit", "miss", "bypass":
	default:
		cache = "unknown"
	}
	boardRequestsTotal.WithLabelValues(normalizeRoleLabel(role), cache).Inc()
}

func normalizeActionLabel(action string) string {
	switch action {
	case "advanceInboundPlan", "advanceInboundTransit", "markReceived",
		"markReadyForProduction", "startProduction", "markProductionComplete",
		"approveProduction", "planOutbound", "markDispatchedOrReleased",
		"markInvoiceReady", "openInvoiceWizard", "uploadAttachment", "applyHold":
		return action
	default:
		return "unknown"
	}
}

func normalizeRoleLabel(role string) string {
	switch role {
	case "Office", "Transportation", "Receiving", "Production",
		"Supervisor", "Quality", "PlantManager", "Admin":
		return role
	default:
		return "unknown"
	}
}

func normalizeOutcomeLabel(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "success", "blocked", "missing_override_evidence",
		"missing_transition_evidence", "collaborator_failure", "routed":
		return strings.ToLower(strings.TrimSpace(outcome))
	default:
		return "unknown"
	}
}
