// SPDX-License-Identifier: MIT

// Package audit provides structured audit logging for guardrail-sensitive
// operations. It follows the WHO/WHAT/WHEN pattern for compliance and
// forensics; the durable per-order trail lives with the order collaborator,
// this log is the operational stream.
package audit

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/plantline/plantline/internal/log"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Transition events
	EventTransitionApplied EventType = "transition.applied"
	EventTransitionDenied  EventType = "transition.denied"
	EventTransitionRouted  EventType = "transition.routed"

	// Override events
	EventOverrideEngaged EventType = "override.engaged"

	// Hold events
	EventHoldApplied EventType = "hold.applied"
	EventHoldCleared EventType = "hold.cleared"

	// Authentication events
	EventAuthSuccess EventType = "auth.success"
	EventAuthFailure EventType = "auth.failure"
	EventAuthMissing EventType = "auth.missing"

	// API access events
	EventAPIRateLimit EventType = "api.ratelimit"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`             // WHO: acting role, IP, or "system"
	Action     string            `json:"action"`            // WHAT: human-readable action description
	Resource   string            `json:"resource"`          // Resource affected (order ID, endpoint)
	Result     string            `json:"result"`            // success, failure, denied
	RemoteAddr string            `json:"remote_addr"`       // Client IP address
	RequestID  string            `json:"request_id"`        // Correlation ID
	Details    map[string]string `json:"details,omitempty"` // Additional context
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new audit logger with a dedicated "audit" component.
func NewLogger() *Logger {
	auditLogger := log.WithComponent("audit").With().
		Str("log_type", "audit").
		Logger()

	return &Logger{logger: auditLogger}
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	logEvent := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str("event_type", string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.RemoteAddr != "" {
		logEvent.Str("remote_addr", event.RemoteAddr)
	}
	if event.RequestID != "" {
		logEvent.Str("request_id", event.RequestID)
	}
	for key, value := range event.Details {
		logEvent.Str(key, value)
	}

	logEvent.Msg("audit event")
}

// TransitionApplied logs a persisted lifecycle transition.
func (l *Logger) TransitionApplied(role, orderID, action, fromStatus, toStatus string, override bool) {
	details := map[string]string{
		"workspace_action": action,
		"from_status":      fromStatus,
		"to_status":        toStatus,
	}
	if override {
		details["override"] = "true"
	}
	l.Log(Event{
		Type:     EventTransitionApplied,
		Actor:    role,
		Action:   "advanced order lifecycle",
		Resource: orderID,
		Result:   "success",
		Details:  details,
	})
}

// TransitionDenied logs a refused transition attempt.
func (l *Logger) TransitionDenied(role, orderID, action, reason string) {
	l.Log(Event{
		Type:     EventTransitionDenied,
		Actor:    role,
		Action:   "attempted order transition",
		Resource: orderID,
		Result:   "denied",
		Details: map[string]string{
			"workspace_action": action,
			"reason":           reason,
		},
	})
}

// TransitionRouted logs a side-channel action handed back to the caller.
func (l *Logger) TransitionRouted(role, orderID, action string) {
	l.Log(Event{
		Type:     EventTransitionRouted,
		Actor:    role,
		Action:   "routed workspace action",
		Resource: orderID,
		Result:   "success",
		Details: map[string]string{
			"workspace_action": action,
		},
	})
}

// OverrideEngaged logs an override-mode transition with its evidence.
func (l *Logger) OverrideEngaged(role, orderID, action, reason string) {
	l.Log(Event{
		Type:     EventOverrideEngaged,
		Actor:    role,
		Action:   "engaged guardrail override",
		Resource: orderID,
		Result:   "success",
		Details: map[string]string{
			"workspace_action": action,
			"override_reason":  reason,
		},
	})
}

// HoldApplied logs a hold overlay placement.
func (l *Logger) HoldApplied(role, orderID, marker string) {
	l.Log(Event{
		Type:     EventHoldApplied,
		Actor:    role,
		Action:   "applied hold overlay",
		Resource: orderID,
		Result:   "success",
		Details:  map[string]string{"marker": marker},
	})
}

// HoldCleared logs a hold overlay removal.
func (l *Logger) HoldCleared(role, orderID string) {
	l.Log(Event{
		Type:     EventHoldCleared,
		Actor:    role,
		Action:   "cleared hold overlay",
		Resource: orderID,
		Result:   "success",
	})
}

// AuthSuccess logs a successful authentication.
func (l *Logger) AuthSuccess(remoteAddr, endpoint string) {
	l.Log(Event{
		Type:       EventAuthSuccess,
		Actor:      remoteAddr,
		Action:     "authenticated successfully",
		Resource:   endpoint,
		Result:     "success",
		RemoteAddr: remoteAddr,
	})
}

// AuthFailure logs a failed authentication attempt.
func (l *Logger) AuthFailure(remoteAddr, endpoint, reason string) {
	l.Log(Event{
		Type:       EventAuthFailure,
		Actor:      remoteAddr,
		Action:     "authentication failed",
		Resource:   endpoint,
		Result:     "failure",
		RemoteAddr: remoteAddr,
		Details: map[string]string{
			"reason": reason,
		},
	})
}

// AuthMissing logs a request without authentication.
func (l *Logger) AuthMissing(remoteAddr, endpoint string) {
	l.Log(Event{
		Type:       EventAuthMissing,
		Actor:      remoteAddr,
		Action:     "accessed endpoint without authentication",
		Resource:   endpoint,
		Result:     "denied",
		RemoteAddr: remoteAddr,
	})
}

// RateLimitExceeded logs rate limit violations.
func (l *Logger) RateLimitExceeded(remoteAddr, endpoint string) {
	l.Log(Event{
		Type:       EventAPIRateLimit,
		Actor:      remoteAddr,
		Action:     "rate limit exceeded",
		Resource:   endpoint,
		Result:     "denied",
		RemoteAddr: remoteAddr,
	})
}
