// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldOrderID   = "order_id"
	FieldActorRole = "actor_role"
	FieldAuditID   = "audit_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldAction    = "action"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldReason   = "reason"
	FieldHold     = "hold"
	FieldOverride = "override"

	// Network fields
	FieldRemoteAddr = "remote_addr"
	FieldEndpoint   = "endpoint"
)
