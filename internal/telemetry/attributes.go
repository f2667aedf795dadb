// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared across spans so traces stay queryable.
const (
	OrderIDKey    = "order.id"
	OrderStateKey = "order.state"
	OrderHoldKey  = "order.hold"

	TransitionActionKey   = "transition.action"
	TransitionRoleKey     = "transition.role"
	TransitionOverrideKey = "transition.override"
	TransitionOutcomeKey  = "transition.outcome"

	BoardRoleKey  = "board.role"
	BoardCardsKey = "board.cards"
	BoardCacheKey = "board.cache"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// TransitionAttributes builds span attributes for one transition attempt.
func TransitionAttributes(orderID, action, role string, override bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(OrderIDKey, orderID),
		attribute.String(TransitionActionKey, action),
		attribute.String(TransitionRoleKey, role),
		attribute.Bool(TransitionOverrideKey, override),
	}
}

// BoardAttributes builds span attributes for a board snapshot read.
func BoardAttributes(role string, cards int, cacheHit bool) []attribute.KeyValue {
	source := "miss"
	if cacheHit {
		source = "hit"
	}
	return []attribute.KeyValue{
		attribute.String(BoardRoleKey, role),
		attribute.Int(BoardCardsKey, cards),
		attribute.String(BoardCacheKey, source),
	}
}

// OutcomeAttribute records the executor outcome on a span.
func OutcomeAttribute(outcome string) attribute.KeyValue {
	return attribute.String(TransitionOutcomeKey, outcome)
}

// ErrorAttributes marks a span as failed with a stable error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
