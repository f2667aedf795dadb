// SPDX-License-Identifier: MIT
package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestTransitionAttributes(t *testing.T) {
	m := attrMap(TransitionAttributes("ord-1", "startProduction", "Production", true))

	if got := m[OrderIDKey].AsString(); got != "ord-1" {
		t.Errorf("order id = %q", got)
	}
	if got := m[TransitionActionKey].AsString(); got != "startProduction" {
		t.Errorf("action = %q", got)
	}
	if got := m[TransitionRoleKey].AsString(); got != "Production" {
		t.Errorf("role = %q", got)
	}
	if !m[TransitionOverrideKey].AsBool() {
		t.Error("override flag lost")
	}
}

func TestBoardAttributes(t *testing.T) {
	m := attrMap(BoardAttributes("Office", 7, true))
	if got := m[BoardCacheKey].AsString(); got != "hit" {
		t.Errorf("cache = %q, want hit", got)
	}
	if got := m[BoardCardsKey].AsInt64(); got != 7 {
		t.Errorf("cards = %d", got)
	}

	m = attrMap(BoardAttributes("Office", 0, false))
	if got := m[BoardCacheKey].AsString(); got != "miss" {
		t.Errorf("cache = %q, want miss", got)
	}
}

func TestErrorAttributes(t *testing.T) {
	m := attrMap(ErrorAttributes("BLOCKED"))
	if !m[ErrorKey].AsBool() {
		t.Error("error flag not set")
	}
	if got := m[ErrorTypeKey].AsString(); got != "BLOCKED" {
		t.Errorf("error type = %q", got)
	}
}
