// SPDX-License-Identifier: MIT

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.logger)
}

func TestLogger_Log(t *testing.T) {
	logger := NewLogger()

	event := Event{
		Type:       EventTransitionApplied,
		Actor:      "Receiving",
		Action:     "advanced order lifecycle",
		Resource:   "ord-42",
		Result:     "success",
		RemoteAddr: "192.168.1.100",
		RequestID:  "req-123",
		Details: map[string]string{
			"from_status": "INBOUND_IN_TRANSIT",
			"to_status":   "RECEIVED_PENDING_RECONCILIATION",
		},
	}

	// Should not panic
	logger.Log(event)

	// Missing timestamp is set automatically
	logger.Log(Event{
		Type:     EventAuthSuccess,
		Actor:    "10.0.0.1",
		Action:   "logged in",
		Resource: "/api",
		Result:   "success",
	})
}

func TestLogger_Helpers(t *testing.T) {
	logger := NewLogger()

	// Exercise every helper; none may panic.
	logger.TransitionApplied("Receiving", "ord-1", "markReceived", "DRAFT", "RECEIVED_PENDING_RECONCILIATION", true)
	logger.TransitionDenied("Office", "ord-1", "startProduction", "role Office is not permitted to startProduction")
	logger.TransitionRouted("Office", "ord-1", "openInvoiceWizard")
	logger.OverrideEngaged("Supervisor", "ord-1", "planOutbound", "expedited shipment")
	logger.HoldApplied("Quality", "ord-1", "QA_HOLD")
	logger.HoldCleared("Supervisor", "ord-1")
	logger.AuthSuccess("10.0.0.1", "/api/v1/orders")
	logger.AuthFailure("10.0.0.1", "/api/v1/orders", "invalid token")
	logger.AuthMissing("10.0.0.1", "/api/v1/orders")
	logger.RateLimitExceeded("10.0.0.1", "/api/v1/board")
}
