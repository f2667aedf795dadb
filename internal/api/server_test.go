// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantline/plantline/internal/board"
	"github.com/plantline/plantline/internal/config"
	"github.com/plantline/plantline/internal/guardrail"
	"github.com/plantline/plantline/internal/health"
	"github.com/plantline/plantline/internal/lifecycle"
	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/transition"
)

type testEnv struct {
	server *httptest.Server
	store  *orders.MemStore
	token  string
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.APIToken = token
	cfg.RateLimit = 0

	store := orders.NewMemStore()
	exec := transition.New(store, nil)
	boards := board.New(store, nil, 0)
	healthMgr := health.NewManager("test")

	srv := NewServer(config.NewHolder(cfg, ""), store, exec, boards, healthMgr)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, store: store, token: token}
}

func (e *testEnv) seed(t *testing.T, id string, state lifecycle.State, hold string) {
	t.Helper()
	require.NoError(t, e.store.Create(context.Background(), &orders.Order{
		ID:              id,
		CustomerName:    "ACME GmbH",
		ItemCode:        "GEAR-42",
		Quantity:        10,
		LifecycleStatus: string(state),
		HoldOverlay:     hold,
	}))
}

func (e *testEnv) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if role != "" {
		req.Header.Set("X-Acting-Role", role)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestAuth_TokenEnforced(t *testing.T) {
	env := newTestEnv(t, "sesame")

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/lifecycle", nil)
	require.NoError(t, err)
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := env.do(t, http.MethodGet, "/api/v1/lifecycle", "", nil)
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestAuth_ProbesBypassToken(t *testing.T) {
	env := newTestEnv(t, "sesame")

	resp, err := env.server.Client().Get(env.server.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLifecycleEndpoint(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodGet, "/api/v1/lifecycle", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string][]lifecycleStateView](t, resp)
	states := body["states"]
	require.Len(t, states, len(lifecycle.Sequence))
	assert.Equal(t, "DRAFT", states[0].Status)
	assert.True(t, states[len(states)-1].Terminal)
}

func TestCreateAndGetOrder(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders", "Office", createOrderRequest{
		CustomerName: "ACME GmbH",
		ItemCode:     "GEAR-42",
		Quantity:     5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[orders.Order](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, string(lifecycle.StateDraft), created.LifecycleStatus)

	resp = env.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/orders/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders", "Office", createOrderRequest{
		CustomerName: "ACME GmbH",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListOrders_StatusFilter(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "a", lifecycle.StateDraft, "")
	env.seed(t, "b", lifecycle.StateInProduction, "")

	resp := env.do(t, http.MethodGet, "/api/v1/orders/?status=IN_PRODUCTION", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[listResponse](t, resp)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "b", body.Orders[0].ID)

	resp = env.do(t, http.MethodGet, "/api/v1/orders/?status=BOGUS", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListOrders_RoleQueueFilter(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "a", lifecycle.StateDraft, "")
	env.seed(t, "b", lifecycle.StateInProduction, "")
	env.seed(t, "c", lifecycle.StateInvoiced, "")

	resp := env.do(t, http.MethodGet, "/api/v1/orders/?role=Production", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[listResponse](t, resp)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "b", body.Orders[0].ID)

	// PlantManager has no queue filter.
	resp = env.do(t, http.MethodGet, "/api/v1/orders/?role=PlantManager", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decodeBody[listResponse](t, resp).Total)

	resp = env.do(t, http.MethodGet, "/api/v1/orders/?role=Janitor", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActionsEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateReadyForProduction, "")

	resp := env.do(t, http.MethodGet, "/api/v1/orders/ord-1/actions", "Production", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[actionsResponse](t, resp)

	var start *actionView
	for i := range body.Actions {
		if body.Actions[i].Action == string(guardrail.ActionStartProduction) {
			start = &body.Actions[i]
		}
	}
	require.NotNil(t, start)
	assert.True(t, start.Enabled)
	assert.True(t, start.Suggested)
	assert.Equal(t, string(lifecycle.StateInProduction), start.Target)

	// Missing role header is a validation error.
	resp = env.do(t, http.MethodGet, "/api/v1/orders/ord-1/actions", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransition_HappyPath(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateReadyForProduction, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Production",
		transitionRequest{Action: string(guardrail.ActionStartProduction)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[transition.Result](t, resp)
	require.NotNil(t, result.Order)
	assert.Equal(t, lifecycle.StateInProduction, result.Order.State())
	assert.Equal(t, lifecycle.StateInProduction, result.Target)
}

func TestTransition_Blocked409(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateReadyForProduction, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Office",
		transitionRequest{Action: string(guardrail.ActionStartProduction)})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, string(transition.KindBlocked), body.Kind)
	assert.Contains(t, body.Reason, "not permitted")
}

func TestTransition_HoldBlocks(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateReadyForProduction, "CREDIT_HOLD")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Production",
		transitionRequest{Action: string(guardrail.ActionStartProduction)})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, guardrail.ReasonHold, body.Reason)
}

func TestTransition_MissingEvidence422(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateDraft, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Office",
		transitionRequest{Action: string(guardrail.ActionAdvanceInboundPlan), Override: true})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody[errorBody](t, resp)
	assert.Equal(t, string(transition.KindMissingOverrideEvidence), body.Kind)
}

func TestTransition_SideChannelRouting(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateInvoiceReady, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Office",
		transitionRequest{Action: string(guardrail.ActionOpenInvoiceWizard)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[transition.Result](t, resp)
	assert.Nil(t, result.Order)
	assert.Equal(t, transition.RouteInvoiceWizard, result.Routing)

	// The order did not move.
	stored, err := env.store.Get(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateInvoiceReady, stored.State())
}

func TestTransition_Conflict409(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateDraft, "")

	// Target already reached: simulate a second client racing ahead.
	_, err := env.store.AdvanceStatus(context.Background(), "ord-1",
		lifecycle.StateInboundLogisticsPlanned, orders.TransitionAudit{ActingRole: "Office"})
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Office",
		transitionRequest{
			Action:         string(guardrail.ActionAdvanceInboundPlan),
			Override:       true,
			OverrideReason: "RETRY",
			OverrideNote:   "double submit",
		})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHoldLifecycle(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateInProduction, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/hold", "Quality",
		holdRequest{Marker: "QUALITY_HOLD", ReasonCode: "NC-117", Note: "deviation found"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	held := decodeBody[orders.Order](t, resp)
	assert.Equal(t, "QUALITY_HOLD", held.HoldOverlay)

	// Receiving may not manage holds.
	resp = env.do(t, http.MethodDelete, "/api/v1/orders/ord-1/hold", "Receiving", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/orders/ord-1/hold", "Supervisor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := decodeBody[orders.Order](t, resp)
	assert.Empty(t, cleared.HoldOverlay)
}

func TestHold_RequiresReason(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateInProduction, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/hold", "Quality", holdRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBoardEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateInProduction, "")
	env.seed(t, "ord-2", lifecycle.StateDraft, "")

	resp := env.do(t, http.MethodGet, "/api/v1/board?role=Production", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeBody[board.Snapshot](t, resp)
	require.Len(t, snap.Cards, 1)
	assert.Equal(t, "ord-1", snap.Cards[0].Order.ID)

	resp = env.do(t, http.MethodGet, "/api/v1/board?role=Janitor", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditTrailEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	env.seed(t, "ord-1", lifecycle.StateReadyForProduction, "")

	resp := env.do(t, http.MethodPost, "/api/v1/orders/ord-1/transition", "Production",
		transitionRequest{Action: string(guardrail.ActionStartProduction)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/orders/ord-1/audit", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string][]orders.AuditEntry](t, resp)
	entries := body["entries"]
	require.Len(t, entries, 1)
	assert.Equal(t, string(lifecycle.StateReadyForProduction), entries[0].FromStatus)
	assert.Equal(t, string(lifecycle.StateInProduction), entries[0].ToStatus)
	assert.Equal(t, "Production", entries[0].ActingRole)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit = 2
	store := orders.NewMemStore()
	srv := NewServer(config.NewHolder(cfg, ""), store,
		transition.New(store, nil), board.New(store, nil, time.Second), health.NewManager("test"))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	var last int
	for i := 0; i < 3; i++ {
		resp, err := ts.Client().Get(ts.URL + "/api/v1/lifecycle")
		require.NoError(t, err)
		last = resp.StatusCode
		_ = resp.Body.Close()
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
