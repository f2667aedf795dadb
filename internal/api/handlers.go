// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/plantline/plantline/internal/guardrail"
	"github.com/plantline/plantline/internal/lifecycle"
	"github.com/plantline/plantline/internal/log"
	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/transition"
)

// headerActingRole names the workstation role a request acts as. Role is a
// UI claim, not an identity: the token authenticates, the role scopes.
const headerActingRole = "X-Acting-Role"

func actingRole(r *http.Request) (guardrail.Role, error) {
	return guardrail.ParseRole(r.Header.Get(headerActingRole))
}

// --- lifecycle reference ---

type lifecycleStateView struct {
	Status   string `json:"status"`
	Label    string `json:"label"`
	Terminal bool   `json:"terminal,omitempty"`
}

// handleLifecycle returns the canonical state sequence. Clients render
// progress bars and pickers from this instead of hardcoding it.
func (s *Server) handleLifecycle(w http.ResponseWriter, _ *http.Request) {
	states := make([]lifecycleStateView, 0, len(lifecycle.Sequence))
	for _, st := range lifecycle.Sequence {
		states = append(states, lifecycleStateView{
			Status:   string(st),
			Label:    st.Label(),
			Terminal: st.IsTerminal(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": states})
}

// --- orders ---

type listResponse struct {
	Orders   []orders.Order `json:"orders"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := orders.ListFilter{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", orders.DefaultPageSize),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			state, err := lifecycle.Parse(part)
			if err != nil {
				writeValidationError(w, "unknown status "+strconv.Quote(part))
				return
			}
			filter.States = append(filter.States, state)
		}
	}
	if raw := r.URL.Query().Get("role"); raw != "" && filter.States == nil {
		role, err := guardrail.ParseRole(raw)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		// Nil queue states mean the role sees every order.
		filter.States = guardrail.QueueStates(role)
	}

	list, total, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Orders:   list,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

type createOrderRequest struct {
	CustomerName string `json:"customerName"`
	ItemCode     string `json:"itemCode"`
	Quantity     int    `json:"quantity"`
	OrderStatus  string `json:"orderStatus,omitempty"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.CustomerName == "" || req.ItemCode == "" {
		writeValidationError(w, "customerName and itemCode are required")
		return
	}
	if req.Quantity <= 0 {
		writeValidationError(w, "quantity must be positive")
		return
	}

	order := &orders.Order{
		CustomerName: req.CustomerName,
		ItemCode:     req.ItemCode,
		Quantity:     req.Quantity,
		OrderStatus:  req.OrderStatus,
	}
	if err := s.store.Create(r.Context(), order); err != nil {
		writeError(w, err)
		return
	}
	s.boards.Invalidate()
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	trail, err := s.store.AuditTrail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": trail})
}

// --- actions ---

type actionView struct {
	Action    string `json:"action"`
	Enabled   bool   `json:"enabled"`
	Reason    string `json:"reason,omitempty"`
	Target    string `json:"targetStatus,omitempty"`
	Suggested bool   `json:"suggested"`
}

type actionsResponse struct {
	OrderID string       `json:"orderId"`
	Status  string       `json:"status"`
	Role    string       `json:"role"`
	Actions []actionView `json:"actions"`
}

// handleActions answers "what can this role do with this order right now".
// Suggested actions appear even when disabled so the UI can explain why.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	role, err := actingRole(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	order, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	state := order.State()
	hold := order.HasHold()
	override := r.URL.Query().Get("override") == "true"

	build := func(action guardrail.Action, suggested bool) actionView {
		verdict := guardrail.Evaluate(guardrail.Context{
			Role:     role,
			Action:   action,
			State:    state,
			HasHold:  hold,
			Override: override,
		})
		return actionView{
			Action:    string(action),
			Enabled:   verdict.Enabled,
			Reason:    verdict.Reason,
			Target:    string(verdict.Target),
			Suggested: suggested,
		}
	}

	views := make([]actionView, 0, len(guardrail.Actions))
	for _, action := range guardrail.SuggestedActions(state) {
		views = append(views, build(action, true))
	}
	for _, action := range guardrail.AlwaysAvailable {
		views = append(views, build(action, false))
	}

	writeJSON(w, http.StatusOK, actionsResponse{
		OrderID: order.ID,
		Status:  string(state),
		Role:    string(role),
		Actions: views,
	})
}

// --- transition ---

type transitionRequest struct {
	Action                  string `json:"action"`
	Override                bool   `json:"override,omitempty"`
	OverrideReason          string `json:"overrideReason,omitempty"`
	OverrideNote            string `json:"overrideNote,omitempty"`
	DirectReceiveReasonCode string `json:"directReceiveReasonCode,omitempty"`
	DirectReceiveNote       string `json:"directReceiveNote,omitempty"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	role, err := actingRole(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	action, err := guardrail.ParseAction(req.Action)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	order, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := log.ContextWithOrderID(r.Context(), order.ID)
	result, err := s.exec.Execute(ctx, order, transition.Request{
		Action:                  action,
		Role:                    role,
		Override:                req.Override,
		OverrideReason:          req.OverrideReason,
		OverrideNote:            req.OverrideNote,
		DirectReceiveReasonCode: req.DirectReceiveReasonCode,
		DirectReceiveNote:       req.DirectReceiveNote,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Order != nil {
		s.boards.Invalidate()
	}
	writeJSON(w, http.StatusOK, result)
}

// --- holds ---

type holdRequest struct {
	Marker     string `json:"marker,omitempty"`
	ReasonCode string `json:"reasonCode"`
	Note       string `json:"note,omitempty"`
}

func (s *Server) handleApplyHold(w http.ResponseWriter, r *http.Request) {
	role, err := actingRole(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	var req holdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if strings.TrimSpace(req.ReasonCode) == "" {
		writeValidationError(w, "a hold requires a reasonCode")
		return
	}
	if !guardrail.RolePermitted(guardrail.ActionApplyHold, role) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error:  "transition blocked",
			Kind:   string(transition.KindBlocked),
			Reason: "role " + string(role) + " is not permitted to applyHold",
		})
		return
	}

	order, err := s.store.SetHold(r.Context(), chi.URLParam(r, "id"), req.Marker, orders.TransitionAudit{
		ActingRole: string(role),
		ReasonCode: req.ReasonCode,
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.audit.HoldApplied(string(role), order.ID, order.HoldOverlay)
	s.boards.Invalidate()
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleClearHold(w http.ResponseWriter, r *http.Request) {
	role, err := actingRole(r)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if !guardrail.RolePermitted(guardrail.ActionApplyHold, role) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error:  "transition blocked",
			Kind:   string(transition.KindBlocked),
			Reason: "role " + string(role) + " is not permitted to clear holds",
		})
		return
	}

	order, err := s.store.ClearHold(r.Context(), chi.URLParam(r, "id"), orders.TransitionAudit{
		ActingRole: string(role),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.audit.HoldCleared(string(role), order.ID)
	s.boards.Invalidate()
	writeJSON(w, http.StatusOK, order)
}

// --- board ---

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	role, err := guardrail.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	snap, err := s.boards.Snapshot(r.Context(), role,
		queryInt(r, "page", 1), queryInt(r, "pageSize", orders.DefaultPageSize))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- helpers ---

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
