package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/chamahub/chama-engine/internal/domain"
	"github.com/chamahub/chama-engine/internal/service"
	"github.com/chamahub/chama-engine/pkg/response"
)

type RulesHandler struct {
	service   *service.RulesService
	validator *validator.Validate
}

func NewRulesHandler(service *service.RulesService) *RulesHandler {
	return &RulesHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Upsert creates or updates the rules for a chama
func (h *RulesHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	rules, err := h.service.CreateOrUpdate(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, rules)
}

// Get returns the rules for a chama
func (h *RulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	rules, err := h.service.Get(r.Context(), chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, rules)
}

// GetAll returns the rules for every chama
func (h *RulesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.GetAll(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, rules)
}

// Delete removes the rules for a chama
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chamaID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Chama rules deleted"})
}

// Exists reports whether rules are configured for a chama
func (h *RulesHandler) Exists(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	exists, err := h.service.Exists(r.Context(), chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]bool{"exists": exists})
}

// UpdatePayoutOrder replaces the payout rotation order
func (h *RulesHandler) UpdatePayoutOrder(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	var req domain.PayoutOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	rules, err := h.service.UpdatePayoutOrder(r.Context(), chamaID, req.PayoutOrder)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, rules)
}

// SetCurrentPayoutMember moves the rotation pointer; a null member_id clears it
func (h *RulesHandler) SetCurrentPayoutMember(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	var req domain.SetPayoutMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	rules, err := h.service.SetCurrentPayoutMember(r.Context(), chamaID, req.MemberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, rules)
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(w, name+" must be an integer", err)
		return 0, false
	}
	return id, true
}
