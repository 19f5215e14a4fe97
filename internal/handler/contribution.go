package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/chamahub/chama-engine/internal/domain"
	"github.com/chamahub/chama-engine/internal/service"
	"github.com/chamahub/chama-engine/pkg/response"
)

type ContributionHandler struct {
	service   *service.ContributionService
	validator *validator.Validate
}

func NewContributionHandler(service *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Add records a member contribution for a cycle
func (h *ContributionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domain.AddContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	contribution, err := h.service.AddContribution(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, contribution)
}

// ListByChama returns a chama's contributions, optionally one cycle
func (h *ContributionHandler) ListByChama(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	contributions, err := h.service.ListByChama(r.Context(), chamaID, r.URL.Query().Get("cycle"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, contributions)
}

// ListByMember returns all of a member's contributions
func (h *ContributionHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathInt64(w, r, "memberId")
	if !ok {
		return
	}

	contributions, err := h.service.ListByMember(r.Context(), memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, contributions)
}

// Owed projects what a member currently owes
func (h *ContributionHandler) Owed(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathInt64(w, r, "memberId")
	if !ok {
		return
	}

	chamaID, err := strconv.ParseInt(r.URL.Query().Get("chamaId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "chamaId query parameter is required", err)
		return
	}

	result, err := h.service.Owed(r.Context(), memberID, chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Total sums a chama's contributions, optionally one cycle
func (h *ContributionHandler) Total(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	total, err := h.service.Total(r.Context(), chamaID, r.URL.Query().Get("cycle"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{"chama_id": chamaID, "total": total})
}

// NextPayout reports the rotation's current payee and pooled amount
func (h *ContributionHandler) NextPayout(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	payout, err := h.service.NextPayout(r.Context(), chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payout)
}

// DistributeDividends is not yet available and reports so
func (h *ContributionHandler) DistributeDividends(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	if err := h.service.DistributeDividends(r.Context(), chamaID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Dividends distributed"})
}

// Cycles lists the cycles a chama has contributions for
func (h *ContributionHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	cycles, err := h.service.AvailableCycles(r.Context(), chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, cycles)
}
