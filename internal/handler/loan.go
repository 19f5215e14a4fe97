package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/chamahub/chama-engine/internal/domain"
	"github.com/chamahub/chama-engine/internal/service"
	"github.com/chamahub/chama-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Apply originates a loan application
func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.Apply(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

// ListByMember returns a member's loan applications
func (h *LoanHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathInt64(w, r, "memberId")
	if !ok {
		return
	}

	loans, err := h.service.ListByMember(r.Context(), memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// ListByChama returns all loan applications inside a chama
func (h *LoanHandler) ListByChama(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	loans, err := h.service.ListByChama(r.Context(), chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loans)
}

// UpdateStatus approves or rejects a loan
func (h *LoanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	var req domain.UpdateLoanStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.UpdateStatus(r.Context(), loanID, req.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// Status reports repayment progress for a loan
func (h *LoanHandler) Status(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	status, err := h.service.Status(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, status)
}

// RecordPayment appends a repayment to the loan's ledger
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), loanID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, payment)
}

// ListPayments returns the ledger for one loan
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	payments, err := h.service.ListPaymentsByLoan(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}

// ListPaymentsByChama returns every payment recorded inside a chama
func (h *LoanHandler) ListPaymentsByChama(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathInt64(w, r, "chamaId")
	if !ok {
		return
	}

	payments, err := h.service.ListPaymentsByChama(r.Context(), chamaID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}

// ListPaymentsByPayer returns every payment a payer has recorded
func (h *LoanHandler) ListPaymentsByPayer(w http.ResponseWriter, r *http.Request) {
	payerID, ok := pathInt64(w, r, "payerId")
	if !ok {
		return
	}

	payments, err := h.service.ListPaymentsByPayer(r.Context(), payerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, name+" must be a UUID", err)
		return uuid.Nil, false
	}
	return id, true
}
