package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrChamaRulesNotFound      = errors.New("chama rules not found")
	ErrMemberNotFound          = errors.New("member not found")
	ErrLoanNotFound            = errors.New("loan not found")
	ErrContributionExists      = errors.New("contribution already exists for this cycle")
	ErrPaymentExceedsRepayment = errors.New("payment exceeds loan repayment amount")
	ErrLoanNotApproved         = errors.New("loan must be approved before payment")
	ErrMemberNotInChama        = errors.New("member does not belong to this chama")
	ErrInvalidPaymentAmount    = errors.New("invalid payment amount")
	ErrFeatureUnavailable      = errors.New("feature not yet available")
	ErrInvalidPayoutOrder      = errors.New("invalid payout order")
)

// Error kinds, used by the transport layer to pick a presentation.
const (
	KindNotFound     = "NOT_FOUND"
	KindConflict     = "CONFLICT"
	KindInvalidState = "INVALID_STATE"
	KindUnavailable  = "UNAVAILABLE"
	KindInternal     = "INTERNAL"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    string
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// KindOf extracts the error kind, defaulting to internal for plain errors.
func KindOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// Error codes
const (
	ErrCodeChamaRulesNotFound      = "CHAMA_RULES_NOT_FOUND"
	ErrCodeMemberNotFound          = "MEMBER_NOT_FOUND"
	ErrCodeLoanNotFound            = "LOAN_NOT_FOUND"
	ErrCodeDuplicateContribution   = "DUPLICATE_CONTRIBUTION"
	ErrCodePaymentExceedsRepayment = "PAYMENT_EXCEEDS_REPAYMENT"
	ErrCodeLoanNotApproved         = "LOAN_NOT_APPROVED"
	ErrCodeMemberNotInChama        = "MEMBER_NOT_IN_CHAMA"
	ErrCodeInvalidPaymentAmount    = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidAmount           = "INVALID_AMOUNT"
	ErrCodeInvalidDate             = "INVALID_DATE"
	ErrCodeFeatureUnavailable      = "FEATURE_UNAVAILABLE"
	ErrCodeInvalidPayoutOrder      = "INVALID_PAYOUT_ORDER"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapChamaRulesNotFound(chamaID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeChamaRulesNotFound,
		fmt.Sprintf("Rules for chama %d not found", chamaID),
		ErrChamaRulesNotFound,
	)
}

func WrapMemberNotFound(memberID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member %d not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapDuplicateContribution(memberID, chamaID int64, cycle string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeDuplicateContribution,
		fmt.Sprintf("Member %d already contributed to chama %d for cycle %q", memberID, chamaID, cycle),
		ErrContributionExists,
	)
}

func WrapPaymentExceedsRepayment(outstanding, attempted string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodePaymentExceedsRepayment,
		fmt.Sprintf("Payment of %s exceeds outstanding balance of %s", attempted, outstanding),
		ErrPaymentExceedsRepayment,
	)
}

func WrapLoanNotApproved(loanID, status string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeLoanNotApproved,
		fmt.Sprintf("Loan %s has status %s, payments require APPROVED", loanID, status),
		ErrLoanNotApproved,
	)
}

func WrapMemberNotInChama(memberID, chamaID int64) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeMemberNotInChama,
		fmt.Sprintf("Member %d does not belong to chama %d", memberID, chamaID),
		ErrMemberNotInChama,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapInvalidAmount(field, value string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid amount for %s: %s", field, value),
		nil,
	)
}

func WrapInvalidDate(field, value string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeInvalidDate,
		fmt.Sprintf("%s %q is not a valid date", field, value),
		nil,
	)
}

func WrapInvalidPayoutOrder(message string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeInvalidPayoutOrder,
		message,
		ErrInvalidPayoutOrder,
	)
}

func WrapFeatureUnavailable(feature string) *BusinessError {
	return NewBusinessError(
		KindUnavailable,
		ErrCodeFeatureUnavailable,
		fmt.Sprintf("%s is not yet available", feature),
		ErrFeatureUnavailable,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
