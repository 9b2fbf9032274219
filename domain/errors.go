package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups error codes by how a caller is expected to react.
type ErrorKind string

const (
	// KindValidation errors are caller-correctable and never reach the store.
	KindValidation ErrorKind = "VALIDATION"
	// KindTransition errors reject an illegal state change.
	KindTransition ErrorKind = "TRANSITION"
	KindTransport  ErrorKind = "TRANSPORT"
	KindCapture    ErrorKind = "CAPTURE"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindInternal   ErrorKind = "INTERNAL"
)

// ErrorCode represents a semantic classification shared across layers.
type ErrorCode string

const (
	ErrCodeEmptyTitle          ErrorCode = "EMPTY_TITLE"
	ErrCodeMissingProperty     ErrorCode = "MISSING_PROPERTY"
	ErrCodeMissingTenant       ErrorCode = "MISSING_TENANT"
	ErrCodeMissingStartDate    ErrorCode = "MISSING_START_DATE"
	ErrCodeMissingDueDate      ErrorCode = "MISSING_DUE_DATE"
	ErrCodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDuration     ErrorCode = "INVALID_DURATION"
	ErrCodeInvalidBillingDay   ErrorCode = "INVALID_BILLING_DAY"
	ErrCodeInvalidDateRange    ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeConflictingActive   ErrorCode = "CONFLICTING_ACTIVE_CONTRACT"
	ErrCodeAvailabilityLocked  ErrorCode = "AVAILABILITY_LOCKED"
	ErrCodeAlreadyPaid         ErrorCode = "ALREADY_PAID"
	ErrCodePaymentIrreversible ErrorCode = "PAYMENT_IRREVERSIBLE"
	ErrCodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	ErrCodeContractActive      ErrorCode = "CONTRACT_ACTIVE"
	ErrCodePropertyInUse       ErrorCode = "PROPERTY_IN_USE"
	ErrCodeInstallmentOwned    ErrorCode = "INSTALLMENT_OWNED"
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeEncodeFailed        ErrorCode = "ENCODE_FAILED"
	ErrCodeSnapshotStale       ErrorCode = "SNAPSHOT_STALE"
	ErrCodeMutationInFlight    ErrorCode = "MUTATION_IN_FLIGHT"
	ErrCodePropertyNotFound    ErrorCode = "PROPERTY_NOT_FOUND"
	ErrCodeContractNotFound    ErrorCode = "CONTRACT_NOT_FOUND"
	ErrCodeInstallmentNotFound ErrorCode = "INSTALLMENT_NOT_FOUND"
	ErrCodeInvalidPayload      ErrorCode = "INVALID_PAYLOAD"
	ErrCodeTransport           ErrorCode = "TRANSPORT"
)

// Error represents a domain-level error.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a domain error.
func NewError(kind ErrorKind, code ErrorCode, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(kind ErrorKind, code ErrorCode, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrEmptyTitle          = NewError(KindValidation, ErrCodeEmptyTitle, "title must not be blank")
	ErrMissingProperty     = NewError(KindValidation, ErrCodeMissingProperty, "property reference is required")
	ErrMissingTenant       = NewError(KindValidation, ErrCodeMissingTenant, "tenant reference is required")
	ErrMissingStartDate    = NewError(KindValidation, ErrCodeMissingStartDate, "start date is required")
	ErrMissingDueDate      = NewError(KindValidation, ErrCodeMissingDueDate, "due date is required")
	ErrInvalidAmount       = NewError(KindValidation, ErrCodeInvalidAmount, "amount must be positive")
	ErrInvalidDuration     = NewError(KindValidation, ErrCodeInvalidDuration, "duration must be at least one month")
	ErrInvalidBillingDay   = NewError(KindValidation, ErrCodeInvalidBillingDay, "billing day must be between 1 and 31")
	ErrInvalidDateRange    = NewError(KindValidation, ErrCodeInvalidDateRange, "start date must precede end date")
	ErrConflictingActive   = NewError(KindValidation, ErrCodeConflictingActive, "property already has an active contract")
	ErrAvailabilityLocked  = NewError(KindValidation, ErrCodeAvailabilityLocked, "availability is managed by the active contract")
	ErrAlreadyPaid         = NewError(KindTransition, ErrCodeAlreadyPaid, "installment already paid")
	ErrPaymentIrreversible = NewError(KindTransition, ErrCodePaymentIrreversible, "a paid installment cannot be reopened")
	ErrInvalidTransition   = NewError(KindTransition, ErrCodeInvalidTransition, "illegal contract state change")
	ErrContractActive      = NewError(KindTransition, ErrCodeContractActive, "active contract must be terminated before removal")
	ErrPropertyInUse       = NewError(KindTransition, ErrCodePropertyInUse, "property is referenced by an active or pending contract")
	ErrInstallmentOwned    = NewError(KindTransition, ErrCodeInstallmentOwned, "generated installments are removed with their contract")
	ErrPermissionDenied    = NewError(KindCapture, ErrCodePermissionDenied, "camera access denied, enable it and try again")
	ErrEncodeFailed        = NewError(KindCapture, ErrCodeEncodeFailed, "photo could not be encoded")
	ErrSnapshotStale       = NewError(KindConflict, ErrCodeSnapshotStale, "reload before submitting changes")
	ErrMutationInFlight    = NewError(KindConflict, ErrCodeMutationInFlight, "another operation is still running")
	ErrPropertyNotFound    = NewError(KindNotFound, ErrCodePropertyNotFound, "property not found")
	ErrContractNotFound    = NewError(KindNotFound, ErrCodeContractNotFound, "contract not found")
	ErrInstallmentNotFound = NewError(KindNotFound, ErrCodeInstallmentNotFound, "installment not found")
	ErrInvalidPayload      = NewError(KindValidation, ErrCodeInvalidPayload, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsKind reports whether err belongs to the given category. Transport
// failures match KindTransport whether or not they were wrapped.
func IsKind(err error, kind ErrorKind) bool {
	var tErr *TransportError
	if kind == KindTransport && errors.As(err, &tErr) {
		return true
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind == kind
	}
	return false
}

// TransportError is a failed store call. StatusCode is zero when the request
// never produced a response.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
