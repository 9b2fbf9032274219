package rules

import (
	"fmt"
	"time"

	"github.com/fastygo/rentals/domain"
)

// MarkReceived settles an open installment. Paying twice fails with
// ErrAlreadyPaid; nothing ever moves an installment back to open.
func MarkReceived(i domain.Installment, at time.Time) (domain.Installment, error) {
	if i.Status == domain.InstallmentPaid {
		return domain.Installment{}, domain.ErrAlreadyPaid
	}
	i.Status = domain.InstallmentPaid
	paidAt := at.UTC()
	i.PaidAt = &paidAt
	return i, nil
}

// ValidateInstallmentEdit checks a hand-entered installment.
func ValidateInstallmentEdit(candidate domain.Installment) (domain.Installment, error) {
	switch {
	case !candidate.PropertyID.IsSet():
		return domain.Installment{}, domain.ErrMissingProperty
	case !candidate.Amount.IsPositive():
		return domain.Installment{}, domain.ErrInvalidAmount
	case candidate.DueDate.IsZero():
		return domain.Installment{}, domain.ErrMissingDueDate
	}
	if candidate.Status == "" {
		candidate.Status = domain.InstallmentOpen
	}
	candidate.DueDate = domain.DateOf(candidate.DueDate)
	return candidate, nil
}

// CheckStatusChange refuses edits that would reopen a paid installment or
// alter what a generated schedule fixed: amount, due date and property.
func CheckStatusChange(current, candidate domain.Installment) error {
	if current.Status == domain.InstallmentPaid && candidate.Status != domain.InstallmentPaid {
		return domain.ErrPaymentIrreversible
	}
	if !current.Generated() {
		return nil
	}
	if !current.Amount.Equal(candidate.Amount) {
		return domain.ErrInvalidAmount
	}
	if !domain.DateOf(current.DueDate).Equal(domain.DateOf(candidate.DueDate)) {
		return fmt.Errorf("%w: due date of installment %d is fixed by its schedule", domain.ErrInvalidTransition, current.Sequence)
	}
	if current.PropertyID != candidate.PropertyID {
		return fmt.Errorf("%w: installment %d belongs to property %s", domain.ErrInvalidTransition, current.Sequence, current.PropertyID)
	}
	return nil
}

// CanDeleteInstallment allows removal of hand-entered installments only.
func CanDeleteInstallment(i domain.Installment) error {
	if i.Generated() {
		return domain.ErrInstallmentOwned
	}
	return nil
}
