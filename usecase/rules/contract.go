package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/rentals/domain"
)

// Activation is the outcome of activating a contract.
type Activation struct {
	Contract     domain.Contract
	Installments []domain.Installment
	Property     domain.Property
}

// Termination is the outcome of ending a contract.
type Termination struct {
	Contract domain.Contract
	Property domain.Property
}

// ValidateContract checks a contract against its own invariants and against
// the active contract already holding the same property. The returned copy
// carries the derived end date.
func ValidateContract(candidate domain.Contract, existingActive *domain.Contract) (domain.Contract, error) {
	if candidate.Status == "" {
		candidate.Status = domain.ContractPending
	}
	candidate.TenantName = strings.TrimSpace(candidate.TenantName)

	switch {
	case !candidate.PropertyID.IsSet():
		return domain.Contract{}, domain.ErrMissingProperty
	case !candidate.TenantID.IsSet() && candidate.TenantName == "":
		return domain.Contract{}, domain.ErrMissingTenant
	case candidate.StartDate.IsZero():
		return domain.Contract{}, domain.ErrMissingStartDate
	case candidate.DurationMonths < 1:
		return domain.Contract{}, domain.ErrInvalidDuration
	case candidate.BillingDay < 1 || candidate.BillingDay > 31:
		return domain.Contract{}, domain.ErrInvalidBillingDay
	case !candidate.MonthlyAmount.IsPositive():
		return domain.Contract{}, domain.ErrInvalidAmount
	}

	if conflicts(candidate, existingActive) {
		return domain.Contract{}, domain.ErrConflictingActive
	}

	candidate.StartDate = domain.DateOf(candidate.StartDate)
	candidate.EndDate = EndDate(candidate.StartDate, candidate.DurationMonths)
	if !candidate.StartDate.Before(candidate.EndDate) {
		return domain.Contract{}, domain.ErrInvalidDateRange
	}
	return candidate, nil
}

func conflicts(candidate domain.Contract, existing *domain.Contract) bool {
	if existing == nil || !existing.IsActive() || !candidate.IsActive() {
		return false
	}
	if existing.PropertyID != candidate.PropertyID {
		return false
	}
	return !candidate.ID.IsSet() || existing.ID != candidate.ID
}

// CheckContractEdit keeps status changes out of plain edits: new contracts
// start pending and existing ones keep their status. Transitions go through
// ActivateContract and TerminateContract. Once activated, a contract stays
// bound to its property.
func CheckContractEdit(current *domain.Contract, candidate domain.Contract) error {
	status := candidate.Status
	if status == "" {
		status = domain.ContractPending
	}
	if current == nil {
		if status != domain.ContractPending {
			return domain.ErrInvalidTransition
		}
		return nil
	}
	if current.Status != status {
		return domain.ErrInvalidTransition
	}
	if current.Status != domain.ContractPending && current.PropertyID != candidate.PropertyID {
		return fmt.Errorf("%w: %s contract cannot move to another property", domain.ErrInvalidTransition, current.Status)
	}
	return nil
}

// ActivateContract marks a pending contract active, generates its full
// installment schedule and takes the property off the market. It is the only
// place installments are generated.
func ActivateContract(c domain.Contract, p domain.Property, existingActive *domain.Contract) (Activation, error) {
	if c.Status != "" && c.Status != domain.ContractPending {
		return Activation{}, fmt.Errorf("%w: contract is %s", domain.ErrInvalidTransition, c.Status)
	}
	if !c.ID.IsSet() {
		return Activation{}, fmt.Errorf("%w: contract must be saved before activation", domain.ErrInvalidTransition)
	}
	if c.PropertyID.IsSet() && p.ID != c.PropertyID {
		return Activation{}, fmt.Errorf("%w: contract references property %s", domain.ErrMissingProperty, c.PropertyID)
	}

	c.Status = domain.ContractActive
	validated, err := ValidateContract(c, existingActive)
	if err != nil {
		return Activation{}, err
	}

	dates := DueDates(validated.StartDate, validated.BillingDay, validated.DurationMonths)
	installments := make([]domain.Installment, len(dates))
	for k, due := range dates {
		installments[k] = domain.Installment{
			ContractID: validated.ID,
			PropertyID: validated.PropertyID,
			Sequence:   k + 1,
			DueDate:    due,
			Amount:     validated.MonthlyAmount,
			Status:     domain.InstallmentOpen,
		}
	}

	p.Available = false
	return Activation{
		Contract:     validated,
		Installments: installments,
		Property:     p,
	}, nil
}

// TerminateContract ends an active contract. The property becomes available
// again unless another active contract still references it.
func TerminateContract(c domain.Contract, p domain.Property, others []domain.Contract) (Termination, error) {
	if !c.IsActive() {
		return Termination{}, fmt.Errorf("%w: contract is %s", domain.ErrInvalidTransition, c.Status)
	}
	if c.PropertyID.IsSet() && p.ID != c.PropertyID {
		return Termination{}, fmt.Errorf("%w: contract references property %s", domain.ErrMissingProperty, c.PropertyID)
	}
	c.Status = domain.ContractEnded

	stillHeld := false
	for _, o := range others {
		if o.ID == c.ID {
			continue
		}
		if o.PropertyID == p.ID && o.IsActive() {
			stillHeld = true
			break
		}
	}
	if !stillHeld {
		p.Available = true
	}
	return Termination{Contract: c, Property: p}, nil
}

// ExpireContract terminates c when today has reached its end date. The bool
// reports whether the contract expired.
func ExpireContract(c domain.Contract, p domain.Property, others []domain.Contract, today time.Time) (Termination, bool, error) {
	if !c.IsActive() {
		return Termination{}, false, nil
	}
	end := c.EndDate
	if end.IsZero() {
		end = EndDate(c.StartDate, c.DurationMonths)
	}
	if domain.DateOf(today).Before(end) {
		return Termination{}, false, nil
	}
	t, err := TerminateContract(c, p, others)
	if err != nil {
		return Termination{}, false, err
	}
	return t, true, nil
}

// CanDeleteContract allows removal of pending and ended contracts only.
func CanDeleteContract(c domain.Contract) error {
	if c.IsActive() {
		return domain.ErrContractActive
	}
	return nil
}
