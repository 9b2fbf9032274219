package rules

import (
	"strings"

	"github.com/fastygo/rentals/domain"
)

// ValidateProperty checks a property form before it is persisted.
func ValidateProperty(candidate domain.Property) (domain.Property, error) {
	candidate.Title = strings.TrimSpace(candidate.Title)
	if candidate.Title == "" {
		return domain.Property{}, domain.ErrEmptyTitle
	}
	candidate.Description = strings.TrimSpace(candidate.Description)
	return candidate, nil
}

// CheckAvailabilityEdit refuses to flag a property as available while an
// active contract holds it. Without an active contract the flag is free.
func CheckAvailabilityEdit(candidate domain.Property, active *domain.Contract) error {
	if active == nil || !active.IsActive() || active.PropertyID != candidate.ID {
		return nil
	}
	if candidate.Available {
		return domain.ErrAvailabilityLocked
	}
	return nil
}

// CanDeleteProperty refuses removal while an active or pending contract
// references the property.
func CanDeleteProperty(p domain.Property, contracts []domain.Contract) error {
	for _, c := range contracts {
		if c.PropertyID != p.ID {
			continue
		}
		if c.Status == domain.ContractActive || c.Status == domain.ContractPending {
			return domain.ErrPropertyInUse
		}
	}
	return nil
}

// ActiveContractFor returns the active contract referencing propertyID, if any.
func ActiveContractFor(propertyID domain.ID, contracts []domain.Contract) *domain.Contract {
	if !propertyID.IsSet() {
		return nil
	}
	for i := range contracts {
		if contracts[i].PropertyID == propertyID && contracts[i].IsActive() {
			c := contracts[i]
			return &c
		}
	}
	return nil
}

// ReconcileAvailability returns the properties whose flag disagrees with the
// contracts, already corrected: available if and only if no active contract
// references them.
func ReconcileAvailability(properties []domain.Property, contracts []domain.Contract) []domain.Property {
	var drifted []domain.Property
	for _, p := range properties {
		want := ActiveContractFor(p.ID, contracts) == nil
		if p.Available != want {
			p.Available = want
			drifted = append(drifted, p)
		}
	}
	return drifted
}
