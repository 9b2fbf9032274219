package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle state of a rental contract.
type ContractStatus string

const (
	// ContractPending contracts are signed but never activated.
	ContractPending ContractStatus = "PENDING"
	ContractActive  ContractStatus = "ACTIVE"
	ContractEnded   ContractStatus = "ENDED"
)

// Contract binds a property to a tenant for a bounded number of months.
type Contract struct {
	ID             ID              `json:"id"`
	PropertyID     ID              `json:"property_id"`
	TenantID       ID              `json:"tenant_id"`
	TenantName     string          `json:"tenant_name,omitempty"`
	OwnerID        ID              `json:"owner_id"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	BillingDay     int             `json:"billing_day"`
	DurationMonths int             `json:"duration_months"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount"`
	Status         ContractStatus  `json:"status"`
}

func (c *Contract) IsActive() bool {
	return c != nil && c.Status == ContractActive
}
