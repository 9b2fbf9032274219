package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus tracks whether a payment obligation has been settled.
type InstallmentStatus string

const (
	InstallmentOpen InstallmentStatus = "OPEN"
	InstallmentPaid InstallmentStatus = "PAID"
)

// Installment is one scheduled payment under a contract. Ad-hoc installments
// entered by hand have no ContractID and a zero Sequence.
type Installment struct {
	ID         ID                `json:"id"`
	ContractID ID                `json:"contract_id"`
	PropertyID ID                `json:"property_id"`
	Sequence   int               `json:"sequence,omitempty"`
	DueDate    time.Time         `json:"due_date"`
	Amount     decimal.Decimal   `json:"amount"`
	Status     InstallmentStatus `json:"status"`
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
}

// Generated reports whether the installment belongs to a contract schedule.
func (i *Installment) Generated() bool {
	return i != nil && i.ContractID.IsSet() && i.Sequence > 0
}
