package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/rentals/domain"
)

// PortfolioSummary counts properties by occupancy.
type PortfolioSummary struct {
	Total       int `json:"total"`
	Rented      int `json:"rented"`
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
}

// Summarize derives the portfolio counts from properties and contracts.
// A property under an active contract counts as rented whatever its flag says.
func Summarize(properties []domain.Property, contracts []domain.Contract) PortfolioSummary {
	s := PortfolioSummary{Total: len(properties)}
	for _, p := range properties {
		switch {
		case ActiveContractFor(p.ID, contracts) != nil:
			s.Rented++
		case p.Available:
			s.Available++
		default:
			s.Unavailable++
		}
	}
	return s
}

// FinanceSummary aggregates installments by payment state.
type FinanceSummary struct {
	Open          int             `json:"open"`
	Paid          int             `json:"paid"`
	Overdue       int             `json:"overdue"`
	OpenAmount    decimal.Decimal `json:"open_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}

// SummarizeInstallments totals installments as of today. Overdue ones are
// open installments due strictly before today and are also counted as open.
func SummarizeInstallments(items []domain.Installment, today time.Time) FinanceSummary {
	today = domain.DateOf(today)
	s := FinanceSummary{
		OpenAmount:    decimal.Zero,
		PaidAmount:    decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for _, i := range items {
		if i.Status == domain.InstallmentPaid {
			s.Paid++
			s.PaidAmount = s.PaidAmount.Add(i.Amount)
			continue
		}
		s.Open++
		s.OpenAmount = s.OpenAmount.Add(i.Amount)
		if IsOverdue(i, today) {
			s.Overdue++
			s.OverdueAmount = s.OverdueAmount.Add(i.Amount)
		}
	}
	return s
}

// IsOverdue reports whether an open installment is past due on today.
func IsOverdue(i domain.Installment, today time.Time) bool {
	return i.Status != domain.InstallmentPaid && domain.DateOf(i.DueDate).Before(domain.DateOf(today))
}
