package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/rentals/domain"
)

func TestMarkReceivedOnce(t *testing.T) {
	i := domain.Installment{
		ID:         domain.NewID(1),
		PropertyID: domain.NewID(2),
		DueDate:    domain.Date(2025, time.March, 5),
		Amount:     decimal.NewFromInt(900),
		Status:     domain.InstallmentOpen,
	}
	at := time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)

	paid, err := MarkReceived(i, at)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, at, *paid.PaidAt)
	assert.Equal(t, domain.InstallmentOpen, i.Status, "input must not be mutated")

	again, err := MarkReceived(paid, at.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.True(t, domain.IsKind(err, domain.KindTransition))
	assert.Equal(t, domain.Installment{}, again)
	assert.Equal(t, domain.InstallmentPaid, paid.Status)
}

func TestCheckStatusChange(t *testing.T) {
	paid := domain.Installment{Status: domain.InstallmentPaid, Amount: decimal.NewFromInt(10)}
	reopened := paid
	reopened.Status = domain.InstallmentOpen
	assert.ErrorIs(t, CheckStatusChange(paid, reopened), domain.ErrPaymentIrreversible)
	assert.NoError(t, CheckStatusChange(paid, paid))

	generated := domain.Installment{
		ContractID: domain.NewID(1), PropertyID: domain.NewID(4), Sequence: 2,
		DueDate: domain.Date(2024, time.April, 10),
		Status:  domain.InstallmentOpen, Amount: decimal.NewFromInt(10),
	}
	repriced := generated
	repriced.Amount = decimal.NewFromInt(12)
	assert.ErrorIs(t, CheckStatusChange(generated, repriced), domain.ErrInvalidAmount)

	rescheduled := generated
	rescheduled.DueDate = domain.Date(2024, time.December, 25)
	assert.ErrorIs(t, CheckStatusChange(generated, rescheduled), domain.ErrInvalidTransition)

	moved := generated
	moved.PropertyID = domain.NewID(5)
	assert.ErrorIs(t, CheckStatusChange(generated, moved), domain.ErrInvalidTransition)

	settled := generated
	settled.Status = domain.InstallmentPaid
	assert.NoError(t, CheckStatusChange(generated, settled))

	manual := domain.Installment{PropertyID: domain.NewID(4), DueDate: domain.Date(2024, time.April, 10), Amount: decimal.NewFromInt(10)}
	manualMoved := manual
	manualMoved.DueDate = domain.Date(2024, time.May, 1)
	manualMoved.PropertyID = domain.NewID(5)
	assert.NoError(t, CheckStatusChange(manual, manualMoved))
}

func TestValidateInstallmentEdit(t *testing.T) {
	base := domain.Installment{
		PropertyID: domain.NewID(4),
		Amount:     decimal.RequireFromString("350.50"),
		DueDate:    time.Date(2025, time.July, 10, 15, 30, 0, 0, time.UTC),
	}

	out, err := ValidateInstallmentEdit(base)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentOpen, out.Status)
	assert.Equal(t, domain.Date(2025, time.July, 10), out.DueDate)

	missingProperty := base
	missingProperty.PropertyID = domain.NoID
	_, err = ValidateInstallmentEdit(missingProperty)
	assert.ErrorIs(t, err, domain.ErrMissingProperty)

	zero := base
	zero.Amount = decimal.Zero
	_, err = ValidateInstallmentEdit(zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	noDue := base
	noDue.DueDate = time.Time{}
	_, err = ValidateInstallmentEdit(noDue)
	assert.ErrorIs(t, err, domain.ErrMissingDueDate)
}

func TestCanDeleteInstallment(t *testing.T) {
	assert.NoError(t, CanDeleteInstallment(domain.Installment{PropertyID: domain.NewID(1)}))
	assert.ErrorIs(t, CanDeleteInstallment(domain.Installment{ContractID: domain.NewID(1), Sequence: 1}), domain.ErrInstallmentOwned)
}

func TestSummarizeInstallments(t *testing.T) {
	today := domain.Date(2025, time.May, 10)
	items := []domain.Installment{
		{Amount: decimal.NewFromInt(100), DueDate: domain.Date(2025, time.May, 1), Status: domain.InstallmentOpen},
		{Amount: decimal.NewFromInt(200), DueDate: domain.Date(2025, time.May, 10), Status: domain.InstallmentOpen},
		{Amount: decimal.NewFromInt(300), DueDate: domain.Date(2025, time.April, 1), Status: domain.InstallmentPaid},
	}
	s := SummarizeInstallments(items, today)
	assert.Equal(t, 2, s.Open)
	assert.Equal(t, 1, s.Paid)
	assert.Equal(t, 1, s.Overdue)
	assert.True(t, s.OpenAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, s.PaidAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, s.OverdueAmount.Equal(decimal.NewFromInt(100)))
}
