// Package installment records payments against contract installments.
package installment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/logger"
	"github.com/fastygo/rentals/repository"
	"github.com/fastygo/rentals/usecase/rules"
	"github.com/fastygo/rentals/usecase/sync"
)

type UseCase struct {
	repo         repository.InstallmentRepository
	installments *sync.Orchestrator[domain.Installment]
	logger       *zap.Logger
	now          func() time.Time
}

func New(installments repository.InstallmentRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:         installments,
		installments: sync.New[domain.Installment]("installments", installments, logger),
		logger:       logger,
		now:          time.Now,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Installment, error) {
	return uc.installments.LoadAll(ctx)
}

// ListDue asks the store for installments close to their due date.
func (uc *UseCase) ListDue(ctx context.Context) ([]domain.Installment, error) {
	return uc.repo.ListDue(ctx)
}

// Save persists a hand-entered installment or edits an existing one. Edits
// keep the schedule linkage of generated installments and can never reopen a
// paid one.
func (uc *UseCase) Save(ctx context.Context, candidate domain.Installment) (domain.Installment, []domain.Installment, error) {
	candidate, err := rules.ValidateInstallmentEdit(candidate)
	if err != nil {
		return domain.Installment{}, nil, err
	}

	items, err := uc.installments.LoadAll(ctx)
	if err != nil {
		return domain.Installment{}, nil, err
	}
	if candidate.ID.IsSet() {
		current, ok := find(items, candidate.ID)
		if !ok {
			return domain.Installment{}, nil, domain.ErrInstallmentNotFound
		}
		candidate.ContractID = current.ContractID
		candidate.Sequence = current.Sequence
		if err := rules.CheckStatusChange(current, candidate); err != nil {
			return domain.Installment{}, nil, err
		}
		if current.Status == domain.InstallmentPaid && candidate.PaidAt == nil {
			candidate.PaidAt = current.PaidAt
		}
	} else {
		candidate.Sequence = 0
	}
	if candidate.Status == domain.InstallmentPaid && candidate.PaidAt == nil {
		paidAt := uc.now().UTC()
		candidate.PaidAt = &paidAt
	}

	saved, err := uc.installments.Submit(ctx, candidate)
	if err != nil {
		return domain.Installment{}, nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("installment saved", zap.String("id", saved.ID.String()))

	snapshot, err := uc.installments.LoadAll(ctx)
	if err != nil {
		return saved, nil, err
	}
	return saved, snapshot, nil
}

// Receive marks an open installment as paid now.
func (uc *UseCase) Receive(ctx context.Context, id domain.ID) (domain.Installment, error) {
	items, err := uc.installments.LoadAll(ctx)
	if err != nil {
		return domain.Installment{}, err
	}
	current, ok := find(items, id)
	if !ok {
		return domain.Installment{}, domain.ErrInstallmentNotFound
	}
	paid, err := rules.MarkReceived(current, uc.now())
	if err != nil {
		return domain.Installment{}, err
	}

	saved, err := uc.installments.Submit(ctx, paid)
	if err != nil {
		return domain.Installment{}, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("installment received",
		zap.String("id", saved.ID.String()),
		zap.String("amount", saved.Amount.StringFixed(2)))

	if _, err := uc.installments.LoadAll(ctx); err != nil {
		return saved, err
	}
	return saved, nil
}

// Remove deletes a hand-entered installment. Generated ones are refused
// before the store is contacted.
func (uc *UseCase) Remove(ctx context.Context, i domain.Installment) ([]domain.Installment, error) {
	if err := rules.CanDeleteInstallment(i); err != nil {
		return nil, err
	}
	items, err := uc.installments.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := find(items, i.ID)
	if !ok {
		return nil, domain.ErrInstallmentNotFound
	}
	if err := rules.CanDeleteInstallment(current); err != nil {
		return nil, err
	}
	if err := uc.installments.Remove(ctx, i.ID); err != nil {
		return nil, err
	}
	return uc.installments.LoadAll(ctx)
}

// Summary aggregates a fresh load by payment state as of today.
func (uc *UseCase) Summary(ctx context.Context, today time.Time) (rules.FinanceSummary, error) {
	items, err := uc.installments.LoadAll(ctx)
	if err != nil {
		return rules.FinanceSummary{}, err
	}
	return rules.SummarizeInstallments(items, today), nil
}

func find(items []domain.Installment, id domain.ID) (domain.Installment, bool) {
	if !id.IsSet() {
		return domain.Installment{}, false
	}
	for _, i := range items {
		if i.ID == id {
			return i, true
		}
	}
	return domain.Installment{}, false
}
