// Package contract runs the rental contract lifecycle against the store.
package contract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/logger"
	"github.com/fastygo/rentals/repository"
	"github.com/fastygo/rentals/usecase/rules"
	"github.com/fastygo/rentals/usecase/sync"
)

type UseCase struct {
	contracts    *sync.Orchestrator[domain.Contract]
	installments *sync.Orchestrator[domain.Installment]
	properties   *sync.Orchestrator[domain.Property]
	logger       *zap.Logger
	now          func() time.Time
}

func New(contracts repository.ContractRepository, installments repository.InstallmentRepository, properties repository.PropertyRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		contracts:    sync.New[domain.Contract]("contracts", contracts, logger),
		installments: sync.New[domain.Installment]("installments", installments, logger),
		properties:   sync.New[domain.Property]("properties", properties, logger),
		logger:       logger,
		now:          time.Now,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Contract, error) {
	return uc.contracts.LoadAll(ctx)
}

func (uc *UseCase) Get(ctx context.Context, id domain.ID) (domain.Contract, error) {
	contracts, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return domain.Contract{}, err
	}
	c, ok := find(contracts, id)
	if !ok {
		return domain.Contract{}, domain.ErrContractNotFound
	}
	return c, nil
}

// Save creates a pending contract or edits an existing one without changing
// its status. The saved contract carries the derived end date.
func (uc *UseCase) Save(ctx context.Context, candidate domain.Contract) (domain.Contract, []domain.Contract, error) {
	// field checks first so malformed forms never reach the store
	if _, err := rules.ValidateContract(candidate, nil); err != nil {
		return domain.Contract{}, nil, err
	}

	contracts, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return domain.Contract{}, nil, err
	}
	var current *domain.Contract
	if candidate.ID.IsSet() {
		c, ok := find(contracts, candidate.ID)
		if !ok {
			return domain.Contract{}, nil, domain.ErrContractNotFound
		}
		current = &c
		if candidate.Status == "" {
			candidate.Status = c.Status
		}
	}
	if err := rules.CheckContractEdit(current, candidate); err != nil {
		return domain.Contract{}, nil, err
	}
	validated, err := rules.ValidateContract(candidate, rules.ActiveContractFor(candidate.PropertyID, contracts))
	if err != nil {
		return domain.Contract{}, nil, err
	}

	saved, err := uc.contracts.Submit(ctx, validated)
	if err != nil {
		return domain.Contract{}, nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("contract saved",
		zap.String("id", saved.ID.String()),
		zap.String("status", string(saved.Status)))

	snapshot, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return saved, nil, err
	}
	return saved, snapshot, nil
}

// Activate makes a pending contract active, persists its installment
// schedule and takes the property off the market.
func (uc *UseCase) Activate(ctx context.Context, id domain.ID) (rules.Activation, error) {
	contracts, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return rules.Activation{}, err
	}
	c, ok := find(contracts, id)
	if !ok {
		return rules.Activation{}, domain.ErrContractNotFound
	}
	p, err := uc.loadProperty(ctx, c.PropertyID)
	if err != nil {
		return rules.Activation{}, err
	}
	if _, err := uc.installments.LoadAll(ctx); err != nil {
		return rules.Activation{}, err
	}

	act, err := rules.ActivateContract(c, p, rules.ActiveContractFor(p.ID, contracts))
	if err != nil {
		return rules.Activation{}, err
	}

	log := logger.WithRequestID(ctx, uc.logger).With(zap.String("contract", id.String()))
	if act.Contract, err = uc.contracts.Submit(ctx, act.Contract); err != nil {
		return rules.Activation{}, err
	}
	if act.Installments, err = uc.installments.SubmitAll(ctx, act.Installments); err != nil {
		log.Error("installment schedule partially persisted", zap.Int("saved", len(act.Installments)), zap.Error(err))
		return act, err
	}
	if act.Property, err = uc.properties.Submit(ctx, act.Property); err != nil {
		log.Error("property availability not updated after activation", zap.Error(err))
		return act, err
	}
	log.Info("contract activated", zap.Int("installments", len(act.Installments)))
	return act, uc.reload(ctx)
}

// Terminate ends an active contract and frees its property when no other
// active contract holds it.
func (uc *UseCase) Terminate(ctx context.Context, id domain.ID) (rules.Termination, error) {
	contracts, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return rules.Termination{}, err
	}
	c, ok := find(contracts, id)
	if !ok {
		return rules.Termination{}, domain.ErrContractNotFound
	}
	p, err := uc.loadProperty(ctx, c.PropertyID)
	if err != nil {
		return rules.Termination{}, err
	}

	term, err := rules.TerminateContract(c, p, contracts)
	if err != nil {
		return rules.Termination{}, err
	}
	if term, err = uc.persistTermination(ctx, term); err != nil {
		return term, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("contract terminated", zap.String("contract", id.String()))
	return term, uc.reload(ctx)
}

// ExpireDue terminates every active contract whose end date is on or before
// today.
func (uc *UseCase) ExpireDue(ctx context.Context, today time.Time) ([]rules.Termination, error) {
	var (
		contracts  []domain.Contract
		properties []domain.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		contracts, err = uc.contracts.LoadAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		properties, err = uc.properties.LoadAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	byID := make(map[domain.ID]domain.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}

	var (
		expired  []rules.Termination
		ended    []domain.Contract
		released []domain.Property
	)
	for i, c := range contracts {
		p, ok := byID[c.PropertyID]
		if !ok {
			continue
		}
		term, done, err := rules.ExpireContract(c, p, contracts, today)
		if err != nil {
			return nil, err
		}
		if !done {
			continue
		}
		contracts[i] = term.Contract
		byID[p.ID] = term.Property
		expired = append(expired, term)
		ended = append(ended, term.Contract)
		released = append(released, term.Property)
	}
	if len(expired) == 0 {
		return nil, nil
	}

	if _, err := uc.contracts.SubmitAll(ctx, ended); err != nil {
		return nil, err
	}
	if _, err := uc.properties.SubmitAll(ctx, dedupe(released, byID)); err != nil {
		return expired, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("contracts expired", zap.Int("count", len(expired)))
	return expired, uc.reload(ctx)
}

// Remove deletes a contract together with its installments. Active contracts
// are refused before the store is contacted.
func (uc *UseCase) Remove(ctx context.Context, c domain.Contract) ([]domain.Contract, error) {
	if err := rules.CanDeleteContract(c); err != nil {
		return nil, err
	}
	contracts, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := find(contracts, c.ID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	if err := rules.CanDeleteContract(current); err != nil {
		return nil, err
	}

	installments, err := uc.installments.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var owned []domain.ID
	for _, i := range installments {
		if i.ContractID == c.ID {
			owned = append(owned, i.ID)
		}
	}
	if len(owned) > 0 {
		if err := uc.installments.Remove(ctx, owned...); err != nil {
			return nil, err
		}
	}
	if err := uc.contracts.Remove(ctx, c.ID); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("contract removed",
		zap.String("contract", c.ID.String()),
		zap.Int("installments", len(owned)))
	return uc.contracts.LoadAll(ctx)
}

func (uc *UseCase) loadProperty(ctx context.Context, id domain.ID) (domain.Property, error) {
	properties, err := uc.properties.LoadAll(ctx)
	if err != nil {
		return domain.Property{}, err
	}
	for _, p := range properties {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Property{}, fmt.Errorf("%w: %s", domain.ErrPropertyNotFound, id)
}

func (uc *UseCase) persistTermination(ctx context.Context, term rules.Termination) (rules.Termination, error) {
	var err error
	if term.Contract, err = uc.contracts.Submit(ctx, term.Contract); err != nil {
		return rules.Termination{}, err
	}
	if term.Property, err = uc.properties.Submit(ctx, term.Property); err != nil {
		return term, err
	}
	return term, nil
}

// reload refreshes every snapshot touched by a lifecycle transition.
func (uc *UseCase) reload(ctx context.Context) error {
	if _, err := uc.contracts.LoadAll(ctx); err != nil {
		return err
	}
	if _, err := uc.properties.LoadAll(ctx); err != nil {
		return err
	}
	_, err := uc.installments.LoadAll(ctx)
	return err
}

func find(contracts []domain.Contract, id domain.ID) (domain.Contract, bool) {
	if !id.IsSet() {
		return domain.Contract{}, false
	}
	for _, c := range contracts {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Contract{}, false
}

// dedupe keeps one entry per property, taking the final state from byID.
func dedupe(properties []domain.Property, byID map[domain.ID]domain.Property) []domain.Property {
	seen := make(map[domain.ID]bool, len(properties))
	out := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, byID[p.ID])
	}
	return out
}
