// Package property manages the property portfolio.
package property

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/logger"
	"github.com/fastygo/rentals/pkg/photo"
	"github.com/fastygo/rentals/repository"
	"github.com/fastygo/rentals/usecase/rules"
	"github.com/fastygo/rentals/usecase/sync"
)

type UseCase struct {
	repo       repository.PropertyRepository
	properties *sync.Orchestrator[domain.Property]
	contracts  *sync.Orchestrator[domain.Contract]
	encoder    *photo.Encoder
	logger     *zap.Logger
	now        func() time.Time
}

func New(properties repository.PropertyRepository, contracts repository.ContractRepository, encoder *photo.Encoder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if encoder == nil {
		encoder = photo.NewEncoder(photo.DefaultMaxWidth, photo.DefaultQuality)
	}
	return &UseCase{
		repo:       properties,
		properties: sync.New[domain.Property]("properties", properties, logger),
		contracts:  sync.New[domain.Contract]("contracts", contracts, logger),
		encoder:    encoder,
		logger:     logger,
		now:        time.Now,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Property, error) {
	return uc.properties.LoadAll(ctx)
}

func (uc *UseCase) ListAvailable(ctx context.Context) ([]domain.Property, error) {
	return uc.repo.ListAvailable(ctx)
}

func (uc *UseCase) Get(ctx context.Context, id domain.ID) (*domain.Property, error) {
	return uc.repo.GetByID(ctx, id)
}

// Edit opens an edit session. A nil property starts a new one.
func (uc *UseCase) Edit(p *domain.Property) *EditSession {
	return newSession(p, uc.encoder, uc.now)
}

// Save validates and persists the session, then returns the saved property
// and the reloaded portfolio. Validation happens before the store is touched.
func (uc *UseCase) Save(ctx context.Context, s *EditSession) (domain.Property, []domain.Property, error) {
	if s == nil || s.Closed() {
		return domain.Property{}, nil, fmt.Errorf("%w: edit session closed", domain.ErrInvalidTransition)
	}
	candidate, err := rules.ValidateProperty(s.Candidate())
	if err != nil {
		return domain.Property{}, nil, err
	}

	if candidate.ID.IsSet() {
		contracts, err := uc.contracts.LoadAll(ctx)
		if err != nil {
			return domain.Property{}, nil, err
		}
		if err := rules.CheckAvailabilityEdit(candidate, rules.ActiveContractFor(candidate.ID, contracts)); err != nil {
			return domain.Property{}, nil, err
		}
	}

	if _, err := uc.properties.LoadAll(ctx); err != nil {
		return domain.Property{}, nil, err
	}
	saved, err := uc.properties.Submit(ctx, candidate)
	if err != nil {
		return domain.Property{}, nil, err
	}
	s.commit(saved)
	logger.WithRequestID(ctx, uc.logger).Info("property saved", zap.String("id", saved.ID.String()))

	snapshot, err := uc.properties.LoadAll(ctx)
	if err != nil {
		return saved, nil, err
	}
	return saved, snapshot, nil
}

// Remove deletes p unless an active or pending contract still references it.
func (uc *UseCase) Remove(ctx context.Context, p domain.Property) ([]domain.Property, error) {
	if !p.ID.IsSet() {
		return nil, domain.ErrPropertyNotFound
	}
	contracts, err := uc.contracts.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := rules.CanDeleteProperty(p, contracts); err != nil {
		return nil, err
	}

	if _, err := uc.properties.LoadAll(ctx); err != nil {
		return nil, err
	}
	if err := uc.properties.Remove(ctx, p.ID); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("property removed", zap.String("id", p.ID.String()))
	return uc.properties.LoadAll(ctx)
}

// Summary derives the portfolio counters from a fresh load.
func (uc *UseCase) Summary(ctx context.Context) (rules.PortfolioSummary, error) {
	properties, contracts, err := uc.loadBoth(ctx)
	if err != nil {
		return rules.PortfolioSummary{}, err
	}
	return rules.Summarize(properties, contracts), nil
}

// Reconcile rewrites availability flags that disagree with the active
// contracts and returns the corrected properties.
func (uc *UseCase) Reconcile(ctx context.Context) ([]domain.Property, error) {
	properties, contracts, err := uc.loadBoth(ctx)
	if err != nil {
		return nil, err
	}
	drifted := rules.ReconcileAvailability(properties, contracts)
	if len(drifted) == 0 {
		return nil, nil
	}
	saved, err := uc.properties.SubmitAll(ctx, drifted)
	if err != nil {
		return saved, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("availability reconciled", zap.Int("count", len(saved)))
	return saved, nil
}

// loadBoth fetches properties and contracts concurrently.
func (uc *UseCase) loadBoth(ctx context.Context) ([]domain.Property, []domain.Contract, error) {
	var (
		properties []domain.Property
		contracts  []domain.Contract
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		properties, err = uc.properties.LoadAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		contracts, err = uc.contracts.LoadAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return properties, contracts, nil
}
