// Package sync serialises reads and writes against one store resource. Every
// mutation must be preceded by a completed load, and only one call runs at a
// time; nothing is cached between loads.
package sync

import (
	"context"
	stdsync "sync"

	"go.uber.org/zap"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/logger"
	"github.com/fastygo/rentals/repository"
)

// Orchestrator guards a repository.Store.
type Orchestrator[T any] struct {
	store    repository.Store[T]
	resource string
	logger   *zap.Logger

	mu    stdsync.Mutex
	busy  bool
	fresh bool
}

func New[T any](resource string, store repository.Store[T], logger *zap.Logger) *Orchestrator[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator[T]{
		store:    store,
		resource: resource,
		logger:   logger.With(zap.String("resource", resource)),
	}
}

// Fresh reports whether a load has completed since the last mutation.
func (o *Orchestrator[T]) Fresh() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fresh
}

// LoadAll fetches the full collection from the store.
func (o *Orchestrator[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := o.acquire(false); err != nil {
		return nil, err
	}
	items, err := o.store.List(ctx)
	o.release(err == nil)
	if err != nil {
		logger.WithRequestID(ctx, o.logger).Warn("load failed", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// Submit creates or updates one entity.
func (o *Orchestrator[T]) Submit(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := o.acquire(true); err != nil {
		return zero, err
	}
	saved, err := o.store.Save(ctx, entity)
	o.release(false)
	if err != nil {
		logger.WithRequestID(ctx, o.logger).Warn("submit failed", zap.Error(err))
		return zero, err
	}
	return saved, nil
}

// SubmitAll persists entities in order as a single mutation. It stops at the
// first failure and returns what was saved before it.
func (o *Orchestrator[T]) SubmitAll(ctx context.Context, entities []T) ([]T, error) {
	if err := o.acquire(true); err != nil {
		return nil, err
	}
	defer o.release(false)

	saved := make([]T, 0, len(entities))
	for _, e := range entities {
		s, err := o.store.Save(ctx, e)
		if err != nil {
			logger.WithRequestID(ctx, o.logger).Warn("batch submit failed",
				zap.Int("saved", len(saved)),
				zap.Int("total", len(entities)),
				zap.Error(err))
			return saved, err
		}
		saved = append(saved, s)
	}
	return saved, nil
}

// Remove deletes the entities with the given ids, in order, as one mutation.
func (o *Orchestrator[T]) Remove(ctx context.Context, ids ...domain.ID) error {
	if err := o.acquire(true); err != nil {
		return err
	}
	defer o.release(false)

	for _, id := range ids {
		if err := o.store.Delete(ctx, id); err != nil {
			logger.WithRequestID(ctx, o.logger).Warn("remove failed",
				zap.String("id", id.String()),
				zap.Error(err))
			return err
		}
	}
	return nil
}

func (o *Orchestrator[T]) acquire(mutation bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return domain.ErrMutationInFlight
	}
	if mutation {
		if !o.fresh {
			return domain.ErrSnapshotStale
		}
		// a failed mutation may still have reached the store
		o.fresh = false
	}
	o.busy = true
	return nil
}

func (o *Orchestrator[T]) release(loaded bool) {
	o.mu.Lock()
	o.busy = false
	if loaded {
		o.fresh = true
	}
	o.mu.Unlock()
}
