package repository

import (
	"context"

	"github.com/fastygo/rentals/domain"
)

// Store is the record API of one resource. Save creates the record when its
// identifier is absent and updates it otherwise.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Save(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id domain.ID) error
}

type PropertyRepository interface {
	Store[domain.Property]
	GetByID(ctx context.Context, id domain.ID) (*domain.Property, error)
	ListAvailable(ctx context.Context) ([]domain.Property, error)
}

type ContractRepository interface {
	Store[domain.Contract]
}

type InstallmentRepository interface {
	Store[domain.Installment]
	// ListDue returns the installments the store considers close to their due date.
	ListDue(ctx context.Context) ([]domain.Installment, error)
}
