package uow

import (
	"context"

	"loanportal/internal/domain/application"
)

// Repos are bound to the same transaction.
type Repos struct {
	Applications application.Repository
	Documents    application.DocumentRepository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
