package application

import "context"

type Repository interface {
	// Create inserts a; ErrDuplicateID when application_id is already taken.
	Create(ctx context.Context, a *Application) error
	ExistsByApplicationID(ctx context.Context, applicationID string) (bool, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// Delete removes the application row by numeric PK.
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int64, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	ListByApplication(ctx context.Context, applicationPK uint64) ([]Document, error)
	DeleteByApplication(ctx context.Context, applicationPK uint64) error
}
