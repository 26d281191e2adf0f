package submission

import (
	"context"
	"io"

	domainApplicant "loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
	"loanportal/internal/usecase/applicant"
	"loanportal/internal/usecase/document"
)

// Form is the validated, strongly-typed submission request.
type Form struct {
	Contact         applicant.ContactFields
	ProductID       uint64
	RequestedAmount string
	AnnualIncome    string
	Purpose         string
}

type Result struct {
	ApplicationID     string `json:"application_id"`
	DocumentsUploaded int    `json:"documents_uploaded"`
}

// Ports consumed by the service. The concrete use cases in this module satisfy them.

type ProductCatalog interface {
	GetActiveProduct(ctx context.Context, id uint64) (*product.Product, error)
}

type ApplicantResolver interface {
	Resolve(ctx context.Context, id domainApplicant.Identity, supplied applicant.ContactFields) (*applicant.Resolved, error)
}

type DocumentClassifier interface {
	Classify(uploads []document.Upload, p *product.Product) (*document.Classification, error)
}

type Notifier interface {
	Send(ctx context.Context, app *application.Application, p *product.Product, docs []application.Document)
}

// FileStore keeps uploaded document bytes and hands back an opaque reference.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}
