package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainApplicant "loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
	"loanportal/internal/domain/uow"
	"loanportal/internal/infrastructure/metrics"
	"loanportal/internal/usecase/document"
	"loanportal/pkg/id"
)

const (
	DefaultMaxIDAttempts       = 5
	defaultCompensationTimeout = 10 * time.Second
)

// decimal(12,2) columns hold at most 10 integer digits.
var maxStoredAmount = decimal.NewFromInt(10_000_000_000)

type Deps struct {
	Products   ProductCatalog
	Applicants ApplicantResolver
	Classifier DocumentClassifier
	Apps       application.Repository
	Docs       application.DocumentRepository
	UoW        uow.UnitOfWork
	Files      FileStore
	Notifier   Notifier
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

type Usecase struct {
	Deps
	newID               func() string
	maxIDAttempts       int
	compensationTimeout time.Duration
}

type Option func(*Usecase)

// WithIDGenerator replaces the application id source.
func WithIDGenerator(f func() string) Option { return func(u *Usecase) { u.newID = f } }

// WithMaxIDAttempts bounds id resampling on collision.
func WithMaxIDAttempts(n int) Option {
	return func(u *Usecase) {
		if n > 0 {
			u.maxIDAttempts = n
		}
	}
}

func WithCompensationTimeout(d time.Duration) Option {
	return func(u *Usecase) {
		if d > 0 {
			u.compensationTimeout = d
		}
	}
}

func NewUsecase(d Deps, opts ...Option) *Usecase {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	u := &Usecase{
		Deps:                d,
		newID:               id.NewApplicationID,
		maxIDAttempts:       DefaultMaxIDAttempts,
		compensationTimeout: defaultCompensationTimeout,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Submit validates and persists one loan application with its documents.
// Either the application and all its documents are stored, or nothing is.
func (u *Usecase) Submit(ctx context.Context, who domainApplicant.Identity, form Form, uploads []document.Upload) (*Result, error) {
	res, err := u.submit(ctx, who, form, uploads)
	switch {
	case err == nil:
		u.Metrics.IncSubmission(metrics.OutcomeAccepted)
	case isDecline(err):
		u.Metrics.IncSubmission(metrics.OutcomeDeclined)
	default:
		u.Metrics.IncSubmission(metrics.OutcomeError)
	}
	return res, err
}

func (u *Usecase) submit(ctx context.Context, who domainApplicant.Identity, form Form, uploads []document.Upload) (*Result, error) {
	// 1. product
	p, err := u.Products.GetActiveProduct(ctx, form.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, application.ErrInvalidProduct
		}
		return nil, err
	}

	// 2. applicant
	applicant, err := u.Applicants.Resolve(ctx, who, form.Contact)
	if err != nil {
		return nil, err
	}

	// 3. amounts
	amount, err := parseAmount("requested amount", form.RequestedAmount)
	if err != nil {
		return nil, err
	}
	income, err := parseAmount("annual income", form.AnnualIncome)
	if err != nil {
		return nil, err
	}
	if err := checkIncome(income); err != nil {
		return nil, err
	}
	// in-bounds amounts always fit decimal(12,2)
	if err := checkBounds(amount, p); err != nil {
		return nil, err
	}

	// 4. tentative application
	app := &application.Application{
		AccountID:       applicant.AccountID,
		FirstName:       applicant.FirstName,
		LastName:        applicant.LastName,
		Email:           applicant.Email,
		Phone:           applicant.Phone,
		ProductID:       p.ID,
		RequestedAmount: amount,
		AnnualIncome:    income,
		Purpose:         strings.TrimSpace(form.Purpose),
		Status:          application.StatusPending,
	}
	if err := u.createWithUniqueID(ctx, app); err != nil {
		return nil, err
	}

	// 5-6. documents, compensating on any shortfall
	docs, err := u.attachDocuments(ctx, app, p, uploads)
	if err != nil {
		return nil, err
	}
	u.Metrics.AddDocumentsStored(len(docs))
	u.Logger.InfoContext(ctx, "loan application submitted",
		"application_id", app.ApplicationID,
		"product_id", p.ID,
		"guest", applicant.IsGuest(),
		"documents", len(docs),
	)

	// 7. best-effort notification
	u.notify(ctx, app, p, docs)

	return &Result{ApplicationID: app.ApplicationID, DocumentsUploaded: len(docs)}, nil
}

// notify hands the committed application to the Notifier. A panicking
// Notifier is logged and counted; the submission still succeeds.
func (u *Usecase) notify(ctx context.Context, app *application.Application, p *product.Product, docs []application.Document) {
	if u.Notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			u.Metrics.IncNotificationFailure()
			u.Logger.ErrorContext(ctx, "failed to send confirmation email",
				"application_id", app.ApplicationID,
				"error", fmt.Errorf("%w: panic: %v", application.ErrNotificationFailure, r),
			)
		}
	}()
	u.Notifier.Send(ctx, app, p, docs)
}

// attachDocuments stores every accepted upload against app. On any failure,
// or when a mandatory document is missing, app and everything stored so far
// are removed before returning the error.
func (u *Usecase) attachDocuments(ctx context.Context, app *application.Application, p *product.Product, uploads []document.Upload) (docs []application.Document, err error) {
	var refs []string
	defer func() {
		if r := recover(); r != nil {
			u.rollback(ctx, app, refs)
			panic(r)
		}
		if err != nil {
			u.rollback(ctx, app, refs)
		}
	}()

	class, err := u.Classifier.Classify(uploads, p)
	if err != nil {
		return nil, err
	}
	for _, draft := range class.Accepted {
		ref, err := u.store(ctx, draft)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)

		doc := application.Document{
			ApplicationPK:    app.ID,
			DocumentType:     draft.Type,
			FileRef:          ref,
			OriginalFilename: draft.Upload.Filename,
			SizeBytes:        draft.Upload.Size,
			IsMandatory:      draft.Mandatory,
		}
		if err := u.Docs.Create(ctx, &doc); err != nil {
			return nil, fmt.Errorf("persist document %s: %w", draft.Field, err)
		}
		docs = append(docs, doc)
	}
	if len(class.MissingMandatory) > 0 {
		return nil, &application.MissingDocumentsError{Labels: class.MissingMandatory}
	}
	return docs, nil
}

func (u *Usecase) store(ctx context.Context, draft document.Draft) (string, error) {
	if draft.Upload.Open == nil {
		return "", fmt.Errorf("upload %s has no content", draft.Field)
	}
	rc, err := draft.Upload.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", draft.Field, err)
	}
	defer rc.Close()
	ref, err := u.Files.Save(ctx, draft.Upload.Filename, rc)
	if err != nil {
		return "", fmt.Errorf("store upload %s: %w", draft.Field, err)
	}
	return ref, nil
}

// rollback deletes the tentative application, its document rows and stored
// files. It runs detached from the request so a cancelled client cannot leave
// a partial application behind.
func (u *Usecase) rollback(ctx context.Context, app *application.Application, refs []string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.compensationTimeout)
	defer cancel()

	err := u.UoW.WithinTx(cctx, func(r uow.Repos) error {
		if err := r.Documents.DeleteByApplication(cctx, app.ID); err != nil {
			return err
		}
		return r.Applications.Delete(cctx, app.ID)
	})
	if err != nil {
		u.Logger.ErrorContext(ctx, "rollback of tentative application failed",
			"application_id", app.ApplicationID,
			"error", err,
		)
		return
	}
	for _, ref := range refs {
		if err := u.Files.Delete(cctx, ref); err != nil {
			u.Logger.WarnContext(ctx, "could not remove stored upload", "ref", ref, "error", err)
		}
	}
	u.Metrics.IncSubmission(metrics.OutcomeRolledBack)
	u.Logger.InfoContext(ctx, "tentative application rolled back", "application_id", app.ApplicationID)
}

// createWithUniqueID assigns a fresh public id and inserts app, resampling on
// collision at most maxIDAttempts times.
func (u *Usecase) createWithUniqueID(ctx context.Context, app *application.Application) error {
	for attempt := 0; attempt < u.maxIDAttempts; attempt++ {
		candidate := u.newID()
		taken, err := u.Apps.ExistsByApplicationID(ctx, candidate)
		if err != nil {
			return fmt.Errorf("check application id: %w", err)
		}
		if taken {
			u.Metrics.IncIDCollision()
			continue
		}
		app.ApplicationID = candidate
		err = u.Apps.Create(ctx, app)
		if errors.Is(err, application.ErrDuplicateID) {
			// lost a race with a concurrent insert of the same id
			u.Metrics.IncIDCollision()
			app.ID = 0
			continue
		}
		if err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		return nil
	}
	app.ApplicationID = ""
	return application.ErrIdentifierExhausted
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", application.ErrInvalidNumericInput, field)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", application.ErrInvalidNumericInput, field, raw)
	}
	if !v.Equal(v.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: %s has more than 2 decimal places", application.ErrInvalidNumericInput, field)
	}
	return v, nil
}

func checkIncome(v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThanOrEqual(maxStoredAmount) {
		return fmt.Errorf("%w: annual income %s is out of the accepted range", application.ErrInvalidNumericInput, v.String())
	}
	return nil
}

func checkBounds(amount decimal.Decimal, p *product.Product) error {
	if amount.LessThan(p.MinLoanAmount) {
		return &application.AmountRangeError{Bound: application.BoundMinimum, Limit: p.MinLoanAmount}
	}
	if amount.GreaterThan(p.MaxLoanAmount) {
		return &application.AmountRangeError{Bound: application.BoundMaximum, Limit: p.MaxLoanAmount}
	}
	return nil
}

var declines = []error{
	application.ErrInvalidProduct,
	application.ErrMissingGuestDetails,
	application.ErrInvalidNumericInput,
	application.ErrAmountOutOfRange,
	application.ErrFileTooLarge,
	application.ErrUnsupportedFileType,
	application.ErrMissingMandatoryDocuments,
	domainApplicant.ErrAccountNotFound,
}

// isDecline reports whether err is a validation outcome rather than a fault.
func isDecline(err error) bool {
	for _, d := range declines {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
