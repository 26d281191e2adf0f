package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"loanportal/internal/adapter/middleware"
	domainApplicant "loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
	"loanportal/internal/usecase/applicant"
	"loanportal/internal/usecase/document"
	"loanportal/internal/usecase/submission"

	"github.com/labstack/echo/v4"
)

const SuccessMessage = "Application submitted successfully! Confirmation email has been sent."

type Submitter interface {
	Submit(ctx context.Context, who domainApplicant.Identity, form submission.Form, uploads []document.Upload) (*submission.Result, error)
}

type SubmissionHandler struct {
	uc  Submitter
	log *slog.Logger
}

func NewSubmissionHandler(uc Submitter, logger *slog.Logger) *SubmissionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionHandler{uc: uc, log: logger}
}

type submitReq struct {
	FirstName       string `form:"firstName" validate:"max=100"`
	LastName        string `form:"lastName" validate:"max=100"`
	Email           string `form:"email" validate:"omitempty,email,max=254"`
	Phone           string `form:"phone" validate:"omitempty,phone"`
	LoanType        string `form:"loanType"`
	RequestedAmount string `form:"requestedAmount"`
	Income          string `form:"income"`
	Purpose         string `form:"purpose" validate:"max=2000"`
}

func (r submitReq) toForm() submission.Form {
	// a malformed product id resolves to no product
	productID, _ := strconv.ParseUint(strings.TrimSpace(r.LoanType), 10, 64)
	return submission.Form{
		Contact: applicant.ContactFields{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
		},
		ProductID:       productID,
		RequestedAmount: r.RequestedAmount,
		AnnualIncome:    r.Income,
		Purpose:         r.Purpose,
	}
}

func (h *SubmissionHandler) SubmitApplication(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid form body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid application details", ToFieldErrors(err)...))
	}
	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return c.JSON(http.StatusBadRequest, failure("invalid multipart body"))
	}

	res, err := h.uc.Submit(c.Request().Context(), middleware.IdentityFrom(c), req.toForm(), uploadsFrom(form))
	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			h.log.ErrorContext(c.Request().Context(), "loan application submission failed", "error", err)
			if code == http.StatusServiceUnavailable {
				return c.JSON(code, failure("service temporarily unavailable, please retry"))
			}
			return c.JSON(code, failure("an error occurred while processing your application"))
		}
		return c.JSON(code, failure(publicMessage(err), detailsFor(err)...))
	}
	return c.JSON(http.StatusCreated, Response{
		Success:           true,
		ApplicationID:     res.ApplicationID,
		DocumentsUploaded: res.DocumentsUploaded,
		Message:           SuccessMessage,
	})
}

// uploadsFrom flattens file parts in field name order.
func uploadsFrom(form *multipart.Form) []document.Upload {
	if form == nil {
		return nil
	}
	fields := make([]string, 0, len(form.File))
	for f := range form.File {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []document.Upload
	for _, field := range fields {
		for _, fh := range form.File[field] {
			fh := fh
			out = append(out, document.Upload{
				Field:    field,
				Filename: fh.Filename,
				Size:     fh.Size,
				Open:     func() (io.ReadCloser, error) { return fh.Open() },
			})
		}
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, application.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, application.ErrAmountOutOfRange),
		errors.Is(err, application.ErrMissingMandatoryDocuments):
		return http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrInvalidProduct),
		errors.Is(err, application.ErrMissingGuestDetails),
		errors.Is(err, application.ErrInvalidNumericInput):
		return http.StatusBadRequest
	case errors.Is(err, domainApplicant.ErrAccountNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrIdentifierExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var wrappedSentinels = []error{
	application.ErrInvalidNumericInput,
	application.ErrFileTooLarge,
	application.ErrUnsupportedFileType,
}

// publicMessage drops the sentinel prefix of wrapped validation errors.
func publicMessage(err error) string {
	msg := err.Error()
	for _, s := range wrappedSentinels {
		if p := s.Error() + ": "; strings.HasPrefix(msg, p) {
			return strings.TrimPrefix(msg, p)
		}
	}
	return msg
}

func detailsFor(err error) []FieldError {
	var missing *application.MissingDocumentsError
	if !errors.As(err, &missing) {
		return nil
	}
	out := make([]FieldError, 0, len(missing.Labels))
	for _, l := range missing.Labels {
		out = append(out, FieldError{Field: "documents", Message: l + " is required"})
	}
	return out
}
