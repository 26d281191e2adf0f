package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"loanportal/internal/adapter/middleware"
	domainApplicant "loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
	"loanportal/internal/domain/uow"
	"loanportal/internal/testutil/applicantmock"
	"loanportal/internal/testutil/applicationmock"
	"loanportal/internal/testutil/productmock"
	"loanportal/internal/testutil/uowmock"
	"loanportal/internal/usecase/applicant"
	"loanportal/internal/usecase/catalog"
	"loanportal/internal/usecase/document"
	"loanportal/internal/usecase/submission"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

type discardFiles struct{ n int }

func (f *discardFiles) Save(_ context.Context, name string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	f.n++
	return name, nil
}
func (f *discardFiles) Delete(context.Context, string) error { return nil }

type part struct {
	field, filename string
	size            int
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = fw.Write(bytes.Repeat([]byte("x"), f.size))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func guestFields(loanType, amount string) map[string]string {
	return map[string]string{
		"firstName":       "Ravi",
		"lastName":        "Kumar",
		"email":           "ravi@example.com",
		"phone":           "9876543210",
		"loanType":        loanType,
		"requestedAmount": amount,
		"income":          "600000",
		"purpose":         "Working capital",
	}
}

func submissionEcho(t *testing.T, policy document.Policy) (*echo.Echo, *applicationmock.Memory) {
	t.Helper()
	personal := product.New("Personal Loan", "Personal Loan")
	personal.ID = 1
	business := product.New("MSME Business Loan", "Business Loan")
	business.ID = 4
	business.MaxLoanAmount = decimal.NewFromInt(50000)

	mem := applicationmock.NewMemory()
	uc := submission.NewUsecase(submission.Deps{
		Products:   catalog.NewUsecase(productmock.Fixed(personal, business)),
		Applicants: applicant.NewResolver(applicantmock.NewMemory(domainApplicant.AccountRecord{ID: 3, FirstName: "Asha", LastName: "Rao", Email: "asha@example.com"})),
		Classifier: document.NewClassifier(policy),
		Apps:       mem.Applications(),
		Docs:       mem.Documents(),
		UoW:        uowmock.Passthrough(uow.Repos{Applications: mem.Applications(), Documents: mem.Documents()}),
		Files:      &discardFiles{},
	})

	e := newEchoWithValidator()
	e.Use(middleware.Identity("secret", ""))
	e.POST("/loan-applications", NewSubmissionHandler(uc, nil).SubmitApplication)
	return e, mem
}

func post(e *echo.Echo, body io.Reader, contentType string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(stdhttp.MethodPost, "/loan-applications", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var resp Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// -------- tests --------

func TestSubmitApplication_BusinessSuccess(t *testing.T) {
	e, mem := submissionEcho(t, document.DefaultPolicy())
	body, ct := multipartBody(t, guestFields("4", "40000"),
		part{"aadharCard", "aadhar.pdf", 10},
		part{"panCard", "pan.jpg", 10},
		part{"udyamCertificate", "udyam.pdf", 10},
	)

	rec, resp := post(e, body, ct)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("want 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !resp.Success || resp.DocumentsUploaded != 3 || !strings.HasPrefix(resp.ApplicationID, "LA") {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Message != SuccessMessage {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if n, _ := mem.Applications().Count(context.Background()); n != 1 {
		t.Fatalf("want 1 stored application, got %d", n)
	}
}

func TestSubmitApplication_AmountAboveMaximum(t *testing.T) {
	e, mem := submissionEcho(t, document.DefaultPolicy())
	body, ct := multipartBody(t, guestFields("1", "60000"), part{"aadharCard", "a.pdf", 1}, part{"panCard", "p.pdf", 1})

	rec, resp := post(e, body, ct)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", rec.Code)
	}
	if resp.Success || resp.Error != "Requested amount exceeds maximum limit of ₹50,000.00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if n, _ := mem.Applications().Count(context.Background()); n != 0 {
		t.Fatalf("nothing should be stored, got %d", n)
	}
}

func TestSubmitApplication_MissingUdyam(t *testing.T) {
	e, mem := submissionEcho(t, document.DefaultPolicy())
	body, ct := multipartBody(t, guestFields("4", "40000"), part{"aadharCard", "a.pdf", 1}, part{"panCard", "p.pdf", 1})

	rec, resp := post(e, body, ct)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", rec.Code)
	}
	if resp.Error != "Missing mandatory documents: Udyam Registration Certificate" {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
	if !containsFieldMsg(resp.Details, "documents", "Udyam Registration Certificate") {
		t.Fatalf("expected details to list the missing document: %+v", resp.Details)
	}
	if n, _ := mem.Applications().Count(context.Background()); n != 0 || mem.DocumentCount() != 0 {
		t.Fatalf("rollback expected, apps=%d docs=%d", n, mem.DocumentCount())
	}
}

func TestSubmitApplication_GuestMissingDetails(t *testing.T) {
	e, _ := submissionEcho(t, document.DefaultPolicy())
	fields := guestFields("1", "25000")
	delete(fields, "email")
	body, ct := multipartBody(t, fields)

	rec, resp := post(e, body, ct)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if resp.Error != application.ErrMissingGuestDetails.Error() {
		t.Fatalf("unexpected error: %q", resp.Error)
	}
}

func TestSubmitApplication_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		files  []part
		want   int
		msg    string
	}{
		{"unknown product", guestFields("99", "25000"), nil, stdhttp.StatusBadRequest, "invalid loan product selected"},
		{"non numeric product", guestFields("abc", "25000"), nil, stdhttp.StatusBadRequest, "invalid loan product selected"},
		{"non numeric amount", guestFields("1", "lots"), nil, stdhttp.StatusBadRequest, `requested amount "lots" is not a number`},
		{"file too large", guestFields("1", "25000"), []part{{"aadharCard", "a.pdf", 2048}, {"panCard", "p.pdf", 1}}, stdhttp.StatusRequestEntityTooLarge, "file a.pdf is too large"},
		{"bad extension", guestFields("1", "25000"), []part{{"aadharCard", "a.gif", 1}, {"panCard", "p.pdf", 1}}, stdhttp.StatusUnsupportedMediaType, "allowed: PDF, JPG, JPEG, PNG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := submissionEcho(t, document.Policy{MaxFileBytes: 1024})
			body, ct := multipartBody(t, tc.fields, tc.files...)
			rec, resp := post(e, body, ct)
			if rec.Code != tc.want {
				t.Fatalf("want %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
			if resp.Success || !strings.Contains(resp.Error, tc.msg) {
				t.Fatalf("want error containing %q, got %q", tc.msg, resp.Error)
			}
		})
	}
}

func TestSubmitApplication_InvalidEmailFormat(t *testing.T) {
	e, _ := submissionEcho(t, document.DefaultPolicy())
	fields := guestFields("1", "25000")
	fields["email"] = "not-an-email"
	body, ct := multipartBody(t, fields)

	rec, resp := post(e, body, ct)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if !containsFieldMsg(resp.Details, "email", "valid email") {
		t.Fatalf("expected email detail, got %+v", resp.Details)
	}
}

func TestSubmitApplication_InvalidToken(t *testing.T) {
	e, _ := submissionEcho(t, document.DefaultPolicy())
	body, ct := multipartBody(t, guestFields("1", "25000"))
	req := httptest.NewRequest(stdhttp.MethodPost, "/loan-applications", body)
	req.Header.Set(echo.HeaderContentType, ct)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

type stubSubmitter struct{ err error }

func (s stubSubmitter) Submit(context.Context, domainApplicant.Identity, submission.Form, []document.Upload) (*submission.Result, error) {
	return nil, s.err
}

func TestSubmitApplication_InternalErrorsAreNotLeaked(t *testing.T) {
	cases := map[error]int{
		errors.New("dial tcp 10.0.0.5:3306: connection refused"): stdhttp.StatusInternalServerError,
		application.ErrIdentifierExhausted:                         stdhttp.StatusServiceUnavailable,
	}
	for err, want := range cases {
		e := newEchoWithValidator()
		e.POST("/loan-applications", NewSubmissionHandler(stubSubmitter{err: err}, nil).SubmitApplication)
		body, ct := multipartBody(t, guestFields("1", "25000"))
		rec, resp := post(e, body, ct)
		if rec.Code != want {
			t.Fatalf("%v: want %d, got %d", err, want, rec.Code)
		}
		if strings.Contains(resp.Error, "10.0.0.5") || strings.Contains(resp.Error, "application id") {
			t.Fatalf("internal detail leaked: %q", resp.Error)
		}
	}
}

func TestStatusFor_AccountNotFound(t *testing.T) {
	if got := statusFor(domainApplicant.ErrAccountNotFound); got != stdhttp.StatusUnauthorized {
		t.Fatalf("want 401, got %d", got)
	}
}
