package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"
	"time"

	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
	"loanportal/internal/infrastructure/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// SubmittedRoutingKey is the routing key of SubmittedEvent.
const SubmittedRoutingKey = "loan_application.submitted"

// Company is the sender-side contact block rendered into every confirmation.
type Company struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	WebsiteURL string
	SupportURL string
	FromEmail  string
}

type Attachment struct {
	Name string
	Path string
}

type Message struct {
	From        string
	To          string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer is the email transport.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// FileLocator resolves a stored file reference to a readable local path.
type FileLocator interface {
	LocalPath(ref string) (string, error)
}

// EventPublisher publishes integration events; optional.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type SubmittedEvent struct {
	ApplicationID     string    `json:"application_id"`
	ProductID         uint64    `json:"product_id"`
	RequestedAmount   string    `json:"requested_amount"`
	DocumentsUploaded int       `json:"documents_uploaded"`
	Guest             bool      `json:"guest"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type Dispatcher struct {
	mailer  Mailer
	files   FileLocator
	events  EventPublisher
	company Company
	log     *slog.Logger
	metrics *metrics.Metrics
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

type Option func(*Dispatcher)

func WithEvents(p EventPublisher) Option { return func(d *Dispatcher) { d.events = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Dispatcher) { d.metrics = m } }

func NewDispatcher(m Mailer, files FileLocator, company Company, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		mailer:  m,
		files:   files,
		company: company,
		log:     logger,
		text:    texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/confirmation.txt.tmpl")),
		html:    htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/confirmation.html.tmpl")),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Send delivers the confirmation for app. It never fails: every error or
// panic is wrapped in ErrNotificationFailure, logged and counted.
func (d *Dispatcher) Send(ctx context.Context, app *application.Application, p *product.Product, docs []application.Document) {
	if err := guard(func() error { return d.deliver(ctx, app, p, docs) }); err != nil {
		d.metrics.IncNotificationFailure()
		d.log.ErrorContext(ctx, "failed to send confirmation email",
			"application_id", app.ApplicationID,
			"error", fmt.Errorf("%w: %w", application.ErrNotificationFailure, err),
		)
	} else {
		d.metrics.IncNotificationSent()
		d.log.InfoContext(ctx, "confirmation email sent", "application_id", app.ApplicationID, "to", app.Email)
	}

	if d.events == nil {
		return
	}
	ev := SubmittedEvent{
		ApplicationID:     app.ApplicationID,
		ProductID:         app.ProductID,
		RequestedAmount:   app.RequestedAmount.StringFixed(2),
		DocumentsUploaded: len(docs),
		Guest:             app.AccountID == nil,
		OccurredAt:        time.Now().UTC(),
	}
	if err := guard(func() error { return d.events.PublishJSON(ctx, SubmittedRoutingKey, ev) }); err != nil {
		d.log.WarnContext(ctx, "failed to publish submitted event",
			"application_id", app.ApplicationID,
			"error", fmt.Errorf("%w: %w", application.ErrNotificationFailure, err),
		)
	}
}

// guard runs fn, turning a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (d *Dispatcher) deliver(ctx context.Context, app *application.Application, p *product.Product, docs []application.Document) error {
	if d.mailer == nil {
		return fmt.Errorf("no mail transport configured")
	}
	if strings.TrimSpace(app.Email) == "" {
		return fmt.Errorf("applicant has no email address")
	}
	msg, err := d.Compose(app, p, docs)
	if err != nil {
		return err
	}
	msg.Attachments = d.attachments(ctx, docs)
	return d.mailer.Send(ctx, msg)
}

type templateData struct {
	Application     *application.Application
	ProductName     string
	RequestedAmount string
	AnnualIncome    string
	Status          string
	SubmittedAt     string
	Documents       []documentLine
	Company         Company
}

type documentLine struct {
	Label    string
	Filename string
}

// Compose renders subject and bodies for app without attachments.
func (d *Dispatcher) Compose(app *application.Application, p *product.Product, docs []application.Document) (Message, error) {
	data := templateData{
		Application:     app,
		RequestedAmount: app.RequestedAmount.StringFixed(2),
		AnnualIncome:    app.AnnualIncome.StringFixed(2),
		Status:          string(app.Status),
		Company:         d.company,
	}
	if p != nil {
		data.ProductName = p.Name
	}
	if !app.CreatedAt.IsZero() {
		data.SubmittedAt = app.CreatedAt.UTC().Format("02 Jan 2006 15:04 MST")
	}
	for _, doc := range docs {
		data.Documents = append(data.Documents, documentLine{Label: doc.DocumentType.Label(), Filename: doc.OriginalFilename})
	}

	var text, html bytes.Buffer
	if err := d.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text body: %w", err)
	}
	if err := d.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}
	return Message{
		From:    d.company.FromEmail,
		To:      app.Email,
		ReplyTo: d.company.Email,
		Subject: "Loan Application Confirmation - " + app.ApplicationID,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// attachments resolves stored documents; unreadable ones are skipped with a warning.
func (d *Dispatcher) attachments(ctx context.Context, docs []application.Document) []Attachment {
	if d.files == nil {
		return nil
	}
	out := make([]Attachment, 0, len(docs))
	for _, doc := range docs {
		p, err := d.files.LocalPath(doc.FileRef)
		if err != nil {
			d.log.WarnContext(ctx, "could not attach document",
				"filename", doc.OriginalFilename,
				"error", err,
			)
			continue
		}
		out = append(out, Attachment{Name: doc.OriginalFilename, Path: p})
	}
	return out
}
