package document

import (
	"fmt"
	"io"
	"path"
	"strings"

	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
)

// Upload is one named file part of a submission.
type Upload struct {
	Field    string
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Policy holds the per-file limits; both come from configuration.
type Policy struct {
	MaxFileBytes      int64
	AllowedExtensions []string
}

const DefaultMaxFileBytes = 10 << 20

func DefaultPolicy() Policy {
	return Policy{MaxFileBytes: DefaultMaxFileBytes, AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png"}}
}

// Draft is an accepted upload waiting to be stored against an application.
type Draft struct {
	Field     string
	Type      application.DocumentType
	Mandatory bool
	Upload    Upload
}

type Classification struct {
	Accepted []Draft
	// Display labels of mandatory documents absent from the upload set.
	MissingMandatory []string
}

type field struct {
	name  string
	typ   application.DocumentType
	label string
}

// Iteration order of this table fixes the order of accepted drafts and missing labels.
var fields = []field{
	{"aadharCard", application.DocAadharCard, "Aadhar Card"},
	{"panCard", application.DocPANCard, "PAN Card"},
	{"incomeProof", application.DocIncomeProof, "Income Proof"},
	{"bankStatement", application.DocBankStatement, "Bank Statement"},
	{"udyamCertificate", application.DocUdyamCertificate, "Udyam Registration Certificate"},
	{"gstCertificate", application.DocGSTCertificate, "GST Certificate"},
}

// FieldNames lists the multipart field names the classifier understands.
func FieldNames() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// MandatoryFields is {aadharCard, panCard} plus udyamCertificate for business products.
func MandatoryFields(p *product.Product) []string {
	out := []string{"aadharCard", "panCard"}
	if p != nil && p.IsBusiness() {
		out = append(out, "udyamCertificate")
	}
	return out
}

type Classifier struct {
	maxBytes int64
	allowed  map[string]struct{}
	display  string
}

func NewClassifier(p Policy) *Classifier {
	if p.MaxFileBytes <= 0 {
		p.MaxFileBytes = DefaultMaxFileBytes
	}
	if len(p.AllowedExtensions) == 0 {
		p.AllowedExtensions = DefaultPolicy().AllowedExtensions
	}
	c := &Classifier{maxBytes: p.MaxFileBytes, allowed: make(map[string]struct{}, len(p.AllowedExtensions))}
	var names []string
	for _, ext := range p.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, dup := c.allowed[ext]; !dup {
			names = append(names, strings.ToUpper(ext))
		}
		c.allowed[ext] = struct{}{}
	}
	c.display = strings.Join(names, ", ")
	return c
}

// Classify maps uploads to document drafts for p. Size and format violations
// fail the whole call; missing mandatory documents are only reported.
// When a field carries several parts the first one wins; unknown fields are ignored.
func (c *Classifier) Classify(uploads []Upload, p *product.Product) (*Classification, error) {
	byField := make(map[string]Upload, len(uploads))
	for _, u := range uploads {
		if _, seen := byField[u.Field]; !seen {
			byField[u.Field] = u
		}
	}
	mandatory := make(map[string]bool)
	for _, f := range MandatoryFields(p) {
		mandatory[f] = true
	}

	out := &Classification{}
	for _, f := range fields {
		u, ok := byField[f.name]
		if !ok {
			if mandatory[f.name] {
				out.MissingMandatory = append(out.MissingMandatory, f.label)
			}
			continue
		}
		if err := c.Check(u); err != nil {
			return nil, err
		}
		out.Accepted = append(out.Accepted, Draft{Field: f.name, Type: f.typ, Mandatory: mandatory[f.name], Upload: u})
	}
	return out, nil
}

// Check validates a single upload against the size and format limits.
func (c *Classifier) Check(u Upload) error {
	if u.Size > c.maxBytes {
		return fmt.Errorf("%w: file %s is too large, maximum size is %s", application.ErrFileTooLarge, u.Filename, humanBytes(c.maxBytes))
	}
	if _, ok := c.allowed[Extension(u.Filename)]; !ok {
		return fmt.Errorf("%w: file %s has invalid format, allowed: %s", application.ErrUnsupportedFileType, u.Filename, c.display)
	}
	return nil
}

// Extension returns the lowercased suffix after the final dot, or "" when there is none.
func Extension(filename string) string {
	ext := path.Ext(strings.ReplaceAll(filename, "\\", "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
