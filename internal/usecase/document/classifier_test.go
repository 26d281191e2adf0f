package document

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
)

func pdf(field string) Upload {
	return Upload{Field: field, Filename: field + ".pdf", Size: 1024}
}

func mustClassify(t *testing.T, c *Classifier, uploads []Upload, p *product.Product) *Classification {
	t.Helper()
	got, err := c.Classify(uploads, p)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return got
}

func TestClassify_PersonalLoan_AllMandatoryPresent(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	got := mustClassify(t, c, []Upload{pdf("panCard"), pdf("aadharCard"), pdf("bankStatement")}, product.New("Quick Cash", "Personal Loan"))

	if len(got.MissingMandatory) != 0 {
		t.Fatalf("nothing should be missing, got %v", got.MissingMandatory)
	}
	if len(got.Accepted) != 3 {
		t.Fatalf("want 3 accepted, got %d", len(got.Accepted))
	}
	// mapping order, not upload order
	want := []application.DocumentType{application.DocAadharCard, application.DocPANCard, application.DocBankStatement}
	for i, w := range want {
		if got.Accepted[i].Type != w {
			t.Fatalf("accepted[%d] = %s, want %s", i, got.Accepted[i].Type, w)
		}
	}
	if !got.Accepted[0].Mandatory || got.Accepted[2].Mandatory {
		t.Fatalf("mandatory flags wrong: %+v", got.Accepted)
	}
}

func TestClassify_ReportsMissingMandatory(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	both := []Upload{pdf("aadharCard"), pdf("panCard")}

	tests := []struct {
		name     string
		uploads  []Upload
		category string
		want     []string
	}{
		{"no files", nil, "Personal Loan", []string{"Aadhar Card", "PAN Card"}},
		{"business requires udyam", both, "Small BUSINESS loan", []string{"Udyam Registration Certificate"}},
		{"non-business does not", both, "Car Loan", nil},
		{"empty category", both, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustClassify(t, c, tt.uploads, product.New("X", tt.category))
			if len(tt.want) == 0 {
				if len(got.MissingMandatory) != 0 {
					t.Fatalf("want nothing missing, got %v", got.MissingMandatory)
				}
				return
			}
			if !reflect.DeepEqual(got.MissingMandatory, tt.want) {
				t.Fatalf("missing = %v, want %v", got.MissingMandatory, tt.want)
			}
		})
	}
}

func TestClassify_BusinessLoan_ThreeDocuments(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	got := mustClassify(t, c, []Upload{pdf("aadharCard"), pdf("panCard"), pdf("udyamCertificate")}, product.New("MSME", "Business Loan"))
	if len(got.MissingMandatory) != 0 || len(got.Accepted) != 3 {
		t.Fatalf("unexpected classification: %+v", got)
	}
	for _, d := range got.Accepted {
		if !d.Mandatory {
			t.Fatalf("%s should be mandatory for a business loan", d.Field)
		}
	}
}

func TestClassify_IgnoresUnknownFieldsAndDuplicates(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	first := pdf("aadharCard")
	second := Upload{Field: "aadharCard", Filename: "second.exe", Size: 1}
	got := mustClassify(t, c, []Upload{first, second, pdf("panCard"), pdf("selfie")}, product.New("X", "Personal Loan"))
	if len(got.Accepted) != 2 {
		t.Fatalf("want 2 accepted, got %d", len(got.Accepted))
	}
	if got.Accepted[0].Upload.Filename != "aadharCard.pdf" {
		t.Fatalf("first part should win, got %q", got.Accepted[0].Upload.Filename)
	}
}

func TestClassify_FileTooLarge(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	big := Upload{Field: "panCard", Filename: "pan.pdf", Size: DefaultMaxFileBytes + 1}
	_, err := c.Classify([]Upload{pdf("aadharCard"), big}, product.New("X", "Personal Loan"))
	if !errors.Is(err, application.ErrFileTooLarge) {
		t.Fatalf("want ErrFileTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "pan.pdf") || !strings.Contains(err.Error(), "10MB") {
		t.Fatalf("message should name the file and the limit: %q", err.Error())
	}

	exact := Upload{Field: "panCard", Filename: "pan.pdf", Size: DefaultMaxFileBytes}
	if err := c.Check(exact); err != nil {
		t.Fatalf("a file of exactly the limit is allowed: %v", err)
	}
}

func TestClassify_UnsupportedFileType(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	for _, name := range []string{"scan.docx", "archive.pdf.zip", "noext", "trailing.", "photo.gif"} {
		if err := c.Check(Upload{Field: "panCard", Filename: name, Size: 10}); !errors.Is(err, application.ErrUnsupportedFileType) {
			t.Fatalf("%s: want ErrUnsupportedFileType, got %v", name, err)
		}
	}
	for _, name := range []string{"scan.PDF", "photo.Jpeg", "a.b.c.png", "x.jpg"} {
		if err := c.Check(Upload{Field: "panCard", Filename: name, Size: 10}); err != nil {
			t.Fatalf("%s: unexpected err %v", name, err)
		}
	}
}

func TestNewClassifier_ConfiguredPolicy(t *testing.T) {
	c := NewClassifier(Policy{MaxFileBytes: 100, AllowedExtensions: []string{".TIFF", " pdf ", ""}})
	if err := c.Check(Upload{Filename: "a.tiff", Size: 100}); err != nil {
		t.Fatalf("tiff should be allowed: %v", err)
	}
	if err := c.Check(Upload{Filename: "a.png", Size: 1}); !errors.Is(err, application.ErrUnsupportedFileType) {
		t.Fatalf("png: want ErrUnsupportedFileType, got %v", err)
	}
	if err := c.Check(Upload{Filename: "a.pdf", Size: 101}); !errors.Is(err, application.ErrFileTooLarge) {
		t.Fatalf("101 bytes: want ErrFileTooLarge, got %v", err)
	}
}

func TestExtension(t *testing.T) {
	for in, want := range map[string]string{
		"My.Scan.PDF":            "pdf",
		"README":                 "",
		`C:\Users\me\photo.png`: "png",
	} {
		if got := Extension(in); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}
