package application

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
)

// Table: loan_applications
type Application struct {
	// Internal numeric PK
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// Public identifier, "LA" + 8 digits
	ApplicationID   string          `gorm:"column:application_id;size:20;not null;uniqueIndex:ux_applications_application_id" json:"application_id"`
	AccountID       *uint64         `gorm:"column:account_id;index" json:"account_id,omitempty"`
	FirstName       string          `gorm:"size:100" json:"first_name"`
	LastName        string          `gorm:"size:100" json:"last_name"`
	Email           string          `gorm:"size:254" json:"email"`
	Phone           string          `gorm:"size:15" json:"phone"`
	ProductID       uint64          `gorm:"column:product_id;not null;index" json:"product_id"`
	RequestedAmount decimal.Decimal `gorm:"column:requested_amount;type:decimal(12,2);not null" json:"requested_amount"`
	AnnualIncome    decimal.Decimal `gorm:"column:annual_income;type:decimal(12,2);not null" json:"annual_income"`
	Purpose         string          `gorm:"type:text" json:"purpose"`
	Status          Status          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Documents       []Document      `gorm:"foreignKey:ApplicationPK;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"documents,omitempty"`
}

func (Application) TableName() string { return "loan_applications" }

// FullName joins first and last name, falling back to "Unknown".
func (a *Application) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return "Unknown"
	}
	return name
}

type DocumentType string

const (
	DocAadharCard       DocumentType = "aadhar_card"
	DocPANCard          DocumentType = "pan_card"
	DocIDProof          DocumentType = "id_proof"
	DocIncomeProof      DocumentType = "income_proof"
	DocBankStatement    DocumentType = "bank_statement"
	DocUdyamCertificate DocumentType = "udyam_certificate"
	DocGSTCertificate   DocumentType = "gst_certificate"
	DocOther            DocumentType = "other"
)

var documentTypeLabels = map[DocumentType]string{
	DocAadharCard:       "Aadhar Card (Latest Downloaded)",
	DocPANCard:          "PAN Card",
	DocIDProof:          "ID Proof",
	DocIncomeProof:      "Income Proof",
	DocBankStatement:    "Bank Statement",
	DocUdyamCertificate: "Udyam Registration Certificate (Original Downloaded)",
	DocGSTCertificate:   "GST Certificate",
	DocOther:            "Other",
}

// Label is the display name of the document type.
func (t DocumentType) Label() string {
	if l, ok := documentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Table: loan_documents
type Document struct {
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// FK to loan_applications.id (numeric)
	ApplicationPK    uint64       `gorm:"column:application_pk;not null;index" json:"-"`
	DocumentType     DocumentType `gorm:"column:document_type;size:20;not null" json:"document_type"`
	FileRef          string       `gorm:"column:file_ref;size:512;not null" json:"-"`
	OriginalFilename string       `gorm:"column:original_filename;size:255;not null" json:"original_filename"`
	SizeBytes        int64        `gorm:"column:size_bytes" json:"size_bytes"`
	IsMandatory      bool         `gorm:"column:is_mandatory;not null;default:false" json:"is_mandatory"`
	UploadedAt       time.Time    `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

func (Document) TableName() string { return "loan_documents" }
