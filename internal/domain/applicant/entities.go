package applicant

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProfileNotFound = errors.New("applicant profile not found")
	ErrProfileExists   = errors.New("applicant profile already exists")
)

// Identity is the caller as established by the transport. The zero value is a guest.
type Identity struct {
	AccountID     uint64
	Authenticated bool
}

func Guest() Identity { return Identity{} }

func Account(id uint64) Identity { return Identity{AccountID: id, Authenticated: true} }

// Table: accounts (owned by the identity system, read-only here)
type AccountRecord struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	FirstName string    `gorm:"size:150"`
	LastName  string    `gorm:"size:150"`
	Email     string    `gorm:"size:254;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AccountRecord) TableName() string { return "accounts" }

// Table: applicant_profiles (at most one per account)
type Profile struct {
	ID              uint64    `gorm:"primaryKey;column:id"`
	AccountID       uint64    `gorm:"column:account_id;not null;uniqueIndex:ux_profiles_account_id"`
	PhoneNumber     string    `gorm:"column:phone_number;size:15"`
	IsEmailVerified bool      `gorm:"column:is_email_verified;not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string { return "applicant_profiles" }
