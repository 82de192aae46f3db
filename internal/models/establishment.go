package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrMalformedProfile is returned when a joined profile row does not have the StaffProfile shape
var ErrMalformedProfile = errors.New("malformed staff profile")

// Establishment represents a bar (the tenant) and its subscription window
type Establishment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	ExpirationDate time.Time `gorm:"type:date;not null" json:"expiration_date"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TableName overrides the table name
func (Establishment) TableName() string {
	return "establishments"
}

// BeforeCreate hook
func (e *Establishment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ExpiredOn reports whether the subscription has lapsed on the calendar day of now.
// The expiration day itself is still usable.
func (e *Establishment) ExpiredOn(now time.Time) bool {
	return calendarDay(now).After(calendarDay(e.ExpirationDate))
}

// UsableOn reports whether staff of this establishment may be admitted on the day of now
func (e *Establishment) UsableOn(now time.Time) bool {
	return e.IsActive && !e.ExpiredOn(now)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StaffProfile is a waiter/manager account bound to exactly one establishment
type StaffProfile struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Role            string         `gorm:"type:varchar(50);not null;default:'waiter'" json:"role"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	EstablishmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"establishment_id"`
	Establishment   *Establishment `gorm:"foreignKey:EstablishmentID" json:"establishment"`
	CreatedAt       time.Time      `json:"-"`
	UpdatedAt       time.Time      `json:"-"`
}

// TableName overrides the table name
func (StaffProfile) TableName() string {
	return "profiles"
}

// Validate checks the embedded establishment relation was actually joined
func (p *StaffProfile) Validate() error {
	switch {
	case p.ID == uuid.Nil:
		return fmt.Errorf("%w: missing id", ErrMalformedProfile)
	case p.Establishment == nil:
		return fmt.Errorf("%w: missing establishment", ErrMalformedProfile)
	case p.Establishment.ID == uuid.Nil:
		return fmt.Errorf("%w: missing establishment id", ErrMalformedProfile)
	case p.Establishment.Name == "":
		return fmt.Errorf("%w: missing establishment name", ErrMalformedProfile)
	case p.Establishment.ExpirationDate.IsZero():
		return fmt.Errorf("%w: missing expiration date", ErrMalformedProfile)
	}
	return nil
}

// StaffAccount holds login credentials for the postgres backend.
// Its ID is the identity shared with StaffProfile.
type StaffAccount struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName overrides the table name
func (StaffAccount) TableName() string {
	return "staff_accounts"
}

// BeforeCreate hook
func (a *StaffAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
