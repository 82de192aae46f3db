package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Credentials are the email/password pair of one admission attempt. Never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the admitted staff context
type Session struct {
	ID            uuid.UUID     `json:"id"`
	StaffID       uuid.UUID     `json:"staff_id"`
	StaffName     string        `json:"staff_name"`
	Role          string        `json:"role"`
	Establishment Establishment `json:"establishment"`
	IssuedAt      time.Time     `json:"issued_at"`
}

// AppState is everything the front-end holds for a logged-in staff member.
// The zero value is the pre-admission state.
type AppState struct {
	Session *Session       `json:"session"`
	Floor   *FloorSnapshot `json:"floor"`
}

// Admitted reports whether the state carries a session
func (s AppState) Admitted() bool {
	return s.Session != nil
}

// SessionClaims represents the session token claims
type SessionClaims struct {
	SessionID       uuid.UUID `json:"sid"`
	StaffID         uuid.UUID `json:"staff_id"`
	EstablishmentID uuid.UUID `json:"establishment_id"`
	Role            string    `json:"role"`
	jwt.RegisteredClaims
}
