package models

import "fmt"

// RejectionReason identifies why an admission attempt was refused
type RejectionReason string

const (
	ReasonInvalidCredentials   RejectionReason = "invalid_credentials"
	ReasonProfileNotFound      RejectionReason = "profile_not_found"
	ReasonStaffDisabled        RejectionReason = "staff_disabled"
	ReasonSubscriptionInactive RejectionReason = "subscription_inactive"
)

// AdmissionError is a user-facing rejection of an admission attempt
type AdmissionError struct {
	Reason            RejectionReason `json:"reason"`
	Message           string          `json:"message"`
	EstablishmentName string          `json:"establishment_name,omitempty"`

	cause error
}

// Sentinels for errors.Is comparisons against a rejection reason
var (
	ErrInvalidCredentials   = &AdmissionError{Reason: ReasonInvalidCredentials}
	ErrProfileNotFound      = &AdmissionError{Reason: ReasonProfileNotFound}
	ErrStaffDisabled        = &AdmissionError{Reason: ReasonStaffDisabled}
	ErrSubscriptionInactive = &AdmissionError{Reason: ReasonSubscriptionInactive}
)

func (e *AdmissionError) Error() string {
	return e.Message
}

func (e *AdmissionError) Unwrap() error {
	return e.cause
}

// Is matches any AdmissionError with the same reason
func (e *AdmissionError) Is(target error) bool {
	t, ok := target.(*AdmissionError)
	return ok && t.Reason == e.Reason
}

// NewInvalidCredentials does not distinguish an unknown user from a wrong password
func NewInvalidCredentials(cause error) *AdmissionError {
	return &AdmissionError{
		Reason:  ReasonInvalidCredentials,
		Message: "invalid email or password",
		cause:   cause,
	}
}

func NewProfileNotFound(cause error) *AdmissionError {
	return &AdmissionError{
		Reason:  ReasonProfileNotFound,
		Message: "staff profile not found",
		cause:   cause,
	}
}

func NewStaffDisabled() *AdmissionError {
	return &AdmissionError{
		Reason:  ReasonStaffDisabled,
		Message: "your user account is disabled",
	}
}

func NewSubscriptionInactive(establishment string) *AdmissionError {
	return &AdmissionError{
		Reason:            ReasonSubscriptionInactive,
		Message:           fmt.Sprintf("the service for %q is expired or suspended", establishment),
		EstablishmentName: establishment,
	}
}
