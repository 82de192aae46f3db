package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/adapters"
	"github.com/otcheredev/barmaster-pos/internal/metrics"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/rs/zerolog"
)

// AdmissionService turns a login attempt into a session or a typed rejection
type AdmissionService struct {
	backend adapters.Backend
	loc     *time.Location
	now     func() time.Time
	logger  zerolog.Logger
}

// NewAdmissionService creates a new admission service.
// Expiration dates are compared against the calendar day in loc.
func NewAdmissionService(backend adapters.Backend, loc *time.Location, logger zerolog.Logger) *AdmissionService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdmissionService{
		backend: backend,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

// Admit authenticates the credentials and applies the eligibility rules in order:
// credentials, profile, staff status, establishment status.
// Any returned error is an *models.AdmissionError.
func (s *AdmissionService) Admit(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	session, err := s.admit(ctx, creds)

	var rejection *models.AdmissionError
	switch {
	case err == nil:
		metrics.IncAdmission("granted")
	case errors.As(err, &rejection):
		metrics.IncAdmission(string(rejection.Reason))
	}
	return session, err
}

func (s *AdmissionService) admit(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	identity, err := s.backend.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil || identity.UserID == uuid.Nil {
		if err != nil && !errors.Is(err, adapters.ErrAuthFailed) {
			s.logger.Warn().Err(err).Msg("authentication backend error")
		}
		return nil, models.NewInvalidCredentials(err)
	}

	profile, err := s.backend.FetchProfile(ctx, identity)
	if err == nil && profile == nil {
		err = adapters.ErrProfileNotFound
	}
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		s.logger.Info().Err(err).Str("user_id", identity.UserID.String()).Msg("staff profile unavailable")
		return nil, models.NewProfileNotFound(err)
	}

	if !profile.IsActive {
		s.logger.Info().Str("user_id", identity.UserID.String()).Msg("staff disabled")
		return nil, models.NewStaffDisabled()
	}

	est := profile.Establishment
	if !est.UsableOn(s.now().In(s.loc)) {
		s.logger.Info().
			Str("establishment_id", est.ID.String()).
			Bool("is_active", est.IsActive).
			Time("expiration_date", est.ExpirationDate).
			Msg("establishment subscription inactive")
		return nil, models.NewSubscriptionInactive(est.Name)
	}

	session := &models.Session{
		ID:            uuid.New(),
		StaffID:       profile.ID,
		StaffName:     profile.Name,
		Role:          profile.Role,
		Establishment: *est,
		IssuedAt:      s.now().UTC(),
	}

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Str("establishment_id", est.ID.String()).
		Msg("admission granted")

	return session, nil
}
