package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/cache"
	"github.com/otcheredev/barmaster-pos/internal/metrics"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/rs/zerolog"
)

const tokenIssuer = "barmaster-pos"

var (
	// ErrInvalidToken is returned for tokens that fail signature or expiry checks
	ErrInvalidToken = errors.New("invalid session token")
	// ErrSessionNotFound is returned when the token is valid but the session was logged out or expired
	ErrSessionNotFound = errors.New("session not found")
)

// Admitter decides admission for a set of credentials
type Admitter interface {
	Admit(ctx context.Context, creds models.Credentials) (*models.Session, error)
}

// FloorLoader loads the floor snapshot of an establishment
type FloorLoader interface {
	Load(ctx context.Context, establishmentID uuid.UUID) models.FloorSnapshot
}

// SessionService owns the per-login AppState
type SessionService struct {
	admission Admitter
	floor     FloorLoader
	store     cache.Cache
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	admission Admitter,
	floor FloorLoader,
	store cache.Cache,
	secret string,
	ttl time.Duration,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		admission: admission,
		floor:     floor,
		store:     store,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

// Login admits the credentials and, on success, loads the floor exactly once.
// Rejections are returned unchanged as *models.AdmissionError.
func (s *SessionService) Login(ctx context.Context, creds models.Credentials) (string, models.AppState, error) {
	session, err := s.admission.Admit(ctx, creds)
	if err != nil {
		return "", models.AppState{}, err
	}

	floor := s.floor.Load(ctx, session.Establishment.ID)
	state := models.AppState{Session: session, Floor: &floor}

	data, err := json.Marshal(state)
	if err != nil {
		return "", models.AppState{}, fmt.Errorf("failed to encode app state: %w", err)
	}
	if err := s.store.Set(ctx, cache.SessionKey(session.ID.String()), data, s.ttl); err != nil {
		return "", models.AppState{}, fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.issueToken(session)
	if err != nil {
		return "", models.AppState{}, err
	}

	metrics.SessionOpened()
	return token, state, nil
}

// Current returns the AppState of a session token
func (s *SessionService) Current(ctx context.Context, token string) (models.AppState, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return models.AppState{}, err
	}

	data, err := s.store.Get(ctx, cache.SessionKey(claims.SessionID.String()))
	if errors.Is(err, cache.ErrCacheMiss) {
		return models.AppState{}, ErrSessionNotFound
	}
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to read session: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.AppState{}, fmt.Errorf("failed to decode app state: %w", err)
	}
	return state, nil
}

// Logout discards the session and its floor snapshot. Logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}

	key := cache.SessionKey(claims.SessionID.String())
	_, err = s.store.Get(ctx, key)
	existed := err == nil

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if existed {
		metrics.SessionClosed()
		s.logger.Info().Str("session_id", claims.SessionID.String()).Msg("logged out")
	}
	return nil
}

func (s *SessionService) issueToken(session *models.Session) (string, error) {
	now := s.now()
	claims := models.SessionClaims{
		SessionID:       session.ID,
		StaffID:         session.StaffID,
		EstablishmentID: session.Establishment.ID,
		Role:            session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Issuer:    tokenIssuer,
			Subject:   session.StaffID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (s *SessionService) parseToken(raw string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
