package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/models"
)

var (
	// ErrAuthFailed is returned when credentials are rejected by the backend
	ErrAuthFailed = errors.New("authentication failed")
	// ErrProfileNotFound is returned when no profile matches the identity
	ErrProfileNotFound = errors.New("profile not found")
)

// Identity is the authenticated principal returned by the backend
type Identity struct {
	UserID uuid.UUID
	Email  string

	// AccessToken is the backend session of the user, empty when the backend has none
	AccessToken string
}

// Backend defines the data-access collaborator used by admission and floor loading.
// Implementations must turn transport faults into errors, never panics.
type Backend interface {
	// Authentication
	Authenticate(ctx context.Context, email, password string) (Identity, error)

	// Reads
	FetchProfile(ctx context.Context, identity Identity) (*models.StaffProfile, error)
	FetchSectors(ctx context.Context, establishmentID uuid.UUID) ([]models.Sector, error)
	FetchTables(ctx context.Context, establishmentID uuid.UUID) ([]models.Table, error)

	// Connection management
	Ping(ctx context.Context) error
	Close() error

	// Backend info
	Type() string
}
