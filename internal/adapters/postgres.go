package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/database"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/otcheredev/barmaster-pos/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountStore looks up login accounts
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.StaffAccount, error)
}

// ProfileStore looks up staff profiles joined with their establishment
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.StaffProfile, error)
}

// FloorStore reads sectors and tables
type FloorStore interface {
	GetSectors(ctx context.Context, establishmentID uuid.UUID) ([]models.Sector, error)
	GetTables(ctx context.Context, establishmentID uuid.UUID) ([]models.Table, error)
}

// PostgresBackend implements Backend on the gorm repositories
type PostgresBackend struct {
	db       *gorm.DB
	accounts AccountStore
	profiles ProfileStore
	floor    FloorStore
}

// NewPostgresBackend creates a new postgres backend
func NewPostgresBackend(db *gorm.DB) *PostgresBackend {
	return &PostgresBackend{
		db:       db,
		accounts: repository.NewAccountRepository(db),
		profiles: repository.NewProfileRepository(db),
		floor:    repository.NewFloorRepository(db),
	}
}

func (p *PostgresBackend) Type() string {
	return "postgres"
}

// Authenticate verifies the bcrypt hash of the account
func (p *PostgresBackend) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, ErrAuthFailed
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrAuthFailed
	}

	return Identity{UserID: account.ID, Email: account.Email}, nil
}

// FetchProfile retrieves and validates the joined profile
func (p *PostgresBackend) FetchProfile(ctx context.Context, identity Identity) (*models.StaffProfile, error) {
	profile, err := p.profiles.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *PostgresBackend) FetchSectors(ctx context.Context, establishmentID uuid.UUID) ([]models.Sector, error) {
	return p.floor.GetSectors(ctx, establishmentID)
}

func (p *PostgresBackend) FetchTables(ctx context.Context, establishmentID uuid.UUID) ([]models.Table, error) {
	return p.floor.GetTables(ctx, establishmentID)
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	if p.db == nil {
		return nil
	}
	return database.Ping(ctx, p.db)
}

func (p *PostgresBackend) Close() error {
	if p.db == nil {
		return nil
	}
	return database.Close(p.db)
}
