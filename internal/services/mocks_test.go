package services

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/adapters"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var testLogger = zerolog.New(io.Discard)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Authenticate(ctx context.Context, email, password string) (adapters.Identity, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(adapters.Identity), args.Error(1)
}

func (m *mockBackend) FetchProfile(ctx context.Context, identity adapters.Identity) (*models.StaffProfile, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StaffProfile), args.Error(1)
}

func (m *mockBackend) FetchSectors(ctx context.Context, establishmentID uuid.UUID) ([]models.Sector, error) {
	args := m.Called(ctx, establishmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sector), args.Error(1)
}

func (m *mockBackend) FetchTables(ctx context.Context, establishmentID uuid.UUID) ([]models.Table, error) {
	args := m.Called(ctx, establishmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Table), args.Error(1)
}

func (m *mockBackend) Ping(ctx context.Context) error { return nil }
func (m *mockBackend) Close() error                   { return nil }
func (m *mockBackend) Type() string                   { return "mock" }
