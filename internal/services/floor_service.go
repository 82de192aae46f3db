package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/adapters"
	"github.com/otcheredev/barmaster-pos/internal/metrics"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/otcheredev/barmaster-pos/internal/services")

// FloorService loads the floor snapshot of an establishment
type FloorService struct {
	backend adapters.Backend
	now     func() time.Time
	logger  zerolog.Logger
}

// NewFloorService creates a new floor service
func NewFloorService(backend adapters.Backend, logger zerolog.Logger) *FloorService {
	return &FloorService{
		backend: backend,
		now:     time.Now,
		logger:  logger,
	}
}

// Load reads sectors and tables concurrently. It never fails: a read error
// leaves the corresponding collection empty.
func (s *FloorService) Load(ctx context.Context, establishmentID uuid.UUID) models.FloorSnapshot {
	ctx, span := tracer.Start(ctx, "FloorService.Load")
	defer span.End()
	span.SetAttributes(attribute.String("establishment.id", establishmentID.String()))

	start := s.now()
	log := s.logger.With().Str("establishment_id", establishmentID.String()).Logger()

	var sectors []models.Sector
	var tables []models.Table

	// Both goroutines return nil so neither read cancels the other
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.backend.FetchSectors(gctx, establishmentID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load sectors")
			metrics.IncFloorReadFailure("sectors")
			return nil
		}
		sectors = result
		return nil
	})
	g.Go(func() error {
		result, err := s.backend.FetchTables(gctx, establishmentID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load tables")
			metrics.IncFloorReadFailure("tables")
			return nil
		}
		tables = result
		return nil
	})
	_ = g.Wait()

	snapshot := models.FloorSnapshot{
		Sectors:  nonNil(sectors),
		Tables:   normalizeStates(nonNil(tables), log),
		LoadedAt: s.now().UTC(),
	}

	span.SetAttributes(
		attribute.Int("floor.sectors", len(snapshot.Sectors)),
		attribute.Int("floor.tables", len(snapshot.Tables)),
	)
	metrics.ObserveFloorLoad(s.now().Sub(start).Seconds())
	log.Debug().
		Int("sectors", len(snapshot.Sectors)).
		Int("tables", len(snapshot.Tables)).
		Msg("floor snapshot loaded")

	return snapshot
}

// normalizeStates returns a copy of tables with states outside the known set mapped to unknown
func normalizeStates(in []models.Table, log zerolog.Logger) []models.Table {
	tables := make([]models.Table, len(in))
	copy(tables, in)

	unknown := 0
	for i := range tables {
		if !tables[i].State.Known() {
			log.Warn().
				Str("table_id", tables[i].ID.String()).
				Str("state", string(tables[i].State)).
				Msg("unrecognized table state")
			tables[i].State = models.TableStateUnknown
			unknown++
		}
	}
	if unknown > 0 {
		metrics.AddUnknownTableStates(unknown)
	}
	return tables
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
