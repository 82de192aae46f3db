package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"gorm.io/gorm"
)

// FloorRepository reads the sectors and tables of an establishment
type FloorRepository struct {
	db *gorm.DB
}

// NewFloorRepository creates a new floor repository
func NewFloorRepository(db *gorm.DB) *FloorRepository {
	return &FloorRepository{db: db}
}

// GetSectors retrieves all sectors of an establishment
func (r *FloorRepository) GetSectors(ctx context.Context, establishmentID uuid.UUID) ([]models.Sector, error) {
	var sectors []models.Sector
	if err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Order("name ASC").
		Find(&sectors).Error; err != nil {
		return nil, fmt.Errorf("failed to get sectors: %w", err)
	}
	return sectors, nil
}

// GetTables retrieves the tables whose sector belongs to the establishment
func (r *FloorRepository) GetTables(ctx context.Context, establishmentID uuid.UUID) ([]models.Table, error) {
	var tables []models.Table
	if err := r.db.WithContext(ctx).
		Select("tables.*").
		Joins("JOIN sectors ON sectors.id = tables.sector_id").
		Where("sectors.establishment_id = ?", establishmentID).
		Order("tables.display_label ASC").
		Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}
