package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository reads staff profiles joined with their establishment
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID retrieves exactly one profile with its establishment
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StaffProfile, error) {
	var profile models.StaffProfile
	err := r.db.WithContext(ctx).
		Joins("Establishment").
		Where("profiles.id = ?", id).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff profile: %w", err)
	}
	return &profile, nil
}
