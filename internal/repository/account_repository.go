package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otcheredev/barmaster-pos/internal/models"
	"gorm.io/gorm"
)

// AccountRepository reads staff login accounts
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByEmail retrieves an account by case-insensitive email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.StaffAccount, error) {
	var account models.StaffAccount
	err := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff account: %w", err)
	}
	return &account, nil
}
